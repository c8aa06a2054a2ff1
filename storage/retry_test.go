package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"google.golang.org/api/googleapi"
)

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, Backoff: time.Millisecond}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	calls := 0
	wantErr := fmt.Errorf("still broken")
	err := testPolicy(3).Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Do returned %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoDoesNotRetryNotFound(t *testing.T) {
	calls := 0
	err := testPolicy(5).Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return &smithy.GenericAPIError{Code: "NoSuchKey", Message: "gone"}
	})
	if !IsNotFound(err) {
		t.Fatalf("error lost its classification: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (missing objects do not get better)", calls)
	}
}

func TestDoDoesNotRetryAccessDenied(t *testing.T) {
	calls := 0
	testPolicy(5).Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return &smithy.GenericAPIError{Code: "AccessDenied", Message: "no"}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{Attempts: 10, Backoff: time.Hour}.Do(ctx, "op", func(ctx context.Context) error {
		calls++
		cancel()
		return fmt.Errorf("transient")
	})
	if err == nil {
		t.Fatal("Do returned nil after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"s3 no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"s3 head not found", &smithy.GenericAPIError{Code: "NotFound"}, true},
		{"gcs 404", &googleapi.Error{Code: 404}, true},
		{"wrapped", fmt.Errorf("head: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}), true},
		{"plain", fmt.Errorf("boom"), false},
		{"denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
	}
	for _, tc := range cases {
		if got := IsNotFound(tc.err); got != tc.want {
			t.Errorf("%s: IsNotFound = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsAccessDenied(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"s3 denied", &smithy.GenericAPIError{Code: "AccessDenied"}, true},
		{"gcs 403", &googleapi.Error{Code: 403}, true},
		{"gcs 401", &googleapi.Error{Code: 401}, true},
		{"wrapped", fmt.Errorf("get: %w", &smithy.GenericAPIError{Code: "AccessDenied"}), true},
		{"not found", &smithy.GenericAPIError{Code: "NoSuchKey"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsAccessDenied(tc.err); got != tc.want {
			t.Errorf("%s: IsAccessDenied = %v, want %v", tc.name, got, tc.want)
		}
	}
}
