// Package manifest verifies and creates signed batch manifests: an HS256 JWT
// whose claims carry the job list and classification flags, so a job list can
// be handed to the converter without trusting the transport it arrived over.
package manifest

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"cogforge/models"
)

var (
	ErrInvalidToken     = errors.New("invalid manifest token format")
	ErrTokenExpired     = errors.New("manifest token has expired")
	ErrTokenNotYetValid = errors.New("manifest token not yet valid")
	ErrInvalidSignature = errors.New("invalid manifest signature")
	ErrInvalidIssuer    = errors.New("invalid manifest issuer")
	ErrNoKeys           = errors.New("manifest lists no source keys")
)

// VerifyConfig holds verification configuration.
type VerifyConfig struct {
	Secret         []byte        // HMAC key (HS256)
	ExpectedIssuer string        // optional: validate issuer
	ClockSkew      time.Duration // optional: allowed clock skew
}

// Verify checks the manifest token's signature and timestamps and returns the
// decoded batch.
func Verify(token string, config VerifyConfig) (*models.BatchManifest, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if len(config.Secret) == 0 {
		return nil, errors.New("no verification key provided")
	}

	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &models.BatchManifest{}
	if err := tok.Claims(config.Secret, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	now := time.Now().Unix()
	skew := int64(config.ClockSkew.Seconds())
	if claims.ExpiresAt > 0 && claims.ExpiresAt < (now-skew) {
		return nil, ErrTokenExpired
	}
	if claims.IssuedAt > 0 && claims.IssuedAt > (now+skew) {
		return nil, ErrTokenNotYetValid
	}
	if config.ExpectedIssuer != "" && claims.Issuer != config.ExpectedIssuer {
		return nil, fmt.Errorf("%w: expected '%s', got '%s'",
			ErrInvalidIssuer, config.ExpectedIssuer, claims.Issuer)
	}

	if len(claims.Keys) == 0 {
		return nil, ErrNoKeys
	}
	return claims, nil
}

// Sign creates a signed manifest token from claims.
func Sign(claims *models.BatchManifest, secret []byte) (string, error) {
	if claims == nil {
		return "", errors.New("claims cannot be nil")
	}
	if len(secret) == 0 {
		return "", errors.New("signing key cannot be empty")
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("failed to create manifest token: %w", err)
	}
	return token, nil
}
