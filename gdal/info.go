package gdal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// infoReport is the subset of gdalinfo -json output the engine cares about.
type infoReport struct {
	DriverShortName string                       `json:"driverShortName"`
	Size            []int                        `json:"size"`
	Metadata        map[string]map[string]string `json:"metadata"`
	Bands           []bandReport                 `json:"bands"`
}

type bandReport struct {
	Band      int              `json:"band"`
	Type      string           `json:"type"`
	Block     []int            `json:"block"`
	Overviews []overviewReport `json:"overviews"`
}

type overviewReport struct {
	Size []int `json:"size"`
}

// info runs gdalinfo -json against ref and parses the report.
func (e *Engine) info(ctx context.Context, ref string) (infoReport, error) {
	cmd := exec.CommandContext(ctx, e.infoBin, "-json", ref)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return infoReport{}, fmt.Errorf("gdalinfo failed for %s: %w: %s", ref, err, stderr.String())
	}
	return parseInfoReport(stdout.Bytes())
}

func parseInfoReport(data []byte) (infoReport, error) {
	var report infoReport
	if err := json.Unmarshal(data, &report); err != nil {
		return infoReport{}, fmt.Errorf("failed to decode gdalinfo report: %w", err)
	}
	return report, nil
}
