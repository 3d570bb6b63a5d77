package source

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/util"
)

// GcloudSource reads Cloud Run revision logs through the gcloud CLI. The CLI
// carries the project credentials, so no SDK auth plumbing is needed here.
type GcloudSource struct {
	ProjectID   string
	ServiceName string

	// Binary overrides the gcloud executable path, for tests.
	Binary string
}

// NewGcloudSource creates a source bound to one Cloud Run service.
func NewGcloudSource(projectID, serviceName string) *GcloudSource {
	return &GcloudSource{
		ProjectID:   projectID,
		ServiceName: serviceName,
		Binary:      "gcloud",
	}
}

// Fetch runs `gcloud logging read` for the lookback window and decodes the
// JSON array it prints. Records come back ascending; a defensive re-sort
// keeps downstream assumptions intact if the backend misbehaves.
func (s *GcloudSource) Fetch(ctx context.Context, window time.Duration, limit int) ([]model.RawLogRecord, error) {
	since := time.Now().UTC().Add(-window).Format("2006-01-02T15:04:05Z")
	filter := fmt.Sprintf(
		`resource.type=cloud_run_revision AND resource.labels.service_name=%s AND timestamp>="%s"`,
		s.ServiceName, since)

	cmd := exec.CommandContext(ctx, s.Binary, "logging", "read", filter,
		"--format=json",
		fmt.Sprintf("--project=%s", s.ProjectID),
		fmt.Sprintf("--limit=%d", limit),
		"--order=asc",
	)

	util.LogDebugf("fetching logs: service=%s window=%s limit=%d", s.ServiceName, window, limit)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("gcloud logging read failed: %w: %s", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("gcloud logging read failed: %w", err)
	}

	records, err := DecodeRecords(out)
	if err != nil {
		return nil, err
	}

	util.LogInfof("fetched %d log records", len(records))
	return records, nil
}

// DecodeRecords parses a JSON array of raw records and sorts it ascending by
// timestamp. The timestamps are RFC3339 strings, so a lexicographic sort is
// chronological.
func DecodeRecords(data []byte) ([]model.RawLogRecord, error) {
	var records []model.RawLogRecord
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode log records: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}
