// Package source fetches raw log records from the cloud logging backend.
package source

import (
	"context"
	"time"

	"github.com/penwyp/botlogs/internal/core/model"
)

// Source supplies raw records for a lookback window, ordered ascending by
// timestamp. Implementations are responsible for their own timeouts and
// surface fetch failures as errors; an empty slice is a valid result.
type Source interface {
	Fetch(ctx context.Context, window time.Duration, limit int) ([]model.RawLogRecord, error)
}
