// Package analyzer drives the full pipeline: fetch, classify, group into
// sessions, filter, render, and deliver to the configured sinks.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/botlogs/internal/core/classifier"
	"github.com/penwyp/botlogs/internal/core/model"
	"github.com/penwyp/botlogs/internal/core/session"
	"github.com/penwyp/botlogs/internal/data/cache"
	"github.com/penwyp/botlogs/internal/data/sink"
	"github.com/penwyp/botlogs/internal/data/source"
	"github.com/penwyp/botlogs/internal/presentation/formatter"
	"github.com/penwyp/botlogs/internal/util"
)

// ConsoleTruncateAt bounds long payload lines on the terminal. File and
// clipboard output keep full content.
const ConsoleTruncateAt = 300

type Config struct {
	Hours       int
	Limit       int
	UserFilter  string
	ErrorsOnly  bool
	SaveDir     string
	MaxFiles    int
	NoColor     bool
	NoClipboard bool
	NoSave      bool
}

type Analyzer struct {
	config     *Config
	source     source.Source
	cache      *cache.FetchCache
	classifier *classifier.Classifier
	aggregator *session.Aggregator
	console    *formatter.Formatter
	plain      *formatter.Formatter
}

// New wires the pipeline. The console formatter truncates long payloads and
// may color; the plain formatter is what files and the clipboard receive.
func New(config *Config, src source.Source, fetchCache *cache.FetchCache) *Analyzer {
	return &Analyzer{
		config:     config,
		source:     src,
		cache:      fetchCache,
		classifier: classifier.New(),
		aggregator: session.NewAggregator(),
		console:    formatter.New(formatter.NewStyles(config.NoColor), ConsoleTruncateAt),
		plain:      formatter.New(formatter.NewStyles(true), 0),
	}
}

// Run executes one batch analysis. An empty fetch window is a valid outcome
// and returns nil with zero sessions reported; only fetch and sink failures
// surface as errors.
func (a *Analyzer) Run(ctx context.Context) error {
	startTime := time.Now()
	util.LogInfo("Starting bot log analysis...")

	// Phase 1: fetch records, through the short-lived cache when possible
	fetchStart := time.Now()
	records, err := a.fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch logs: %w", err)
	}
	fetchDuration := time.Since(fetchStart)
	util.LogDebugf("Phase 1 - Fetch duration: %v, %d records", fetchDuration, len(records))

	if len(records) == 0 {
		fmt.Println("No log records found in the requested window")
		return nil
	}

	// Phase 2: classify
	classifyStart := time.Now()
	entries := a.classifier.ClassifyAll(records)
	classifyDuration := time.Since(classifyStart)
	util.LogDebugf("Phase 2 - Classification duration: %v, %d entries", classifyDuration, len(entries))

	// Phase 3: group into sessions
	groupStart := time.Now()
	sessions := a.aggregator.Build(entries)
	groupDuration := time.Since(groupStart)
	util.LogDebugf("Phase 3 - Session grouping duration: %v, %d sessions", groupDuration, len(sessions))

	// Phase 4: filter
	filterStart := time.Now()
	filtered := a.filterSessions(sessions)
	filterDuration := time.Since(filterStart)
	util.LogDebugf("Phase 4 - Filtering duration: %v, %d sessions kept", filterDuration, len(filtered))

	if len(filtered) == 0 {
		fmt.Println("No sessions matched the given filters")
		return nil
	}

	// Phase 5: render and deliver
	outputStart := time.Now()
	err = a.output(filtered)
	outputDuration := time.Since(outputStart)
	util.LogDebugf("Phase 5 - Output duration: %v", outputDuration)

	totalDuration := time.Since(startTime)
	util.LogDebugf("Total duration: %v (fetch:%v classify:%v group:%v filter:%v output:%v)",
		totalDuration, fetchDuration, classifyDuration, groupDuration, filterDuration, outputDuration)

	return err
}

func (a *Analyzer) fetch(ctx context.Context) ([]model.RawLogRecord, error) {
	window := time.Duration(a.config.Hours) * time.Hour

	var key string
	if a.cache != nil {
		key = a.cache.Key(window, a.config.Limit)
		if records, ok := a.cache.Get(key); ok {
			util.LogInfo("Using cached log records")
			return records, nil
		}
	}

	records, err := a.source.Fetch(ctx, window, a.config.Limit)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Set(key, records)
	}
	return records, nil
}

func (a *Analyzer) filterSessions(sessions []*session.Session) []*session.Session {
	filtered := make([]*session.Session, 0, len(sessions))
	for _, s := range sessions {
		if a.config.UserFilter != "" && !s.ContainsUser(a.config.UserFilter) {
			continue
		}
		if a.config.ErrorsOnly && !s.HasErrors() {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

func (a *Analyzer) output(sessions []*session.Session) error {
	consoleText := a.console.RenderSessions(sessions) + "\n" + a.console.RenderSummary(sessions)
	fmt.Println(consoleText)

	if !a.config.NoSave && a.config.SaveDir != "" {
		fileSink := sink.NewFileSink(a.config.SaveDir, a.config.MaxFiles)
		saved, err := fileSink.SaveAll(sessions, a.plain.RenderSession)
		if err != nil {
			return err
		}
		if len(saved) > 0 {
			util.LogInfof("%d new sessions saved to %s", len(saved), a.config.SaveDir)
		}
	}

	if !a.config.NoClipboard {
		plainText := a.plain.RenderSessions(sessions) + "\n" + a.plain.RenderSummary(sessions)
		if err := sink.CopyToClipboard(plainText); err != nil {
			util.LogWarnf("clipboard unavailable: %v", err)
		} else {
			util.LogInfo("Analysis copied to clipboard")
		}
	}

	return nil
}
