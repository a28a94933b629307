package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"safarifame/internal/ics"
	appLog "safarifame/internal/log"
	"safarifame/internal/metrics"
	"safarifame/internal/model"
)

// ErrorMessage is what visitors see when the feed cannot be retrieved.
const ErrorMessage = "Could not load the fight calendar. Please try again later."

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Fetcher retrieves the raw feed. *ics.Fetcher satisfies it.
type Fetcher interface {
	FetchOne(ctx context.Context, src ics.Source) (ics.FetchResult, error)
}

// Snapshot is a read-only view of the refresher's latest state.
type Snapshot struct {
	State State
	// Events holds the last successfully extracted fights. It survives a
	// failed refresh so the API can still serve stale data.
	Events    []model.FightEvent
	Message   string
	UpdatedAt time.Time
	FromCache bool
	Feed      ics.FeedInfo
}

// Refresher owns the current fight list and replaces it wholesale on
// each successful refresh.
type Refresher struct {
	fetcher   Fetcher
	source    ics.Source
	extractor *ics.Extractor
	metrics   *metrics.Metrics

	// refreshMu serialises refreshes triggered by cron and the API.
	refreshMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot
}

// New builds a Refresher. m may be nil.
func New(fetcher Fetcher, source ics.Source, extractor *ics.Extractor, m *metrics.Metrics) *Refresher {
	if extractor == nil {
		extractor = ics.NewExtractor(nil)
	}
	return &Refresher{
		fetcher:   fetcher,
		source:    source,
		extractor: extractor,
		metrics:   m,
		snap: Snapshot{
			State:  StateLoading,
			Events: []model.FightEvent{},
		},
	}
}

// Snapshot returns the current state. The Events slice is a copy.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.snap
	s.Events = slices.Clone(r.snap.Events)
	return s
}

// Refresh fetches the feed and extracts fights from it. On failure the
// previous events are kept and the state becomes StateError.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.RefreshSeconds.Observe(time.Since(start).Seconds())
		}
	}()

	res, err := r.fetcher.FetchOne(ctx, r.source)
	if err != nil {
		r.countFetch(fetchResultLabel(err))
		appLog.Error("calendar refresh failed", err, "id", r.source.ID)

		r.mu.Lock()
		r.snap.State = StateError
		r.snap.Message = ErrorMessage
		r.mu.Unlock()
		return fmt.Errorf("refresh %s: %w", r.source.ID, err)
	}
	if res.FromCache {
		r.countFetch("cached")
	} else {
		r.countFetch("fresh")
	}

	report := r.extractor.ExtractReport(string(res.Body))
	for _, s := range report.Skipped {
		appLog.Debug("vevent skipped", "id", r.source.ID, "block", s.Block, "reason", string(s.Reason))
		if r.metrics != nil {
			r.metrics.BlocksSkipped.WithLabelValues(string(s.Reason)).Inc()
		}
	}

	info, inspectErr := ics.Inspect(res.Body)
	if inspectErr != nil {
		appLog.Debug("feed inspection failed", "id", r.source.ID, "err", inspectErr)
	} else if info.EventCount != report.Blocks {
		appLog.Debug("feed block count differs from strict parse", "id", r.source.ID, "blocks", report.Blocks, "strict_events", info.EventCount)
	}

	now := time.Now()
	r.mu.Lock()
	r.snap = Snapshot{
		State:     StateReady,
		Events:    report.Events,
		UpdatedAt: now,
		FromCache: res.FromCache,
		Feed:      info,
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.EventsLoaded.Set(float64(len(report.Events)))
		r.metrics.LastSuccessTS.Set(float64(now.Unix()))
	}

	appLog.Info("calendar refreshed",
		"id", r.source.ID,
		"blocks", report.Blocks,
		"events", len(report.Events),
		"skipped", len(report.Skipped),
		"from_cache", res.FromCache,
		"calendar", info.Name,
	)
	return nil
}

// Start runs an initial refresh in the background and then refreshes
// on cronSpec until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context, cronSpec string) error {
	c := cron.New()
	if _, err := c.AddFunc(cronSpec, func() { _ = r.Refresh(ctx) }); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", cronSpec, err)
	}

	go func() { _ = r.Refresh(ctx) }()
	c.Start()
	appLog.Info("calendar refresh scheduled", "cron", cronSpec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Debug("calendar refresh scheduler stopped")
	}()
	return nil
}

func (r *Refresher) countFetch(result string) {
	if r.metrics != nil {
		r.metrics.FeedFetches.WithLabelValues(result).Inc()
	}
}

func fetchResultLabel(err error) string {
	var fe *ics.FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	return "error"
}
