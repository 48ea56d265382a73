package enrich

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/overlay"
	"github.com/lobbysight/lobbysight/internal/roster"
	"github.com/lobbysight/lobbysight/internal/services/denick"
	"github.com/lobbysight/lobbysight/internal/services/stats"
)

// Orchestrator turns roster changes into enriched snapshots. Each pass
// resolves every member, fetches their stats through a bounded worker
// pool, and publishes the result. A pass publishes twice: once immediately
// with pending rows so the overlay updates the roster without waiting on
// the network, and once when enrichment completes.
type Orchestrator struct {
	tracker *roster.Tracker
	denick  *denick.Service
	stats   *stats.Service
	state   *overlay.State
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config

	seq atomic.Uint64
}

// Config holds configuration for the orchestrator
type Config struct {
	// RefreshInterval forces a pass even without roster changes, so
	// retriable stats failures eventually heal
	RefreshInterval time.Duration
	// Workers bounds concurrent enrichment of roster members
	Workers int
}

// DefaultConfig returns default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 30 * time.Second,
		Workers:         8,
	}
}

// New creates a new orchestrator
func New(
	tracker *roster.Tracker,
	denickService *denick.Service,
	statsService *stats.Service,
	state *overlay.State,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Orchestrator {
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultConfig().RefreshInterval
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	return &Orchestrator{
		tracker: tracker,
		denick:  denickService,
		stats:   statsService,
		state:   state,
		clock:   clk,
		logger:  logger,
		cfg:     cfg,
	}
}

// Run processes passes until ctx is cancelled. A pass runs immediately on
// startup, on every roster change signal, and on the refresh interval.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.RefreshInterval)
	defer ticker.Stop()

	o.RunPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.tracker.Changes():
			o.RunPass(ctx)
		case <-ticker.C:
			o.RunPass(ctx)
		}
	}
}

// RunPass enriches the current roster and publishes the result
func (o *Orchestrator) RunPass(ctx context.Context) {
	members := o.tracker.Members()
	now := o.clock.Now()

	// Preliminary snapshot: the roster shape is correct right away,
	// stats fill in behind it
	rows := make([]model.Row, len(members))
	for i, m := range members {
		rows[i] = model.Row{
			Identity: model.Identity{Username: m.Username},
			Kind:     m.Kind,
			Record:   model.PendingRecord(model.Identity{Username: m.Username}, now),
		}
	}
	o.publish(rows, now)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, m := range members {
		g.Go(func() error {
			rows[i] = o.enrich(gctx, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.logger.Warn("enrichment pass failed", slog.String("error", err.Error()))
		return
	}
	if ctx.Err() != nil {
		return
	}

	o.publish(rows, o.clock.Now())
}

func (o *Orchestrator) enrich(ctx context.Context, member model.RosterMember) model.Row {
	now := o.clock.Now()

	id, ok := o.denick.Resolve(ctx, member.Username)
	if !ok {
		// Nothing resolves the name; show it as a nick
		return model.Row{
			Identity: model.Identity{Username: member.Username},
			Kind:     member.Kind,
			Record:   model.NickedRecord(model.Identity{Username: member.Username}, now),
		}
	}

	record := o.stats.Fetch(ctx, id)
	return model.Row{Identity: id, Kind: member.Kind, Record: record}
}

func (o *Orchestrator) publish(rows []model.Row, takenAt time.Time) {
	published := make([]model.Row, len(rows))
	copy(published, rows)

	snapshot := model.Snapshot{
		Seq:       o.seq.Add(1),
		Rows:      published,
		OutOfSync: o.tracker.OutOfSync(),
		TakenAt:   takenAt,
	}
	if !o.state.Publish(snapshot) {
		o.logger.Debug("stale snapshot dropped", slog.Uint64("seq", snapshot.Seq))
	}
}
