package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lobbysight/lobbysight/internal/dependencies/clock"
	"github.com/lobbysight/lobbysight/internal/hypixel"
	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/parsing"
	"github.com/lobbysight/lobbysight/internal/roster"
	"github.com/lobbysight/lobbysight/internal/services/denick"
	"github.com/lobbysight/lobbysight/internal/services/stats"
	"github.com/lobbysight/lobbysight/internal/storage"
)

// Feed consumes log lines, classifies them, and routes the events: roster
// events go to the tracker, while key and nickname events update settings
// and the alias table as side effects.
type Feed struct {
	tracker *roster.Tracker
	storage storage.Storage
	denick  *denick.Service
	stats   *stats.Service
	keys    *hypixel.KeyHolder
	client  hypixel.Client
	clock   clock.Clock
	logger  *slog.Logger

	pending sync.WaitGroup // in-flight alias resolutions
}

// New creates a feed
func New(
	tracker *roster.Tracker,
	store storage.Storage,
	denickService *denick.Service,
	statsService *stats.Service,
	keys *hypixel.KeyHolder,
	client hypixel.Client,
	clk clock.Clock,
	logger *slog.Logger,
) *Feed {
	return &Feed{
		tracker: tracker,
		storage: store,
		denick:  denickService,
		stats:   statsService,
		keys:    keys,
		client:  client,
		clock:   clk,
		logger:  logger,
	}
}

// Run consumes lines until the channel closes or ctx is cancelled, then
// waits for in-flight alias resolutions to finish
func (f *Feed) Run(ctx context.Context, lines <-chan string) {
	defer f.pending.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			f.HandleLine(ctx, line)
		}
	}
}

// Wait blocks until alias resolutions started by earlier lines complete.
// Line handling itself is synchronous; only the remote uuid lookups run
// in the background.
func (f *Feed) Wait() {
	f.pending.Wait()
}

// HandleLine classifies and processes a single log line
func (f *Feed) HandleLine(ctx context.Context, line string) {
	ev, ok := parsing.Classify(line)
	if !ok {
		return
	}

	switch ev.Type {
	case model.EventNewAPIKey:
		f.handleNewKey(ctx, ev.APIKey)
	case model.EventNewNickname:
		f.handleOwnNick(ctx, ev.Nick)
	case model.EventWhisperSetNick:
		f.handleSetNick(ctx, ev.Nick, ev.Username)
	default:
		f.tracker.Apply(ev)
	}
}

func (f *Feed) handleNewKey(ctx context.Context, key string) {
	f.logger.Info("picked up new API key from log")
	f.keys.Set(key)
	// Stats fetched under the old key may be wrong or missing
	f.stats.KeyChanged()

	settings, err := f.storage.GetSettings(ctx)
	if err != nil {
		settings = &model.Settings{}
	}
	settings.APIKey = key
	settings.UpdatedAt = f.clock.Now()
	if err := f.storage.SaveSettings(ctx, settings); err != nil {
		f.logger.Warn("failed to persist API key", slog.String("error", err.Error()))
	}
}

// handleOwnNick records our own nickname so the overlay shows our stats
// while nicked
func (f *Feed) handleOwnNick(ctx context.Context, nick string) {
	own := f.tracker.OwnUsername()
	if own == "" {
		f.logger.Warn("own nickname seen before login, ignoring",
			slog.String("nick", nick))
		return
	}
	f.saveAlias(ctx, nick, own, "own nickname")
}

// handleSetNick records an alias announced via the whisper command
func (f *Feed) handleSetNick(ctx context.Context, nick, username string) {
	if !parsing.ValidUsername(username) {
		f.logger.Warn("ignoring nick mapping to invalid username",
			slog.String("username", username))
		return
	}
	f.saveAlias(ctx, nick, username, "set from whisper")
}

// saveAlias resolves the username to a uuid and records the mapping. The
// lookup is a remote call, so it runs off the consumer goroutine: line
// handling only ever blocks on the log file, never on the network.
func (f *Feed) saveAlias(ctx context.Context, nick, username, note string) {
	f.pending.Add(1)
	go func() {
		defer f.pending.Done()
		f.resolveAndSave(ctx, nick, username, note)
	}()
}

func (f *Feed) resolveAndSave(ctx context.Context, nick, username, note string) {
	uuid, err := f.client.UUIDForName(ctx, username)
	if err != nil {
		f.logger.Warn("cannot resolve username for nick mapping",
			slog.String("nick", nick),
			slog.String("username", username),
			slog.String("error", err.Error()))
		return
	}

	entry := &model.AliasEntry{
		Alias:     nick,
		UUID:      uuid,
		Note:      note,
		UpdatedAt: f.clock.Now(),
	}
	if err := f.storage.SaveAliasEntry(ctx, entry); err != nil {
		f.logger.Warn("failed to save alias", slog.String("error", err.Error()))
		return
	}
	f.denick.Forget(nick)
	f.logger.Info("nickname mapped",
		slog.String("nick", nick),
		slog.String("username", username))
}
