package logwatch

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Watcher tails a continuously-appended log file. It polls for new lines,
// reopens the file when no data has arrived for a while (rotation), and
// restarts from the beginning when the file shrinks (truncation).
type Watcher struct {
	path         string
	logger       *slog.Logger
	pollInterval time.Duration
	reopenAfter  time.Duration
}

// Option configures a Watcher
type Option func(*Watcher)

// WithPollInterval sets how often the watcher checks for new data
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithReopenAfter sets how long without new data before the file is reopened
func WithReopenAfter(d time.Duration) Option {
	return func(w *Watcher) { w.reopenAfter = d }
}

// New creates a Watcher for the given log file
func New(path string, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		path:         path,
		logger:       logger,
		pollInterval: 100 * time.Millisecond,
		reopenAfter:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch tails the file and emits complete lines on the returned channel.
// With fromStart false, tailing begins at the current end of file. The
// channel closes when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, fromStart bool) (<-chan string, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, err
	}

	var pos int64
	if !fromStart {
		pos, err = f.Seek(0, io.SeekEnd)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	lines := make(chan string, 64)
	go w.run(ctx, f, pos, lines)
	return lines, nil
}

func (w *Watcher) run(ctx context.Context, f *os.File, pos int64, lines chan<- string) {
	defer close(lines)
	defer func() { f.Close() }()

	var pending strings.Builder
	buf := make([]byte, 16*1024)
	lastRead := time.Now()

	for {
		n, err := f.Read(buf)
		if n > 0 {
			lastRead = time.Now()
			pos += int64(n)
			chunk := buf[:n]
			for {
				idx := bytes.IndexByte(chunk, '\n')
				if idx == -1 {
					pending.Write(chunk)
					break
				}
				pending.Write(chunk[:idx])
				line := strings.TrimRight(pending.String(), "\r")
				pending.Reset()
				chunk = chunk[idx+1:]

				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			continue
		}

		if err != nil && err != io.EOF {
			w.logger.Error("log read failed", slog.String("error", err.Error()))
		}

		// No new data. Check for truncation, and reopen the file if it
		// has been quiet long enough that it may have been rotated.
		if truncated, size := w.checkTruncated(pos); truncated {
			w.logger.Info("log file truncated, restarting from beginning",
				slog.Int64("size", size))
			if nf, npos, ok := w.reopen(0); ok {
				f.Close()
				f, pos = nf, npos
				pending.Reset()
				lastRead = time.Now()
				continue
			}
		} else if time.Since(lastRead) >= w.reopenAfter {
			w.logger.Debug("log quiet, reopening", slog.String("path", w.path))
			if nf, npos, ok := w.reopen(pos); ok {
				f.Close()
				f, pos = nf, npos
				lastRead = time.Now()
				continue
			}
			lastRead = time.Now()
		}

		select {
		case <-time.After(w.pollInterval):
		case <-ctx.Done():
			return
		}
	}
}

// checkTruncated reports whether the file on disk is now smaller than our
// read position
func (w *Watcher) checkTruncated(pos int64) (bool, int64) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, 0
	}
	return info.Size() < pos, info.Size()
}

// reopen opens the file fresh and seeks to at most the given position
func (w *Watcher) reopen(pos int64) (*os.File, int64, bool) {
	f, err := os.Open(w.path)
	if err != nil {
		w.logger.Warn("log reopen failed", slog.String("error", err.Error()))
		return nil, 0, false
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, false
	}

	if pos > info.Size() {
		pos = 0
	}
	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		f.Close()
		return nil, 0, false
	}
	return f, pos, true
}
