package logbook

import (
	"context"
	"log/slog"
	"time"
)

// EntrySink receives batches of entries mirrored off the request path.
type EntrySink interface {
	InsertEntries(ctx context.Context, entries []LogEntry) error
}

// MirrorConfig holds mirror configuration
type MirrorConfig struct {
	Sink   EntrySink
	Logger *slog.Logger

	// BufferSize is the capacity of the in-flight entry buffer; a full
	// buffer drops entries instead of blocking the request path
	BufferSize int
	// CountThreshold is the number of buffered entries that triggers a flush
	CountThreshold int
	// TimeThreshold is the age after which buffered entries are flushed
	// regardless of count
	TimeThreshold time.Duration
	// FlushTimeout is the maximum time for a single batch flush
	FlushTimeout time.Duration
}

// Mirror forwards appended entries to a secondary sink in batches.
//
// The mirror is best-effort: the record file stays the source of truth, so
// a full buffer drops the entry and a failed flush loses the batch, both
// counted and logged but never propagated to the request path.
type Mirror struct {
	sink    EntrySink
	logger  *slog.Logger
	metrics *Metrics

	countThreshold int
	timeThreshold  time.Duration
	flushTimeout   time.Duration

	entries chan LogEntry
	done    chan struct{}
}

// NewMirror creates a mirror and starts its flush loop.
func NewMirror(cfg MirrorConfig, metrics *Metrics) *Mirror {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.CountThreshold <= 0 {
		cfg.CountThreshold = 100
	}
	if cfg.TimeThreshold <= 0 {
		cfg.TimeThreshold = 5 * time.Second
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 30 * time.Second
	}

	m := &Mirror{
		sink:           cfg.Sink,
		logger:         cfg.Logger,
		metrics:        metrics,
		countThreshold: cfg.CountThreshold,
		timeThreshold:  cfg.TimeThreshold,
		flushTimeout:   cfg.FlushTimeout,
		entries:        make(chan LogEntry, cfg.BufferSize),
		done:           make(chan struct{}),
	}

	go m.run()

	return m
}

// Enqueue queues an entry for mirroring. It never blocks: when the buffer
// is full the entry is dropped and counted.
func (m *Mirror) Enqueue(entry LogEntry) {
	select {
	case m.entries <- entry:
	default:
		m.metrics.Mirror.EntriesDropped.Inc()
		m.logger.Debug("mirror buffer full, dropping entry",
			"method", entry.Method, "resource", entry.Resource)
	}
}

// Close flushes any buffered entries and stops the flush loop. The mirror
// must not be enqueued to after Close.
func (m *Mirror) Close() {
	close(m.entries)
	<-m.done
}

func (m *Mirror) run() {
	defer close(m.done)

	batch := make([]LogEntry, 0, m.countThreshold)
	ticker := time.NewTicker(m.timeThreshold)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-m.entries:
			if !ok {
				m.flush(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= m.countThreshold {
				m.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				m.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (m *Mirror) flush(batch []LogEntry) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.flushTimeout)
	defer cancel()

	if err := m.sink.InsertEntries(ctx, batch); err != nil {
		m.metrics.Mirror.FlushFailures.Inc()
		m.logger.Error("failed to flush entries to mirror sink",
			"nEntries", len(batch), "error", err)
		return
	}

	m.metrics.Mirror.EntriesMirrored.Add(float64(len(batch)))
	m.logger.Debug("flushed entries to mirror sink", "nEntries", len(batch))
}
