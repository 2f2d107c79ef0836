package broadcaster

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/cockroachdb/errors"

	exitwal "redblack/infra/wal/exit"
)

//go:generate mockgen -destination=mocks/publisher.go -package=mocks redblack/jobs/broadcaster Publisher

// Publisher delivers one message and returns once the broker has it.
type Publisher interface {
	Publish(ctx context.Context, key []byte, value []byte) error
	Close() error
}

type Config struct {
	Interval   time.Duration
	MaxRetries uint32
}

const (
	DefaultInterval   = 250 * time.Millisecond
	DefaultMaxRetries = 5
)

type Broadcaster struct {
	outbox    *exitwal.ExitWAL
	publisher Publisher
	cfg       Config
	log       *logger.L
}

// Event is the JSON payload published for every tree mutation.
type Event struct {
	V    int    `json:"v"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Key  int64  `json:"key"`
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	outbox *exitwal.ExitWAL,
	publisher Publisher,
	cfg Config,
	log *logger.L,
) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Broadcaster{
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run drains the outbox once per interval until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Infof("started, interval %s", b.cfg.Interval)

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopped")
			return

		case <-ticker.C:
			n, err := b.DrainOnce(ctx)
			if err != nil {
				b.log.Errorf("drain: %s", err)
				continue
			}
			if n > 0 {
				b.log.Debugf("published %d events", n)
			}
		}
	}
}

// ------------------------------------------------
// DRAIN
// ------------------------------------------------

// DrainOnce publishes every pending event in sequence order and
// returns how many were acknowledged. A failed publish is recorded
// against the event and retried on a later pass.
func (b *Broadcaster) DrainOnce(ctx context.Context) (int, error) {
	var pending []exitwal.ExitRecord
	err := b.outbox.ScanPending(b.cfg.MaxRetries, func(rec exitwal.ExitRecord) error {
		pending = append(pending, rec)
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "scan outbox")
	}

	published := 0
	var lastAcked uint64
	for _, rec := range pending {
		if ctx.Err() != nil {
			break
		}

		if err := b.outbox.MarkSent(rec.Seq, rec.Retries); err != nil {
			return published, err
		}

		value, err := json.Marshal(Event{
			V:    1,
			Type: rec.Op.String(),
			Seq:  rec.Seq,
			Key:  rec.Key,
		})
		if err != nil {
			return published, err
		}
		key := []byte(strconv.FormatInt(rec.Key, 10))

		if err := b.publisher.Publish(ctx, key, value); err != nil {
			b.log.Warnf("publish seq %d (attempt %d): %s", rec.Seq, rec.Retries+1, err)
			if err := b.outbox.MarkFailed(rec.Seq, rec.Retries+1); err != nil {
				return published, err
			}
			continue
		}

		if err := b.outbox.MarkAcked(rec.Seq, rec.Retries); err != nil {
			return published, err
		}
		published++
		lastAcked = rec.Seq
	}

	if lastAcked > 0 {
		if err := b.outbox.TruncateAckedUpTo(lastAcked); err != nil {
			return published, errors.Wrap(err, "truncate outbox")
		}
	}
	return published, nil
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
