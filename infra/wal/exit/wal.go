package exit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type ExitState uint8

const (
	StateNew ExitState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s ExitState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Event --------------------

type Op uint8

const (
	OpInsert Op = iota + 1
	OpErase
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpErase:
		return "erase"
	default:
		return "unknown"
	}
}

// Event is one applied tree mutation waiting to be published.
type Event struct {
	Seq uint64
	Op  Op
	Key int64
}

// -------------------- Record --------------------

type ExitRecord struct {
	Event
	State       ExitState
	Retries     uint32
	LastAttempt int64
}

const recordSize = 1 + 4 + 8 + 1 + 8

var (
	ErrNotFound     = errors.New("exit: event not found")
	ErrBadRecord    = errors.New("exit: invalid record length")
	eventPrefix     = []byte("event/")
	eventUpperBound = []byte("event/~")
)

// binary encoding: [state:1][retries:4][lastAttempt:8][op:1][key:8]
func encodeRecord(r ExitRecord) []byte {
	buf := make([]byte, recordSize)
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	buf[13] = byte(r.Op)
	binary.BigEndian.PutUint64(buf[14:22], uint64(r.Key))
	return buf
}

func decodeRecord(seq uint64, b []byte) (ExitRecord, error) {
	if len(b) != recordSize {
		return ExitRecord{}, errors.Wrapf(ErrBadRecord, "seq %d has %d bytes", seq, len(b))
	}
	return ExitRecord{
		Event: Event{
			Seq: seq,
			Op:  Op(b[13]),
			Key: int64(binary.BigEndian.Uint64(b[14:22])),
		},
		State:       ExitState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
	}, nil
}

// -------------------- WAL --------------------

// ExitWAL is the outbox of tree events that still have to reach Kafka.
type ExitWAL struct {
	db *pebble.DB
}

func Open(dir string) (*ExitWAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open outbox %s", dir)
	}
	return &ExitWAL{db: db}, nil
}

func (w *ExitWAL) Close() error {
	return w.db.Close()
}

// -------------------- API --------------------

// PutNew records an event that has not been published yet.
func (w *ExitWAL) PutNew(ev Event) error {
	rec := ExitRecord{Event: ev, State: StateNew}
	return w.db.Set(keyFor(ev.Seq), encodeRecord(rec), pebble.Sync)
}

// UpdateState moves an event to state after a send, ack or failure.
func (w *ExitWAL) UpdateState(seq uint64, state ExitState, retries uint32) error {
	rec, err := w.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Retries = retries
	rec.LastAttempt = time.Now().UnixNano()
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

func (w *ExitWAL) MarkSent(seq uint64, retries uint32) error {
	return w.UpdateState(seq, StateSent, retries)
}

func (w *ExitWAL) MarkAcked(seq uint64, retries uint32) error {
	return w.UpdateState(seq, StateAcked, retries)
}

func (w *ExitWAL) MarkFailed(seq uint64, retries uint32) error {
	return w.UpdateState(seq, StateFailed, retries)
}

func (w *ExitWAL) Delete(seq uint64) error {
	return w.db.Delete(keyFor(seq), pebble.Sync)
}

func (w *ExitWAL) Get(seq uint64) (ExitRecord, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return ExitRecord{}, errors.Wrapf(ErrNotFound, "seq %d", seq)
	}
	if err != nil {
		return ExitRecord{}, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// -------------------- Scan --------------------

// ScanByState calls fn for every event in state, in sequence order.
func (w *ExitWAL) ScanByState(
	state ExitState,
	fn func(rec ExitRecord) error,
) error {
	return w.scan(func(rec ExitRecord) error {
		if rec.State != state {
			return nil
		}
		return fn(rec)
	})
}

// ScanPending calls fn, in sequence order, for every event that still
// needs publishing: new ones, ones left SENT by an interrupted attempt,
// and failed ones with fewer than maxRetries attempts.
func (w *ExitWAL) ScanPending(maxRetries uint32, fn func(rec ExitRecord) error) error {
	return w.scan(func(rec ExitRecord) error {
		switch rec.State {
		case StateNew, StateSent:
			return fn(rec)
		case StateFailed:
			if rec.Retries < maxRetries {
				return fn(rec)
			}
		}
		return nil
	})
}

// TruncateAckedUpTo removes acknowledged events with seq <= upTo.
func (w *ExitWAL) TruncateAckedUpTo(upTo uint64) error {
	b := w.db.NewBatch()
	defer b.Close()

	err := w.scan(func(rec ExitRecord) error {
		if rec.Seq > upTo {
			return errStopScan
		}
		if rec.State == StateAcked {
			return b.Delete(keyFor(rec.Seq), nil)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return err
	}
	if b.Empty() {
		return nil
	}
	return b.Commit(pebble.Sync)
}

var errStopScan = errors.New("stop scan")

func (w *ExitWAL) scan(fn func(rec ExitRecord) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: eventPrefix,
		UpperBound: eventUpperBound,
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("event/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, eventPrefix)), "%d", &seq)
	return seq, err
}
