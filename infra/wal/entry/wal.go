package entry

import (
	"encoding/binary"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	headerSize = 1 + 8 + 8 + 4
	crcSize    = 4

	DefaultSegmentSize     = 2 * 1024 * 1024
	DefaultSegmentDuration = time.Minute
)

// ErrRotation marks an Append whose record was written but whose
// segment rotation failed.
var ErrRotation = errors.New("entry: segment rotation failed")

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
}

// WAL is the append-only journal of tree commands. It is not safe for
// concurrent use; the service appends under its own lock.
type WAL struct {
	dir        string
	segSize    int64
	segDur     time.Duration
	current    *segment
	segIndex   int
	lastRotate time.Time
}

// Open prepares dir for appending. A torn frame at the end of the
// newest segment is cut off, and writing resumes in a fresh segment.
func Open(cfg Config) (*WAL, error) {
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = DefaultSegmentSize
	}
	if cfg.SegmentDuration <= 0 {
		cfg.SegmentDuration = DefaultSegmentDuration
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create journal dir")
	}

	files, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	next := 0
	if len(files) > 0 {
		last := files[len(files)-1]
		if err := repairTail(last); err != nil {
			return nil, errors.Wrapf(err, "repair %s", last)
		}
		idx, err := segmentIndex(last)
		if err != nil {
			return nil, errors.Wrapf(err, "parse segment name %s", last)
		}
		next = idx + 1
	}

	seg, err := openSegment(cfg.Dir, next)
	if err != nil {
		return nil, errors.Wrap(err, "open segment")
	}

	return &WAL{
		dir:        cfg.Dir,
		segSize:    cfg.SegmentSize,
		segDur:     cfg.SegmentDuration,
		current:    seg,
		segIndex:   next,
		lastRotate: time.Now(),
	}, nil
}

func (w *WAL) Dir() string { return w.dir }

// Append writes r to the current segment. A non-nil error means r was
// not journaled, except when it is marked ErrRotation: then r is on
// disk and only the switch to a new segment failed. The switch is
// retried on the next Append.
func (w *WAL) Append(r *Record) error {
	if err := w.current.append(encodeFrame(r)); err != nil {
		return errors.Wrapf(err, "append seq %d", r.Seq)
	}
	if w.current.offset >= w.segSize || time.Since(w.lastRotate) >= w.segDur {
		if err := w.rotate(); err != nil {
			return errors.Mark(errors.Wrapf(err, "after seq %d", r.Seq), ErrRotation)
		}
	}
	return nil
}

func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) Close() error {
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

// rotate opens the next segment before letting go of the current one,
// so a failure leaves the WAL appending where it was.
func (w *WAL) rotate() error {
	if err := w.current.sync(); err != nil {
		return errors.Wrap(err, "sync segment")
	}

	seg, err := openSegment(w.dir, w.segIndex+1)
	if err != nil {
		return errors.Wrap(err, "rotate segment")
	}

	_ = w.current.close()
	w.current = seg
	w.segIndex++
	w.lastRotate = time.Now()
	return nil
}

// Frame:
// [type:1][seq:8][time:8][len:4][payload][crc:4]
func encodeFrame(r *Record) []byte {
	payloadLen := uint32(len(r.Data))
	buf := make([]byte, headerSize+payloadLen+crcSize)

	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[headerSize:], r.Data)

	crc := CRC32(buf[:headerSize+payloadLen])
	binary.BigEndian.PutUint32(buf[headerSize+payloadLen:], crc)
	return buf
}

// repairTail truncates path after its last intact frame.
func repairTail(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	var good int64
	for {
		rec, err := readRecord(f)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return f.Truncate(good)
		}
		good += int64(headerSize + len(rec.Data) + crcSize)
	}
}
