package entry

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

var (
	ErrCorrupt      = errors.New("entry: crc mismatch")
	ErrNonMonotonic = errors.New("entry: non-monotonic sequence")
)

type ReplayHandler func(*Record) error

// Replay feeds every journaled record to fn in write order and returns
// the last sequence seen. A frame cut short at the very end of the
// newest segment is treated as the end of the journal.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	files, err := listSegments(dir)
	if err != nil {
		return 0, err
	}

	for i, path := range files {
		tail := i == len(files)-1
		lastSeq, err = replaySegment(path, tail, lastSeq, fn)
		if err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func replaySegment(path string, tail bool, lastSeq uint64, fn ReplayHandler) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return lastSeq, err
	}
	defer f.Close()

	for {
		rec, err := readRecord(f)
		if err == io.EOF {
			return lastSeq, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) && tail {
			return lastSeq, nil
		}
		if err != nil {
			return lastSeq, errors.Wrapf(err, "read %s", path)
		}

		if rec.Seq <= lastSeq {
			return lastSeq, errors.Wrapf(ErrNonMonotonic, "seq %d after %d", rec.Seq, lastSeq)
		}
		lastSeq = rec.Seq

		if err := fn(rec); err != nil {
			return lastSeq, err
		}
	}
}

func readRecord(r io.Reader) (*Record, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	t := RecordType(header[0])
	seq := binary.BigEndian.Uint64(header[1:9])
	ts := binary.BigEndian.Uint64(header[9:17])
	l := binary.BigEndian.Uint32(header[17:21])

	data := make([]byte, l+crcSize)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	payload := data[:l]
	crc := binary.BigEndian.Uint32(data[l:])

	if !CRC32Valid(append(header, payload...), crc) {
		return nil, errors.Wrapf(ErrCorrupt, "seq %d", seq)
	}

	return &Record{
		Type: t,
		Seq:  seq,
		Time: int64(ts),
		Data: payload,
	}, nil
}
