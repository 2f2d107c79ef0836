package entry

import (
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"
)

type RecordType uint8

const (
	RecordInsert RecordType = iota + 1
	RecordErase
)

func (t RecordType) String() string {
	switch t {
	case RecordInsert:
		return "insert"
	case RecordErase:
		return "erase"
	default:
		return "unknown"
	}
}

var ErrBadPayload = errors.New("entry: record payload is not an 8-byte key")

// Record is one journaled tree command.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}

func NewInsert(seq uint64, key int64) *Record { return NewRecord(RecordInsert, seq, encodeKey(key)) }
func NewErase(seq uint64, key int64) *Record  { return NewRecord(RecordErase, seq, encodeKey(key)) }

// Key decodes the tree key carried by an insert or erase record.
func (r *Record) Key() (int64, error) {
	if len(r.Data) != 8 {
		return 0, errors.Wrapf(ErrBadPayload, "seq %d has %d bytes", r.Seq, len(r.Data))
	}
	return int64(binary.BigEndian.Uint64(r.Data)), nil
}

func encodeKey(key int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(key))
	return b
}
