package entry

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T, dir string, segSize int64) *WAL {
	t.Helper()
	w, err := Open(Config{Dir: dir, SegmentSize: segSize, SegmentDuration: time.Hour})
	require.NoError(t, err)
	return w
}

func collect(t *testing.T, dir string) ([]*Record, uint64) {
	t.Helper()
	var recs []*Record
	last, err := Replay(dir, func(r *Record) error {
		recs = append(recs, r)
		return nil
	})
	require.NoError(t, err)
	return recs, last
}

func TestAppendAndReplay(t *testing.T) {
	dir := t.TempDir()
	w := openTest(t, dir, DefaultSegmentSize)

	const n = 100
	for i := 1; i <= n; i++ {
		var rec *Record
		if i%3 == 0 {
			rec = NewErase(uint64(i), int64(-i))
		} else {
			rec = NewInsert(uint64(i), int64(i*10))
		}
		require.NoError(t, w.Append(rec))
	}
	require.NoError(t, w.Close())

	recs, last := collect(t, dir)
	require.Len(t, recs, n)
	assert.Equal(t, uint64(n), last)

	for i, r := range recs {
		seq := i + 1
		k, err := r.Key()
		require.NoError(t, err)
		if seq%3 == 0 {
			assert.Equal(t, RecordErase, r.Type)
			assert.Equal(t, int64(-seq), k)
		} else {
			assert.Equal(t, RecordInsert, r.Type)
			assert.Equal(t, int64(seq*10), k)
		}
	}
}

func TestRotationBySize(t *testing.T) {
	dir := t.TempDir()
	frame := int64(headerSize + 8 + crcSize)
	w := openTest(t, dir, 4*frame)

	for i := 1; i <= 10; i++ {
		require.NoError(t, w.Append(NewInsert(uint64(i), int64(i))))
	}
	require.NoError(t, w.Close())

	files, err := listSegments(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	recs, last := collect(t, dir)
	assert.Len(t, recs, 10)
	assert.Equal(t, uint64(10), last)
}

func TestReopenResumesInNewSegment(t *testing.T) {
	dir := t.TempDir()
	w := openTest(t, dir, DefaultSegmentSize)
	require.NoError(t, w.Append(NewInsert(1, 5)))
	require.NoError(t, w.Close())

	w = openTest(t, dir, DefaultSegmentSize)
	require.NoError(t, w.Append(NewInsert(2, 6)))
	require.NoError(t, w.Close())

	files, err := listSegments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "segment-000000.wal"),
		filepath.Join(dir, "segment-000001.wal"),
	}, files)

	_, last := collect(t, dir)
	assert.Equal(t, uint64(2), last)
}

func TestTornTailIsRepaired(t *testing.T) {
	dir := t.TempDir()
	w := openTest(t, dir, DefaultSegmentSize)
	for i := 1; i <= 3; i++ {
		require.NoError(t, w.Append(NewInsert(uint64(i), int64(i))))
	}
	require.NoError(t, w.Close())

	path := segmentPath(dir, 0)
	st, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, st.Size()-5))

	// replay stops at the torn frame
	recs, last := collect(t, dir)
	assert.Len(t, recs, 2)
	assert.Equal(t, uint64(2), last)

	// reopening cuts the torn frame so later segments replay cleanly
	w = openTest(t, dir, DefaultSegmentSize)
	require.NoError(t, w.Append(NewInsert(3, 30)))
	require.NoError(t, w.Close())

	recs, last = collect(t, dir)
	assert.Len(t, recs, 3)
	assert.Equal(t, uint64(3), last)
}

func TestCorruptFrameFailsReplay(t *testing.T) {
	dir := t.TempDir()
	w := openTest(t, dir, DefaultSegmentSize)
	require.NoError(t, w.Append(NewInsert(1, 1)))
	require.NoError(t, w.Append(NewInsert(2, 2)))
	require.NoError(t, w.Close())

	path := segmentPath(dir, 0)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[headerSize] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Replay(dir, func(*Record) error { return nil })
	assert.True(t, errors.Is(err, ErrCorrupt), "got %v", err)
}

func TestNonMonotonicFailsReplay(t *testing.T) {
	dir := t.TempDir()
	w := openTest(t, dir, DefaultSegmentSize)
	require.NoError(t, w.Append(NewInsert(5, 1)))
	require.NoError(t, w.Append(NewInsert(5, 2)))
	require.NoError(t, w.Close())

	_, err := Replay(dir, func(*Record) error { return nil })
	assert.True(t, errors.Is(err, ErrNonMonotonic), "got %v", err)
}

func TestBadPayload(t *testing.T) {
	r := NewRecord(RecordInsert, 1, []byte{1, 2, 3})
	_, err := r.Key()
	assert.True(t, errors.Is(err, ErrBadPayload))
	assert.Equal(t, "insert", RecordInsert.String())
	assert.Equal(t, "erase", RecordErase.String())
}

func TestRotationFailureKeepsRecord(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "journal")
	moved := filepath.Join(root, "journal-moved")
	w := openTest(t, dir, 1)

	require.NoError(t, os.Rename(dir, moved))
	err := w.Append(NewInsert(1, 10))
	assert.True(t, errors.Is(err, ErrRotation), "got %v", err)
	require.NoError(t, os.Rename(moved, dir))

	// rotation is retried and the WAL moves on
	require.NoError(t, w.Append(NewInsert(2, 20)))
	require.NoError(t, w.Close())

	files, err := listSegments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{segmentPath(dir, 0), segmentPath(dir, 1)}, files)

	recs, last := collect(t, dir)
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(2), last)
}

func TestSequenceGapsReplay(t *testing.T) {
	dir := t.TempDir()
	w := openTest(t, dir, DefaultSegmentSize)
	require.NoError(t, w.Append(NewInsert(1, 1)))
	require.NoError(t, w.Append(NewInsert(3, 3)))
	require.NoError(t, w.Close())

	recs, last := collect(t, dir)
	assert.Len(t, recs, 2)
	assert.Equal(t, uint64(3), last)
}

// shortFile accepts writes until limit bytes, then writes what fits
// and fails.
type shortFile struct {
	buf   []byte
	limit int
}

func (f *shortFile) Write(b []byte) (int, error) {
	if room := f.limit - len(f.buf); len(b) > room {
		f.buf = append(f.buf, b[:room]...)
		return room, io.ErrShortWrite
	}
	f.buf = append(f.buf, b...)
	return len(b), nil
}

func (f *shortFile) Truncate(n int64) error {
	f.buf = f.buf[:n]
	return nil
}

func (f *shortFile) Sync() error  { return nil }
func (f *shortFile) Close() error { return nil }

func TestFailedWriteLeavesNoPartialFrame(t *testing.T) {
	frame := headerSize + 8 + crcSize
	f := &shortFile{limit: frame + frame/2}
	seg := &segment{file: f}

	require.NoError(t, seg.append(encodeFrame(NewInsert(1, 1))))
	err := seg.append(encodeFrame(NewInsert(2, 2)))
	assert.True(t, errors.Is(err, io.ErrShortWrite), "got %v", err)
	assert.Len(t, f.buf, frame)
	assert.Equal(t, int64(frame), seg.offset)

	f.limit = 10 * frame
	require.NoError(t, seg.append(encodeFrame(NewInsert(3, 3))))

	r := bytes.NewReader(f.buf)
	var seqs []uint64
	for {
		rec, err := readRecord(r)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		seqs = append(seqs, rec.Seq)
	}
	assert.Equal(t, []uint64{1, 3}, seqs)
}
