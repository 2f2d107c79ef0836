package entry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

const segmentPattern = "segment-*.wal"

// segmentFile is the part of *os.File a segment writes through.
type segmentFile interface {
	Write([]byte) (int, error)
	Truncate(int64) error
	Sync() error
	Close() error
}

type segment struct {
	file   segmentFile
	offset int64
}

func segmentPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("segment-%06d.wal", index))
}

func openSegment(dir string, index int) (*segment, error) {
	f, err := os.OpenFile(segmentPath(dir, index), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &segment{file: f, offset: st.Size()}, nil
}

// append writes b as one frame. A failed write is cut back to the old
// offset so no partial frame is left behind.
func (s *segment) append(b []byte) error {
	n, err := s.file.Write(b)
	if err == nil {
		s.offset += int64(n)
		return nil
	}
	if n > 0 {
		if terr := s.file.Truncate(s.offset); terr != nil {
			return errors.CombineErrors(err, errors.Wrapf(terr, "truncate to %d", s.offset))
		}
	}
	return err
}

func (s *segment) sync() error {
	return s.file.Sync()
}

func (s *segment) close() error {
	return s.file.Close()
}

// listSegments returns segment paths in write order.
func listSegments(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, segmentPattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func segmentIndex(path string) (int, error) {
	var idx int
	_, err := fmt.Sscanf(filepath.Base(path), "segment-%06d.wal", &idx)
	return idx, err
}
