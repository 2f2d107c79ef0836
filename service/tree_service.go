package service

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/cockroachdb/errors"

	"redblack/domain/rbtree"
	"redblack/infra/sequence"
	entrywal "redblack/infra/wal/entry"
	exitwal "redblack/infra/wal/exit"
)

/*
TreeService is the ONLY write entry point into the tree.

The tree itself is single-threaded. Every call here takes one
exclusive lock for its whole duration, which is the serialization
the tree requires from concurrent callers.
*/

type TreeService struct {
	mu      sync.Mutex
	tree    *rbtree.Tree
	seqGen  *sequence.Sequencer
	journal *entrywal.WAL
	outbox  *exitwal.ExitWAL
	log     *logger.L
}

// Stats describes the current shape of the tree.
type Stats struct {
	Size        int
	Height      int
	BlackHeight int
	LastSeq     uint64
}

// NewTreeService wires the tree to its journal and outbox. Either may
// be nil, in which case that step is skipped.
func NewTreeService(
	tree *rbtree.Tree,
	seqGen *sequence.Sequencer,
	journal *entrywal.WAL,
	outbox *exitwal.ExitWAL,
	log *logger.L,
) *TreeService {
	return &TreeService{
		tree:    tree,
		seqGen:  seqGen,
		journal: journal,
		outbox:  outbox,
		log:     log,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Insert adds key and returns the sequence number it was journaled under.
func (s *TreeService) Insert(key int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// allocate and link; nothing is journaled if this fails
	n, err := s.tree.Insert(key)
	if err != nil {
		return 0, err
	}

	seq := s.seqGen.Next()
	if err := s.record(entrywal.NewInsert(seq, key)); err != nil {
		if undo := s.tree.Erase(n); undo != nil {
			s.log.Criticalf("undo insert %d: %s", key, undo)
		}
		return 0, errors.Wrap(err, "journal insert")
	}

	s.emit(exitwal.Event{Seq: seq, Op: exitwal.OpInsert, Key: key})
	return seq, nil
}

// Erase removes one node holding key: the one Find would return.
func (s *TreeService) Erase(key int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.tree.Find(key)
	if err != nil {
		return 0, err
	}

	seq := s.seqGen.Next()
	if err := s.record(entrywal.NewErase(seq, key)); err != nil {
		return 0, errors.Wrap(err, "journal erase")
	}

	if err := s.tree.Erase(n); err != nil {
		return 0, err
	}

	s.emit(exitwal.Event{Seq: seq, Op: exitwal.OpErase, Key: key})
	return seq, nil
}

// record journals rec. An error means rec is not in the journal. A
// consumed sequence number is never handed out again, so a failed
// record leaves a gap rather than a repeat.
func (s *TreeService) record(rec *entrywal.Record) error {
	if s.journal == nil {
		return nil
	}
	err := s.journal.Append(rec)
	if errors.Is(err, entrywal.ErrRotation) {
		s.log.Warnf("journal %s seq %d written, %s", rec.Type, rec.Seq, err)
		return nil
	}
	return err
}

func (s *TreeService) emit(ev exitwal.Event) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.PutNew(ev); err != nil {
		s.log.Warnf("outbox %s seq %d: %s", ev.Op, ev.Seq, err)
	}
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *TreeService) Contains(key int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.tree.Find(key)
	if errors.Is(err, rbtree.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *TreeService) Min() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.tree.Min()
	if err != nil {
		return 0, err
	}
	return n.Key(), nil
}

func (s *TreeService) Max() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.tree.Max()
	if err != nil {
		return 0, err
	}
	return n.Key(), nil
}

// Export returns up to capacity keys in ascending order.
func (s *TreeService) Export(capacity int) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.Keys(capacity)
}

// ExportAll returns every key in ascending order.
func (s *TreeService) ExportAll() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.Keys(s.tree.Len())
}

func (s *TreeService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Size:        s.tree.Len(),
		Height:      s.tree.Height(),
		BlackHeight: s.tree.BlackHeight(),
		LastSeq:     s.seqGen.Current(),
	}
}

// Verify runs the full invariant check over the tree.
func (s *TreeService) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tree.Check(); err != nil {
		s.log.Criticalf("tree check failed: %s", err)
		return err
	}
	return nil
}

//
// ──────────────────────────────────────────────────────────
// Shutdown
// ──────────────────────────────────────────────────────────
//

// Close syncs the journal and destroys the tree. Later calls fail
// with rbtree.ErrDestroyed.
func (s *TreeService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.journal != nil {
		err = s.journal.Sync()
	}
	s.tree.Destroy()
	return err
}
