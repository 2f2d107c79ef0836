package service

import (
	"github.com/bitmark-inc/logger"
	"github.com/cockroachdb/errors"

	"redblack/domain/rbtree"
	"redblack/infra/sequence"
	entrywal "redblack/infra/wal/entry"
)

/*
ReplayFromWAL rebuilds the tree from the command journal.

IMPORTANT:
- This MUST run before accepting traffic
- The outbox is NOT replayed; its events were already queued
*/

func ReplayFromWAL(
	walDir string,
	tree *rbtree.Tree,
	seqGen *sequence.Sequencer,
	log *logger.L,
) error {
	inserts, erases := 0, 0
	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		key, err := rec.Key()
		if err != nil {
			return err
		}

		switch rec.Type {
		case entrywal.RecordInsert:
			if _, err := tree.Insert(key); err != nil {
				return errors.Wrapf(err, "replay seq %d", rec.Seq)
			}
			inserts++
		case entrywal.RecordErase:
			if err := tree.EraseKey(key); err != nil {
				return errors.Wrapf(err, "replay seq %d", rec.Seq)
			}
			erases++
		default:
			log.Warnf("skipping record seq %d with unknown type %d", rec.Seq, rec.Type)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Resume sequencing AFTER replay
	seqGen.Reset(lastSeq)

	log.Infof("journal replay done: %d inserts, %d erases, last seq %d, %d keys",
		inserts, erases, lastSeq, tree.Len())
	return nil
}
