package service_test

import (
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redblack/domain/rbtree"
	"redblack/infra/sequence"
	entrywal "redblack/infra/wal/entry"
	"redblack/service"
)

func TestReplayRebuildsTree(t *testing.T) {
	dir := t.TempDir()
	log := logger.New("service")

	journal, err := entrywal.Open(entrywal.Config{Dir: dir})
	require.NoError(t, err)
	svc := service.NewTreeService(rbtree.New(), sequence.New(0), journal, nil, log)

	for _, k := range []int64{8, 3, 12, 3, 20, 1} {
		_, err := svc.Insert(k)
		require.NoError(t, err)
	}
	for _, k := range []int64{3, 20} {
		_, err := svc.Erase(k)
		require.NoError(t, err)
	}
	want := svc.Export(100)
	require.NoError(t, journal.Close())

	tree := rbtree.New()
	seq := sequence.New(0)
	require.NoError(t, service.ReplayFromWAL(dir, tree, seq, log))

	assert.Equal(t, want, tree.Keys(100))
	assert.Equal(t, []int64{1, 3, 8, 12}, tree.Keys(100))
	assert.Equal(t, uint64(8), seq.Current())
	require.NoError(t, tree.Check())

	// sequencing continues past the journal
	journal, err = entrywal.Open(entrywal.Config{Dir: dir})
	require.NoError(t, err)
	defer journal.Close()
	svc = service.NewTreeService(tree, seq, journal, nil, log)
	next, err := svc.Insert(50)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), next)
}

func TestReplayEmptyDir(t *testing.T) {
	tree := rbtree.New()
	seq := sequence.New(0)
	require.NoError(t, service.ReplayFromWAL(t.TempDir(), tree, seq, logger.New("service")))
	assert.True(t, tree.IsEmpty())
	assert.Equal(t, uint64(0), seq.Current())
}
