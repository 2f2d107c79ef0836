package rbtree

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound    = errors.New("rbtree: key not found")
	ErrEmpty       = errors.New("rbtree: tree is empty")
	ErrAllocation  = errors.New("rbtree: node allocation failed")
	ErrForeignNode = errors.New("rbtree: node does not belong to this tree")
	ErrDestroyed   = errors.New("rbtree: tree has been destroyed")
)

// InvariantError reports a structural violation found by Check.
type InvariantError struct {
	Rule string
	Key  int64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("rbtree: invariant %q violated at key %d", e.Rule, e.Key)
}
