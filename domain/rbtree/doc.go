// Package rbtree implements a red-black tree over int64 keys.
//
// Every tree owns one black sentinel node that stands in for every
// absent child and for the parent of the root, so none of the
// traversal or fixup routines need nil checks. Duplicate keys are
// allowed and are placed to the right of equal keys.
//
// A Tree is not safe for concurrent use. Callers that share a tree
// across goroutines must hold one exclusive lock per operation.
//
// A *Node returned by Insert, Find, Min or Max stays valid until it
// is erased or the tree is destroyed. Using it after that is a caller
// error; Erase detects handles that no longer belong to the tree.
package rbtree
