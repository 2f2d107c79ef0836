package rbtree

import (
	"fmt"
	"testing"
)

func TestRotationsRoundTrip(t *testing.T) {
	tree := New()
	mustInsert(t, tree, 50, 25, 75, 10, 30, 60, 90, 5, 27, 35, 55, 65)

	var internal []*Node
	var collect func(n *Node)
	collect = func(n *Node) {
		if n == tree.nil {
			return
		}
		internal = append(internal, n)
		collect(n.left)
		collect(n.right)
	}
	collect(tree.root)

	for _, x := range internal {
		before := shape(tree)
		order := fmt.Sprint(tree.Keys(tree.Len()))

		if x.right != tree.nil {
			tree.rotateLeft(x)
			if got := fmt.Sprint(tree.Keys(tree.Len())); got != order {
				t.Fatalf("rotateLeft(%d) changed order: %s", x.key, got)
			}
			if tree.root.parent != tree.nil {
				t.Fatalf("rotateLeft(%d) lost the root link", x.key)
			}
			tree.rotateRight(x.parent)
			if got := shape(tree); got != before {
				t.Fatalf("left/right at %d: %s, want %s", x.key, got, before)
			}
		}

		if x.left != tree.nil {
			tree.rotateRight(x)
			if got := fmt.Sprint(tree.Keys(tree.Len())); got != order {
				t.Fatalf("rotateRight(%d) changed order: %s", x.key, got)
			}
			tree.rotateLeft(x.parent)
			if got := shape(tree); got != before {
				t.Fatalf("right/left at %d: %s, want %s", x.key, got, before)
			}
		}
	}
	mustCheck(t, tree)
}

func TestRotateAtRoot(t *testing.T) {
	tree := New()
	mustInsert(t, tree, 2, 1, 3)
	root := tree.root

	tree.rotateLeft(root)
	if tree.root.key != 3 || tree.root.left != root || root.parent != tree.root {
		t.Fatalf("unexpected shape after rotateLeft: %s", shape(tree))
	}
	if tree.root.parent != tree.nil {
		t.Fatal("new root must hang off the sentinel")
	}
	tree.rotateRight(tree.root)
	if tree.root != root {
		t.Fatalf("rotateRight did not restore the root: %s", shape(tree))
	}
	mustCheck(t, tree)
}
