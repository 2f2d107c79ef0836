package rbtree

import "github.com/cockroachdb/errors"

// Insert adds key and returns its node. Equal keys go to the right of
// existing ones. Storage is obtained before the tree is modified, so a
// failed allocation leaves the tree as it was.
func (t *Tree) Insert(key int64) (*Node, error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	z, err := t.alloc.Get()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "insert key %d", key), ErrAllocation)
	}

	y := t.nil
	x := t.root
	for x != t.nil {
		y = x
		if key < x.key {
			x = x.left
		} else {
			x = x.right
		}
	}

	*z = Node{
		key:    key,
		color:  Red,
		left:   t.nil,
		right:  t.nil,
		parent: y,
		tree:   t,
	}
	if y == t.nil {
		t.root = z
	} else if key < y.key {
		y.left = z
	} else {
		y.right = z
	}
	t.insertFixup(z)
	t.size++
	return z, nil
}

func (t *Tree) insertFixup(z *Node) {
	for z.parent.color == Red {
		if z.parent == z.parent.parent.left {
			uncle := z.parent.parent.right
			if uncle.color == Red {
				z.parent.color = Black
				uncle.color = Black
				z.parent.parent.color = Red
				z = z.parent.parent
				continue
			}
			if z == z.parent.right {
				z = z.parent
				t.rotateLeft(z)
			}
			z.parent.color = Black
			z.parent.parent.color = Red
			t.rotateRight(z.parent.parent)
		} else {
			uncle := z.parent.parent.left
			if uncle.color == Red {
				z.parent.color = Black
				uncle.color = Black
				z.parent.parent.color = Red
				z = z.parent.parent
				continue
			}
			if z == z.parent.left {
				z = z.parent
				t.rotateRight(z)
			}
			z.parent.color = Black
			z.parent.parent.color = Red
			t.rotateLeft(z.parent.parent)
		}
	}
	t.root.color = Black
}
