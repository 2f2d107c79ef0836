package rbtree

// transplant puts v where u hangs. v.parent is written even when v is
// the sentinel; deleteFixup reads it to find where the deficit sits.
func (t *Tree) transplant(u, v *Node) {
	if u.parent == t.nil {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

// successor returns the leftmost node under x.
func (t *Tree) successor(x *Node) *Node {
	return t.minNode(x)
}

// Erase unlinks p and returns its storage to the allocator. p must
// have come from this tree and must not have been erased already.
func (t *Tree) Erase(p *Node) error {
	if t.destroyed {
		return ErrDestroyed
	}
	if p == nil || p.tree != t {
		return ErrForeignNode
	}

	var x *Node
	removed := p.color

	switch {
	case p.left == t.nil:
		x = p.right
		t.transplant(p, p.right)
	case p.right == t.nil:
		x = p.left
		t.transplant(p, p.left)
	default:
		y := t.successor(p.right)
		removed = y.color
		x = y.right
		if y.parent == p {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = p.right
			y.right.parent = y
		}
		t.transplant(p, y)
		y.left = p.left
		y.left.parent = y
		y.color = p.color
	}

	t.size--
	t.release(p)
	if removed == Black {
		t.deleteFixup(x)
	}
	return nil
}

// EraseKey removes the node Find(key) would return.
func (t *Tree) EraseKey(key int64) error {
	if t.destroyed {
		return ErrDestroyed
	}
	n, err := t.Find(key)
	if err != nil {
		return err
	}
	return t.Erase(n)
}

func (t *Tree) deleteFixup(x *Node) {
	for x != t.root && x.color == Black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == Red {
				w.color = Black
				x.parent.color = Red
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if w.left.color == Black && w.right.color == Black {
				w.color = Red
				x = x.parent
				continue
			}
			if w.right.color == Black {
				w.left.color = Black
				w.color = Red
				t.rotateRight(w)
				w = x.parent.right
			}
			w.color = x.parent.color
			x.parent.color = Black
			w.right.color = Black
			t.rotateLeft(x.parent)
			x = t.root
		} else {
			w := x.parent.left
			if w.color == Red {
				w.color = Black
				x.parent.color = Red
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if w.right.color == Black && w.left.color == Black {
				w.color = Red
				x = x.parent
				continue
			}
			if w.left.color == Black {
				w.right.color = Black
				w.color = Red
				t.rotateLeft(w)
				w = x.parent.left
			}
			w.color = x.parent.color
			x.parent.color = Black
			w.left.color = Black
			t.rotateRight(x.parent)
			x = t.root
		}
	}
	x.color = Black
}
