package rbtree

// Check walks the whole tree and verifies the red-black rules, the
// parent links, key order and the size counter.
func (t *Tree) Check() error {
	if t.destroyed {
		return ErrDestroyed
	}
	if t.nil.color != Black {
		return &InvariantError{Rule: "sentinel is black"}
	}
	if t.root == t.nil {
		if t.size != 0 {
			return &InvariantError{Rule: "size matches node count"}
		}
		return nil
	}
	if t.root.color != Black {
		return &InvariantError{Rule: "root is black", Key: t.root.key}
	}
	if t.root.parent != t.nil {
		return &InvariantError{Rule: "root parent is sentinel", Key: t.root.key}
	}

	count := 0
	if _, err := t.checkNode(t.root, &count); err != nil {
		return err
	}
	if count != t.size {
		return &InvariantError{Rule: "size matches node count"}
	}

	var prev *Node
	stack := make([]*Node, 0, 64)
	n := t.root
	for n != t.nil || len(stack) > 0 {
		for n != t.nil {
			stack = append(stack, n)
			n = n.left
		}
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if prev != nil && n.key < prev.key {
			return &InvariantError{Rule: "in-order keys non-decreasing", Key: n.key}
		}
		prev = n
		n = n.right
	}
	return nil
}

// checkNode returns the black-height of the subtree at n.
func (t *Tree) checkNode(n *Node, count *int) (int, error) {
	if n == t.nil {
		return 1, nil
	}
	*count++
	if n.tree != t {
		return 0, &InvariantError{Rule: "node owned by tree", Key: n.key}
	}
	for _, c := range [2]*Node{n.left, n.right} {
		if c == t.nil {
			continue
		}
		if c.parent != n {
			return 0, &InvariantError{Rule: "child parent link", Key: c.key}
		}
		if n.color == Red && c.color == Red {
			return 0, &InvariantError{Rule: "red node has black children", Key: n.key}
		}
	}
	lh, err := t.checkNode(n.left, count)
	if err != nil {
		return 0, err
	}
	rh, err := t.checkNode(n.right, count)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, &InvariantError{Rule: "uniform black-height", Key: n.key}
	}
	if n.color == Black {
		lh++
	}
	return lh, nil
}

// Height is the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	if t.IsEmpty() {
		return 0
	}
	return t.height(t.root)
}

func (t *Tree) height(n *Node) int {
	if n == t.nil {
		return 0
	}
	l, r := t.height(n.left), t.height(n.right)
	if l > r {
		return l + 1
	}
	return r + 1
}

// BlackHeight counts black nodes from the root down its leftmost path,
// excluding the sentinel.
func (t *Tree) BlackHeight() int {
	if t.IsEmpty() {
		return 0
	}
	h := 0
	for n := t.root; n != t.nil; n = n.left {
		if n.color == Black {
			h++
		}
	}
	return h
}
