package rbtree

// Export writes keys in ascending order into dst and returns how many
// were written. The walk stops as soon as dst is full, so a short dst
// receives the smallest len(dst) keys.
func (t *Tree) Export(dst []int64) int {
	if t.IsEmpty() || len(dst) == 0 {
		return 0
	}
	stack := make([]*Node, 0, 64)
	written := 0
	n := t.root
	for n != t.nil || len(stack) > 0 {
		for n != t.nil {
			stack = append(stack, n)
			n = n.left
		}
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dst[written] = n.key
		written++
		if written == len(dst) {
			break
		}
		n = n.right
	}
	return written
}

// Keys returns up to capacity keys in ascending order.
func (t *Tree) Keys(capacity int) []int64 {
	if capacity > t.size {
		capacity = t.size
	}
	if capacity <= 0 {
		return []int64{}
	}
	out := make([]int64, capacity)
	return out[:t.Export(out)]
}
