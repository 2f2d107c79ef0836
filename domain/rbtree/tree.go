package rbtree

type Color uint8

const (
	Red   Color = 0
	Black Color = 1
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

type Node struct {
	key    int64
	color  Color
	left   *Node
	right  *Node
	parent *Node
	tree   *Tree // owner, nil once erased
}

func (n *Node) Key() int64   { return n.key }
func (n *Node) Color() Color { return n.color }

// Allocator supplies and reclaims node storage. Get may fail; the
// tree reports that as ErrAllocation without touching its structure.
type Allocator interface {
	Get() (*Node, error)
	Put(*Node)
}

type heapAllocator struct{}

func (heapAllocator) Get() (*Node, error) { return &Node{}, nil }
func (heapAllocator) Put(*Node)           {}

type Option func(*Tree)

// WithAllocator makes the tree take node storage from a.
func WithAllocator(a Allocator) Option {
	return func(t *Tree) {
		if a != nil {
			t.alloc = a
		}
	}
}

type Tree struct {
	root      *Node
	nil       *Node // sentinel (black)
	size      int
	alloc     Allocator
	destroyed bool
}

// New constructs an empty tree with a black sentinel.
func New(opts ...Option) *Tree {
	sentinel := &Node{color: Black}
	t := &Tree{
		root:  sentinel,
		nil:   sentinel,
		alloc: heapAllocator{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tree) Len() int { return t.size }

func (t *Tree) IsEmpty() bool { return t.destroyed || t.root == t.nil }

// Root returns the root node, or nil when the tree is empty.
func (t *Tree) Root() *Node {
	if t.IsEmpty() {
		return nil
	}
	return t.root
}

// Destroy releases every node back to the allocator, children before
// parents, and then drops the sentinel. It is a no-op on a nil or
// already destroyed tree.
func (t *Tree) Destroy() {
	if t == nil || t.destroyed {
		return
	}
	stack := make([]*Node, 0, 64)
	var last *Node
	n := t.root
	for n != t.nil || len(stack) > 0 {
		if n != t.nil {
			stack = append(stack, n)
			n = n.left
			continue
		}
		top := stack[len(stack)-1]
		if top.right != t.nil && top.right != last {
			n = top.right
			continue
		}
		stack = stack[:len(stack)-1]
		t.release(top)
		last = top
	}
	t.root = nil
	t.nil = nil
	t.size = 0
	t.destroyed = true
}

// release clears n and hands it back to the allocator.
func (t *Tree) release(n *Node) {
	*n = Node{}
	t.alloc.Put(n)
}
