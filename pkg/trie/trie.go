package trie

import (
	"math/bits"

	"github.com/pkg/errors"
)

// NoRoute is the next hop reported for addresses no stored prefix covers.
const NoRoute = -1

// MaxLength is the key width in bits.
const MaxLength = 32

// ErrInvalidArgument is returned for an unsupported stride or an out of range
// prefix length or next hop. The trie stays usable after it is returned.
var ErrInvalidArgument = errors.New("invalid argument")

// rootIndex is the arena slot of the root. Since the root is never anybody's
// child, a child slot holding rootIndex means "absent".
const (
	rootIndex int32 = 0
	absent    int32 = rootIndex
)

// route is the forwarding decision stored on a node.
type route struct {
	nextHop int
	length  int
	set     bool
}

// Trie is a multibit trie with a fixed stride.
//
// Nodes live in an arena addressed by index. The children of node i occupy
// slots[i*fanout : (i+1)*fanout] and its route is routes[i]. Dropping the Trie
// drops the whole tree at once.
type Trie struct {
	stride int
	fanout int
	slots  []int32
	routes []route
	count  int // maintained on node creation, see CountNodes for a recount
}

// New creates an empty trie consuming stride bits per level.
// The stride must be one of 1, 2, 4 or 8.
func New(stride int) (*Trie, error) {
	switch stride {
	case 1, 2, 4, 8:
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "stride must be 1, 2, 4, or 8, got %d", stride)
	}

	t := &Trie{stride: stride, fanout: 1 << uint(stride)}
	t.Reset()

	return t, nil
}

// Reset tears the whole tree down, leaving an empty root behind.
func (t *Trie) Reset() {
	t.slots = nil
	t.routes = nil
	t.count = 0
	t.newNode()
}

// Stride returns the number of bits consumed per level.
func (t *Trie) Stride() int {
	return t.stride
}

// creates a node with all child slots empty and no route, returns its index
func (t *Trie) newNode() int32 {
	index := int32(len(t.routes))
	t.slots = append(t.slots, make([]int32, t.fanout)...)
	t.routes = append(t.routes, route{})
	t.count++
	return index
}

func (t *Trie) slot(parent int32, index uint32) int {
	return int(parent)*t.fanout + int(index)
}

// returns the child at index, creating it if it does not exist yet
func (t *Trie) childOrCreate(parent int32, index uint32) int32 {
	if child := t.slots[t.slot(parent, index)]; child != absent {
		return child
	}
	child := t.newNode()
	t.slots[t.slot(parent, index)] = child
	return child
}

// stores the route unless the node already holds one at least as long
func (t *Trie) store(at int32, length int, nextHop int) {
	current := &t.routes[at]
	if !current.set || length > current.length {
		*current = route{nextHop: nextHop, length: length, set: true}
	}
}

// Insert adds prefix/length with its next hop. Only the first length bits of
// prefix are significant.
//
// A node keeps its route unless the new prefix is strictly longer, so among
// equal-length insertions the first one wins. The default route (length 0) is
// stored on the root, and the first one ever inserted is permanent.
func (t *Trie) Insert(prefix uint32, length int, nextHop int) error {
	if length < 0 || length > MaxLength {
		return errors.Wrapf(ErrInvalidArgument, "length must be between 0 and %d, got %d", MaxLength, length)
	}
	if nextHop < 0 {
		return errors.Wrapf(ErrInvalidArgument, "next hop must not be negative, got %d", nextHop)
	}

	if length == 0 {
		if !t.routes[rootIndex].set {
			t.routes[rootIndex] = route{nextHop: nextHop, length: 0, set: true}
		}
		return nil
	}

	current := rootIndex
	consumed := 0

	// only nodes reached by consuming whole strides may hold this route
	for consumed+t.stride <= length {
		current = t.childOrCreate(current, ExtractBits(prefix, consumed, t.stride))
		consumed += t.stride
	}

	if consumed == length {
		t.store(current, length, nextHop)
		return nil
	}

	// leaf-push: the low (stride - remaining) bits of the index are wildcards
	wildcard := uint(t.stride - (length - consumed))
	base := ExtractBits(prefix, consumed, t.stride) >> wildcard << wildcard
	for i := uint32(0); i < 1<<wildcard; i++ {
		t.store(t.childOrCreate(current, base|i), length, nextHop)
	}

	return nil
}

// Lookup returns the next hop of the longest prefix covering addr, or NoRoute.
// It visits at most 32/stride nodes and never modifies the trie.
func (t *Trie) Lookup(addr uint32) int {
	best := NoRoute
	if r := t.routes[rootIndex]; r.set {
		best = r.nextHop
	}

	current := rootIndex
	for consumed := 0; consumed < MaxLength; consumed += t.stride {
		next := t.slots[t.slot(current, ExtractBits(addr, consumed, t.stride))]
		if next == absent {
			break
		}
		current = next

		// deeper nodes only ever hold longer prefixes
		if r := t.routes[current]; r.set {
			best = r.nextHop
		}
	}

	return best
}

// NodeCount returns the number of nodes, root included. It is O(1).
func (t *Trie) NodeCount() int {
	return t.count
}

// NodeSize is the estimated footprint in bytes of a single node of a
// pointer-based trie with the given stride: the child slice header, 2^stride
// pointer sized slots, the next hop, the prefix length and the route flag,
// rounded up to pointer alignment.
func NodeSize(stride int) uint64 {
	word := uint64(bits.UintSize / 8)
	children := 3*word + (uint64(1)<<uint(stride))*word
	size := children + word + word + 1
	return (size + word - 1) / word * word
}

// EstimateMemory returns NodeCount()*NodeSize(stride). It is an estimate for
// capacity planning and not what the allocator actually reports.
func (t *Trie) EstimateMemory() uint64 {
	return uint64(t.count) * NodeSize(t.stride)
}
