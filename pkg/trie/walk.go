package trie

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NodeInfo is a read-only view of a node handed out by Walk.
type NodeInfo struct {
	Depth       int      // 0 for the root
	Path        []uint32 // branch index taken at each level, empty for the root
	HasRoute    bool
	NextHop     int // NoRoute if HasRoute is false
	RouteLength int // -1 if HasRoute is false
	Children    int // number of present child slots
}

// Walk visits every node depth first, children in ascending index order,
// starting with the root. It stops as soon as fn returns false.
func (t *Trie) Walk(fn func(NodeInfo) bool) {
	t.walk(rootIndex, nil, fn)
}

func (t *Trie) walk(at int32, path []uint32, fn func(NodeInfo) bool) bool {
	info := NodeInfo{
		Depth:       len(path),
		Path:        append([]uint32(nil), path...),
		NextHop:     NoRoute,
		RouteLength: -1,
	}
	if r := t.routes[at]; r.set {
		info.HasRoute, info.NextHop, info.RouteLength = true, r.nextHop, r.length
	}

	children := t.slots[t.slot(at, 0):t.slot(at, uint32(t.fanout))]
	for _, child := range children {
		if child != absent {
			info.Children++
		}
	}

	if !fn(info) {
		return false
	}

	for i, child := range children {
		if child == absent {
			continue
		}
		if !t.walk(child, append(path, uint32(i)), fn) {
			return false
		}
	}
	return true
}

// CountNodes recounts the nodes by walking the whole tree. NodeCount is the
// cheap variant; both must always agree.
func (t *Trie) CountNodes() int {
	n := 0
	t.Walk(func(NodeInfo) bool {
		n++
		return true
	})
	return n
}

// Print writes a depth first dump of the tree to w. Every node is labelled with
// the branch indexes leading to it, route bearing nodes carry their next hop.
// The output is a debugging aid without a stable format.
func (t *Trie) Print(w io.Writer) error {
	out := bufio.NewWriter(w)

	separator := "-"
	if t.stride == 1 {
		separator = "/"
	}

	fmt.Fprintf(out, "Trie structure (stride=%d):\n", t.stride)

	t.Walk(func(n NodeInfo) bool {
		label := "root"
		if n.Depth > 0 {
			labels := make([]string, len(n.Path))
			for i, index := range n.Path {
				labels[i] = strconv.FormatUint(uint64(index), 10)
			}
			label = strings.Repeat("  ", n.Depth) + strings.Join(labels, separator)
		}

		if n.HasRoute {
			fmt.Fprintf(out, "%s [next_hop=%d]\n", label, n.NextHop)
		} else {
			fmt.Fprintln(out, label)
		}
		return true
	})

	return out.Flush()
}

func (t *Trie) String() string {
	var sb strings.Builder
	_ = t.Print(&sb)
	return sb.String()
}
