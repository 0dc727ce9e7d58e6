package reference

import (
	"net"

	"github.com/pkg/errors"
	"github.com/yl2chen/cidranger"

	"github.com/khalid-nowaf/multibit/pkg/trie"
)

type rangerEntry struct {
	network net.IPNet
	Entry
}

func (e *rangerEntry) Network() net.IPNet {
	return e.network
}

// Ranger answers lookups with a yl2chen/cidranger path compressed trie.
// The default route is kept aside since it is the ranger's own root network.
type Ranger struct {
	ranger     cidranger.Ranger
	seen       map[prefixKey]struct{}
	defaultHop int
}

type prefixKey struct {
	prefix uint32
	length int
}

func NewRanger() *Ranger {
	return &Ranger{
		ranger:     cidranger.NewPCTrieRanger(),
		seen:       map[prefixKey]struct{}{},
		defaultHop: trie.NoRoute,
	}
}

func (r *Ranger) Insert(prefix uint32, length int, nextHop int) error {
	if err := validate(length); err != nil {
		return err
	}

	if length == 0 {
		if r.defaultHop == trie.NoRoute {
			r.defaultHop = nextHop
		}
		return nil
	}

	key := prefixKey{prefix: prefix & trie.Mask(length), length: length}
	if _, found := r.seen[key]; found {
		return nil
	}
	r.seen[key] = struct{}{}

	entry := &rangerEntry{
		network: net.IPNet{
			IP:   net.IP(ToAddr(key.prefix).AsSlice()),
			Mask: net.CIDRMask(length, trie.MaxLength),
		},
		Entry: Entry{Prefix: key.prefix, Length: length, NextHop: nextHop},
	}

	return errors.Wrapf(r.ranger.Insert(entry), "failed to insert %s", entry.network.String())
}

func (r *Ranger) Lookup(addr uint32) int {
	entries, err := r.ranger.ContainingNetworks(net.IP(ToAddr(addr).AsSlice()))
	if err != nil {
		return r.defaultHop
	}

	bestHop, bestLength := r.defaultHop, -1
	for _, e := range entries {
		if re, ok := e.(*rangerEntry); ok && re.Length > bestLength {
			bestHop, bestLength = re.NextHop, re.Length
		}
	}
	return bestHop
}
