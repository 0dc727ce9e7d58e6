package reference

import (
	"github.com/gaissmai/bart"

	"github.com/khalid-nowaf/multibit/pkg/trie"
)

// Bart answers lookups with a gaissmai/bart routing table, an independent
// multibit trie implementation.
type Bart struct {
	table *bart.Table[int]
}

func NewBart() *Bart {
	return &Bart{table: new(bart.Table[int])}
}

func (b *Bart) Insert(prefix uint32, length int, nextHop int) error {
	if err := validate(length); err != nil {
		return err
	}

	pfx := Entry{Prefix: prefix, Length: length}.NetipPrefix()
	// bart overwrites an existing prefix, the first record must win
	if _, found := b.table.Get(pfx); found {
		return nil
	}
	b.table.Insert(pfx, nextHop)
	return nil
}

func (b *Bart) Lookup(addr uint32) int {
	if nextHop, ok := b.table.Lookup(ToAddr(addr)); ok {
		return nextHop
	}
	return trie.NoRoute
}
