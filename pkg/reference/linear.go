// Package reference holds longest-prefix-match implementations that are slow or
// foreign but obviously correct. They serve as oracles the multibit trie is
// checked against, never as the lookup path itself.
package reference

import (
	"encoding/binary"
	"net/netip"
	"sort"

	"github.com/pkg/errors"

	"github.com/khalid-nowaf/multibit/pkg/trie"
)

// Oracle is anything answering LPM queries for (prefix, length, next hop)
// records. *trie.Trie satisfies it as well.
type Oracle interface {
	Insert(prefix uint32, length int, nextHop int) error
	Lookup(addr uint32) int
}

// Entry is a single prefix record.
type Entry struct {
	Prefix  uint32
	Length  int
	NextHop int
}

// Contains reports whether addr falls inside the prefix.
func (e Entry) Contains(addr uint32) bool {
	mask := trie.Mask(e.Length)
	return addr&mask == e.Prefix&mask
}

// NetipPrefix converts the entry into a masked netip.Prefix.
func (e Entry) NetipPrefix() netip.Prefix {
	return netip.PrefixFrom(ToAddr(e.Prefix), e.Length).Masked()
}

// ToAddr converts a 32-bit key into an IPv4 address.
func ToAddr(key uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], key)
	return netip.AddrFrom4(b)
}

func validate(length int) error {
	if length < 0 || length > trie.MaxLength {
		return errors.Wrapf(trie.ErrInvalidArgument, "length must be between 0 and %d, got %d", trie.MaxLength, length)
	}
	return nil
}

// Linear answers lookups by scanning every record. Longer prefixes win, equal
// lengths keep the first inserted record.
type Linear struct {
	entries []Entry
}

func NewLinear() *Linear {
	return &Linear{}
}

func (l *Linear) Insert(prefix uint32, length int, nextHop int) error {
	if err := validate(length); err != nil {
		return err
	}
	l.entries = append(l.entries, Entry{Prefix: prefix, Length: length, NextHop: nextHop})
	return nil
}

func (l *Linear) Lookup(addr uint32) int {
	bestHop, bestLength := trie.NoRoute, -1
	for _, e := range l.entries {
		if e.Length > bestLength && e.Contains(addr) {
			bestHop, bestLength = e.NextHop, e.Length
		}
	}
	return bestHop
}

// Matches returns every record containing addr, longest first. Records of
// equal length keep their insertion order.
func (l *Linear) Matches(addr uint32) []Entry {
	matches := []Entry{}
	for _, e := range l.entries {
		if e.Contains(addr) {
			matches = append(matches, e)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Length > matches[j].Length
	})
	return matches
}

// Entries returns the records in insertion order.
func (l *Linear) Entries() []Entry {
	return l.entries
}

func (l *Linear) Len() int {
	return len(l.entries)
}

// Reset forgets all records.
func (l *Linear) Reset() {
	l.entries = nil
}
