// ## Overview
// Package trie implements a multibit trie for longest-prefix-match (LPM) lookup
// over 32-bit IPv4 style keys. Every level of the trie consumes a fixed number of
// key bits (the stride), so a lookup visits at most 32/stride nodes instead of
// the 32 a binary trie needs.
//
// Prefixes whose length is not a multiple of the stride are leaf-pushed: the
// route is copied into every child slot that agrees with the remaining prefix
// bits, and never stored on the shorter node above them. Equal-length routes
// landing on the same node keep the first insertion.
//
// ## Example usage:
//
//	t, err := trie.New(4)
//	if err != nil {
//		return err
//	}
//
//	_ = t.Insert(0x0A000000, 8, 1)  // 10.0.0.0/8
//	_ = t.Insert(0x0A0A0000, 16, 2) // 10.10.0.0/16
//
//	fmt.Println(t.Lookup(0x0A0A0A0A)) // Output: 2
//	fmt.Println(t.Lookup(0x0AFFFFFF)) // Output: 1
//	fmt.Println(t.Lookup(0xFFFFFFFF)) // Output: -1 (trie.NoRoute)
//
// A Trie is not safe for concurrent mutation. Once fully built it may be shared
// by readers, provided the caller guarantees no writer runs at the same time.
package trie
