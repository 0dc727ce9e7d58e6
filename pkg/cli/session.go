package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/khalid-nowaf/multibit/pkg/config"
	"github.com/khalid-nowaf/multibit/pkg/loader"
	"github.com/khalid-nowaf/multibit/pkg/reference"
	"github.com/khalid-nowaf/multibit/pkg/stats"
	"github.com/khalid-nowaf/multibit/pkg/trie"
)

// ErrNotInitialized is returned by commands needing a trie before one was built.
var ErrNotInitialized = errors.New("trie not initialized, use 'build <stride>' first")

// Session is everything the commands share: the current trie, the linear
// reference holding the same prefixes, and the recorded lookup timings.
// It is owned by a single shell and is not safe for concurrent use.
type Session struct {
	Config config.Configuration
	Logger zerolog.Logger
	Out    io.Writer

	Trie      *trie.Trie
	Reference *reference.Linear
	Recorder  *stats.Recorder
	Metrics   *stats.Metrics
}

func NewSession(conf config.Configuration, logger zerolog.Logger, out io.Writer, clk clock.Clock) *Session {
	return &Session{
		Config:    conf,
		Logger:    logger,
		Out:       out,
		Reference: reference.NewLinear(),
		Recorder:  stats.NewRecorder(clk),
		Metrics:   stats.NewMetrics(),
	}
}

// BuildResult summarises a build.
type BuildResult struct {
	Stride   int
	Inserted int
	Rejected int
	Skipped  int
}

// Build replaces the current trie with one built from the prefix file. The
// reference is reloaded with the very same records.
func (s *Session) Build(path string, stride int) (BuildResult, error) {
	result := BuildResult{Stride: stride}

	t, err := trie.New(stride)
	if err != nil {
		return result, err
	}
	ref := reference.NewLinear()

	skipped, err := loader.ReadPrefixFile(path, func(r loader.Record) error {
		if err := t.Insert(r.Prefix, r.Length, r.NextHop); err != nil {
			s.Logger.Warn().Err(err).Int("line", r.Line).Msg("Prefix rejected")
			result.Rejected++
			return nil
		}
		_ = ref.Insert(r.Prefix, r.Length, r.NextHop)
		result.Inserted++
		return nil
	})
	for _, lineErr := range skipped {
		s.Logger.Warn().Err(lineErr).Str("file", path).Msg("Line skipped")
	}
	result.Skipped = len(skipped)
	if err != nil {
		return result, err
	}

	s.Trie, s.Reference = t, ref
	s.publishTrie()

	s.Logger.Debug().
		Int("stride", stride).
		Int("prefixes", result.Inserted).
		Int("nodes", t.NodeCount()).
		Msg("Trie built")

	return result, nil
}

// Insert adds a single prefix to both the trie and the reference.
func (s *Session) Insert(prefix uint32, length int, nextHop int) error {
	if s.Trie == nil {
		return ErrNotInitialized
	}
	if err := s.Trie.Insert(prefix, length, nextHop); err != nil {
		return err
	}
	_ = s.Reference.Insert(prefix, length, nextHop)
	s.publishTrie()
	return nil
}

// Lookup runs a timed lookup and records its duration.
func (s *Session) Lookup(addr uint32) (int, time.Duration, error) {
	if s.Trie == nil {
		return trie.NoRoute, 0, ErrNotInitialized
	}

	nextHop, elapsed := s.Recorder.Time(func() int { return s.Trie.Lookup(addr) })
	s.Metrics.ObserveLookup(elapsed, nextHop)

	return nextHop, elapsed, nil
}

// LookupFile looks up every address of path, replacing the recorded timings.
// In verbose mode every result is printed, otherwise progress is reported
// every ProgressEvery addresses.
func (s *Session) LookupFile(path string, verbose bool) (int, error) {
	if s.Trie == nil {
		return 0, ErrNotInitialized
	}

	s.Recorder.Reset()
	count := 0

	skipped, err := loader.ReadAddressFile(path, func(addr uint32) error {
		nextHop, elapsed, err := s.Lookup(addr)
		if err != nil {
			return err
		}
		count++

		if verbose {
			fmt.Fprintf(s.Out, "0x%X -> %d (%d ns)\n", addr, nextHop, elapsed.Nanoseconds())
		} else if count%s.Config.ProgressEvery == 0 {
			s.Logger.Info().Int("processed", count).Msg("Processing addresses")
		}
		return nil
	})
	for _, lineErr := range skipped {
		s.Logger.Warn().Err(lineErr).Str("file", path).Msg("Line skipped")
	}

	return count, err
}

// Generate writes count random addresses to path. It needs no trie.
func (s *Session) Generate(path string, count int, seed int64) error {
	addrs, err := loader.GenerateAddresses(count, seed)
	if err != nil {
		return err
	}
	if err := loader.WriteAddressFile(path, addrs); err != nil {
		return err
	}

	s.Logger.Debug().Int("count", count).Int64("seed", seed).Str("file", path).Msg("Addresses generated")
	return nil
}

func (s *Session) trieInfo() stats.TrieInfo {
	return stats.TrieInfo{
		Stride:         s.Trie.Stride(),
		NodeCount:      s.Trie.NodeCount(),
		EstimatedBytes: s.Trie.EstimateMemory(),
	}
}

func (s *Session) publishTrie() {
	s.Metrics.SetTrie(s.Trie.NodeCount(), s.Trie.EstimateMemory(), s.Reference.Len())
}
