package cli

import (
	"fmt"
	"path/filepath"

	"github.com/khalid-nowaf/multibit/pkg/stats"
)

// StrideResult is the outcome of benchmarking one stride.
type StrideResult struct {
	Info        stats.TrieInfo
	Summary     stats.Summary
	SummaryFile string
	SamplesFile string
}

// Benchmark rebuilds the trie from the configured prefix file for every
// stride, looks up all addresses of path quietly and writes
// results_stride_<s>.csv and lookup_times_stride_<s>.csv to the output dir.
// The session keeps the trie of the last stride.
func (s *Session) Benchmark(path string, strides []int) ([]StrideResult, error) {
	results := make([]StrideResult, 0, len(strides))

	for _, stride := range strides {
		s.Logger.Info().Int("stride", stride).Msg("Benchmarking stride")

		if _, err := s.Build(s.Config.PrefixFile, stride); err != nil {
			return results, err
		}

		count, err := s.LookupFile(path, false)
		if err != nil {
			return results, err
		}
		s.Logger.Info().Int("stride", stride).Int("addresses", count).Msg("Lookups done")

		summary, err := s.Recorder.Summary()
		if err != nil {
			return results, err
		}

		result := StrideResult{
			Info:        s.trieInfo(),
			Summary:     summary,
			SummaryFile: filepath.Join(s.Config.OutputDir, fmt.Sprintf("results_stride_%d.csv", stride)),
			SamplesFile: filepath.Join(s.Config.OutputDir, fmt.Sprintf("lookup_times_stride_%d.csv", stride)),
		}

		if err := stats.WriteSummaryCSV(result.SummaryFile, result.Info, summary); err != nil {
			return results, err
		}
		if err := stats.WriteSamplesCSV(result.SamplesFile, s.Recorder.Samples()); err != nil {
			return results, err
		}

		results = append(results, result)
	}

	return results, nil
}
