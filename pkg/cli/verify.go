package cli

import (
	"github.com/pkg/errors"

	"github.com/khalid-nowaf/multibit/pkg/loader"
	"github.com/khalid-nowaf/multibit/pkg/reference"
)

// Oracle names accepted by NewOracle.
const (
	OracleLinear = "linear"
	OracleBart   = "bart"
	OracleRanger = "ranger"
)

// maxExplained is the number of mismatches annotated with their best matches.
const maxExplained = 5

// Mismatch is an address the trie and the oracle disagree on.
type Mismatch struct {
	Addr      uint32
	Trie      int
	Reference int
	// longest matching reference records, only for the first few mismatches
	TopMatches []reference.Entry
}

// Report is the outcome of a correctness run.
type Report struct {
	Oracle     string
	Total      int
	Correct    int
	Mismatches []Mismatch
}

func (r Report) Passed() bool {
	return r.Correct == r.Total
}

func (r Report) Percent() float64 {
	if r.Total == 0 {
		return 100
	}
	return 100 * float64(r.Correct) / float64(r.Total)
}

// NewOracle loads the given records into the named oracle.
func NewOracle(name string, entries []reference.Entry) (reference.Oracle, error) {
	var oracle reference.Oracle

	switch name {
	case OracleLinear:
		oracle = reference.NewLinear()
	case OracleBart:
		oracle = reference.NewBart()
	case OracleRanger:
		oracle = reference.NewRanger()
	default:
		return nil, errors.Errorf("unknown oracle %q", name)
	}

	for _, e := range entries {
		if err := oracle.Insert(e.Prefix, e.Length, e.NextHop); err != nil {
			return nil, err
		}
	}
	return oracle, nil
}

// Verify compares the trie with the named oracle for every address of path.
func (s *Session) Verify(path string, oracleName string) (Report, error) {
	report := Report{Oracle: oracleName}

	if s.Trie == nil {
		return report, ErrNotInitialized
	}
	if s.Reference.Len() == 0 {
		return report, errors.New("reference table is empty, build the trie from a file first")
	}

	addrs, skipped, err := loader.LoadAddresses(path)
	for _, lineErr := range skipped {
		s.Logger.Warn().Err(lineErr).Str("file", path).Msg("Line skipped")
	}
	if err != nil {
		return report, err
	}

	oracle, err := NewOracle(oracleName, s.Reference.Entries())
	if err != nil {
		return report, err
	}

	for _, addr := range addrs {
		report.Total++

		got, want := s.Trie.Lookup(addr), oracle.Lookup(addr)
		if got == want {
			report.Correct++
			continue
		}

		mismatch := Mismatch{Addr: addr, Trie: got, Reference: want}
		if len(report.Mismatches) < maxExplained {
			matches := s.Reference.Matches(addr)
			mismatch.TopMatches = matches[:min(3, len(matches))]
		}
		report.Mismatches = append(report.Mismatches, mismatch)
	}

	return report, nil
}
