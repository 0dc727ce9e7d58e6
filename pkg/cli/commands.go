package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"

	"github.com/khalid-nowaf/multibit/pkg/loader"
	"github.com/khalid-nowaf/multibit/pkg/stats"
)

// ErrQuit ends the shell.
var ErrQuit = errors.New("quit")

// Commands is the grammar of a single shell line.
type Commands struct {
	Help            HelpCmd            `cmd:"" aliases:"h" help:"Show available commands"`
	Build           BuildCmd           `cmd:"" help:"Build trie from the prefix file"`
	Insert          InsertCmd          `cmd:"" help:"Insert a prefix"`
	Lookup          LookupCmd          `cmd:"" help:"Lookup single address (hex or decimal)"`
	LookupFile      LookupFileCmd      `cmd:"" name:"lookup-file" help:"Lookup addresses from file"`
	Tprint          TprintCmd          `cmd:"" help:"Print trie structure"`
	Stats           StatsCmd           `cmd:"" help:"Show lookup statistics"`
	Memory          MemoryCmd          `cmd:"" help:"Show memory statistics"`
	SaveStats       SaveStatsCmd       `cmd:"" name:"save-stats" help:"Save statistics to CSV"`
	TestCorrectness TestCorrectnessCmd `cmd:"" name:"test-correctness" help:"Compare the trie with a reference implementation"`
	Benchmark       BenchmarkCmd       `cmd:"" help:"Run the lookups of a file for every stride"`
	Generate        GenerateCmd        `cmd:"" help:"Write random addresses to a file"`
	Metrics         MetricsCmd         `cmd:"" help:"Dump prometheus metrics"`
	Quit            QuitCmd            `cmd:"" aliases:"exit,q" help:"Exit program"`
}

type HelpCmd struct{}

func (cmd *HelpCmd) Run(ctx *kong.Context, s *Session) error {
	fmt.Fprintln(s.Out, "Available commands:")
	for _, node := range ctx.Model.Children {
		if node.Hidden {
			continue
		}
		fmt.Fprintf(s.Out, "  %-52s - %s\n", usage(node), node.Help)
	}
	return nil
}

// usage renders a command line summary such as "insert <prefix> <length> <next-hop>".
func usage(node *kong.Node) string {
	parts := []string{strings.Join(append([]string{node.Name}, node.Aliases...), " / ")}
	for _, arg := range node.Positional {
		if arg.Required {
			parts = append(parts, "<"+arg.Name+">")
		} else {
			parts = append(parts, "[<"+arg.Name+">]")
		}
	}
	for _, flag := range node.Flags {
		if !flag.Hidden {
			parts = append(parts, "[--"+flag.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}

type BuildCmd struct {
	Stride int    `arg:"" help:"Bits per level: 1, 2, 4 or 8"`
	File   string `help:"Prefix file, defaults to the configured one" type:"path"`
}

func (cmd *BuildCmd) Run(s *Session) error {
	file := cmd.File
	if len(file) == 0 {
		file = s.Config.PrefixFile
	}

	result, err := s.Build(file, cmd.Stride)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "Built trie with stride %d from %s (%d prefixes inserted)\n", cmd.Stride, file, result.Inserted)
	fmt.Fprintf(s.Out, "Node count: %d\n", s.Trie.NodeCount())
	fmt.Fprintf(s.Out, "Estimated memory: %d bytes\n", s.Trie.EstimateMemory())
	return nil
}

type InsertCmd struct {
	Prefix  string `arg:"" help:"Prefix in hex"`
	Length  int    `arg:"" help:"Prefix length 0-32"`
	NextHop int    `arg:"" help:"Next hop, non-negative"`
}

func (cmd *InsertCmd) Run(s *Session) error {
	prefix, err := loader.ParseHex(cmd.Prefix)
	if err != nil {
		return err
	}
	if err := s.Insert(prefix, cmd.Length, cmd.NextHop); err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "Inserted prefix: %s/%d -> next_hop=%d\n", cmd.Prefix, cmd.Length, cmd.NextHop)
	return nil
}

type LookupCmd struct {
	Address string `arg:"" help:"Address as 0x-prefixed hex or decimal"`
}

func (cmd *LookupCmd) Run(s *Session) error {
	addr, err := loader.ParseAddress(cmd.Address)
	if err != nil {
		return err
	}

	nextHop, elapsed, err := s.Lookup(addr)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "Address: 0x%X -> next_hop=%d (time: %d ns)\n", addr, nextHop, elapsed.Nanoseconds())
	return nil
}

type LookupFileCmd struct {
	File  string `arg:"" help:"Address file" type:"path"`
	Quiet bool   `help:"Only report progress"`
}

func (cmd *LookupFileCmd) Run(s *Session) error {
	count, err := s.LookupFile(cmd.File, !cmd.Quiet)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "Processed %d addresses\n", count)
	return nil
}

type TprintCmd struct{}

func (cmd *TprintCmd) Run(s *Session) error {
	if s.Trie == nil {
		return ErrNotInitialized
	}
	return s.Trie.Print(s.Out)
}

type StatsCmd struct{}

func (cmd *StatsCmd) Run(s *Session) error {
	summary, err := s.Recorder.Summary()
	if err != nil {
		return err
	}

	fmt.Fprintln(s.Out, "Lookup Statistics:")
	fmt.Fprintf(s.Out, "  Count: %d\n", summary.Count)
	fmt.Fprintf(s.Out, "  Misses: %d\n", summary.Misses)
	fmt.Fprintf(s.Out, "  Min: %d ns\n", summary.MinNs)
	fmt.Fprintf(s.Out, "  Max: %d ns\n", summary.MaxNs)
	fmt.Fprintf(s.Out, "  Average: %.2f ns\n", summary.AvgNs)
	fmt.Fprintf(s.Out, "  Std Dev: %.2f ns\n", summary.StdNs)
	return nil
}

type MemoryCmd struct{}

func (cmd *MemoryCmd) Run(s *Session) error {
	if s.Trie == nil {
		return ErrNotInitialized
	}

	estimated := s.Trie.EstimateMemory()
	size := bytesize.New(float64(estimated))

	fmt.Fprintln(s.Out, "Memory Statistics:")
	fmt.Fprintf(s.Out, "  Node count: %d\n", s.Trie.NodeCount())
	fmt.Fprintf(s.Out, "  Estimated memory: %d bytes (%s)\n", estimated, size)
	fmt.Fprintf(s.Out, "  Estimated memory: %.2f KB\n", float64(size)/float64(bytesize.KB))
	fmt.Fprintf(s.Out, "  Estimated memory: %.2f MB\n", float64(size)/float64(bytesize.MB))
	return nil
}

type SaveStatsCmd struct {
	File string `arg:"" help:"CSV file to write" type:"path"`
}

func (cmd *SaveStatsCmd) Run(s *Session) error {
	if s.Trie == nil {
		return ErrNotInitialized
	}

	summary, err := s.Recorder.Summary()
	if err != nil {
		return err
	}
	if err := stats.WriteSummaryCSV(cmd.File, s.trieInfo(), summary); err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "Statistics saved to %s\n", cmd.File)
	return nil
}

type TestCorrectnessCmd struct {
	File   string `arg:"" help:"Address file" type:"path"`
	Oracle string `help:"Reference implementation" enum:"linear,bart,ranger" default:"linear"`
}

func (cmd *TestCorrectnessCmd) Run(s *Session) error {
	report, err := s.Verify(cmd.File, cmd.Oracle)
	if err != nil {
		return err
	}

	printReport(s, report)
	return nil
}

func printReport(s *Session, report Report) {
	fmt.Fprintln(s.Out, "\n=== Correctness Test ===")
	fmt.Fprintf(s.Out, "Testing %d addresses against %s...\n", report.Total, report.Oracle)

	for _, m := range report.Mismatches {
		fmt.Fprintf(s.Out, "MISMATCH: Address 0x%X -> Trie: %d, Reference: %d\n", m.Addr, m.Trie, m.Reference)
		if len(m.TopMatches) == 0 {
			continue
		}
		fmt.Fprintln(s.Out, "  Top reference matches (length, next_hop, prefix_hex):")
		for _, e := range m.TopMatches {
			fmt.Fprintf(s.Out, "    len=%d, nh=%d, prefix=0x%X\n", e.Length, e.NextHop, e.Prefix)
		}
	}

	fmt.Fprintf(s.Out, "Correct: %d/%d (%.2f%%)\n", report.Correct, report.Total, report.Percent())
	if report.Passed() {
		fmt.Fprintln(s.Out, "All tests passed!")
	} else {
		fmt.Fprintln(s.Out, "Some tests failed!")
	}
}

type BenchmarkCmd struct {
	File    string `arg:"" help:"Address file" type:"path"`
	Strides []int  `help:"Strides to benchmark, defaults to the configured ones"`
}

func (cmd *BenchmarkCmd) Run(s *Session) error {
	strides := cmd.Strides
	if len(strides) == 0 {
		strides = s.Config.Benchmark.Strides
	}

	fmt.Fprintln(s.Out, "\n=== Benchmark Mode ===")
	fmt.Fprintf(s.Out, "Testing strides: %v\n", strides)
	fmt.Fprintf(s.Out, "Using addresses from: %s\n", cmd.File)

	results, err := s.Benchmark(cmd.File, strides)
	for _, r := range results {
		fmt.Fprintf(s.Out, "stride %d: %d nodes, %d bytes, avg %.2f ns -> %s, %s\n",
			r.Info.Stride, r.Info.NodeCount, r.Info.EstimatedBytes, r.Summary.AvgNs, r.SummaryFile, r.SamplesFile)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(s.Out, "=== Benchmark Complete ===")
	return nil
}

type GenerateCmd struct {
	Count int    `arg:"" help:"Number of addresses"`
	File  string `arg:"" help:"Address file to write" type:"path"`
	Seed  int64  `help:"Random seed" default:"42"`
}

func (cmd *GenerateCmd) Run(s *Session) error {
	if err := s.Generate(cmd.File, cmd.Count, cmd.Seed); err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "Generated %d addresses and saved to %s\n", cmd.Count, cmd.File)
	return nil
}

type MetricsCmd struct{}

func (cmd *MetricsCmd) Run(s *Session) error {
	return s.Metrics.WriteText(s.Out)
}

type QuitCmd struct{}

func (cmd *QuitCmd) Run() error {
	return ErrQuit
}
