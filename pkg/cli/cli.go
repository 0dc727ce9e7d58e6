package cli

import (
	"os"

	"github.com/pkg/errors"
)

// CLI is the grammar of the process arguments.
var CLI struct {
	Config string `help:"Yaml configuration file" short:"c" type:"existingfile"`

	Repl      ReplCmd      `cmd:"" default:"1" help:"Start the interactive shell"`
	Run       RunCmd       `cmd:"" help:"Execute shell commands from a file"`
	Check     CheckCmd     `cmd:"" help:"Build a trie and compare it with a reference implementation"`
	Benchmark BenchmarkCmd `cmd:"" help:"Run the lookups of a file for every stride"`
	Generate  GenerateCmd  `cmd:"" help:"Write random addresses to a file"`
}

type ReplCmd struct{}

func (cmd *ReplCmd) Run(s *Session) error {
	return s.Shell(os.Stdin, true)
}

type RunCmd struct {
	Script string `arg:"" help:"File with one shell command per line" type:"existingfile"`
}

func (cmd *RunCmd) Run(s *Session) error {
	file, err := os.Open(cmd.Script)
	if err != nil {
		return errors.Wrapf(err, "cannot open script %s", cmd.Script)
	}
	defer file.Close()

	return s.Shell(file, false)
}

type CheckCmd struct {
	File   string `arg:"" help:"Address file" type:"existingfile"`
	Stride int    `help:"Bits per level, defaults to the configured one"`
	Oracle string `help:"Reference implementation" enum:"linear,bart,ranger" default:"linear"`
}

// ErrCheckFailed is returned when the trie disagrees with the reference.
var ErrCheckFailed = errors.New("trie disagrees with the reference")

func (cmd *CheckCmd) Run(s *Session) error {
	stride := cmd.Stride
	if stride == 0 {
		stride = s.Config.DefaultStride
	}

	if _, err := s.Build(s.Config.PrefixFile, stride); err != nil {
		return err
	}

	report, err := s.Verify(cmd.File, cmd.Oracle)
	if err != nil {
		return err
	}

	printReport(s, report)
	if !report.Passed() {
		return ErrCheckFailed
	}
	return nil
}
