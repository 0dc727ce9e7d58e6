// Package loader parses the text formats the CLI consumes: prefix lists with
// one "hex-prefix length next_hop" record per line, and address lists with one
// hex or decimal address per line.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed marks a line that could not be parsed.
var ErrMalformed = errors.New("malformed line")

// Record is one line of a prefix list.
type Record struct {
	Prefix  uint32
	Length  int
	NextHop int
	Line    int
}

func (r Record) String() string {
	return fmt.Sprintf("0x%08X/%d -> %d", r.Prefix, r.Length, r.NextHop)
}

// LineError reports a skipped line.
type LineError struct {
	Line  int
	Text  string
	Cause error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Cause)
}

func (e *LineError) Unwrap() error {
	return e.Cause
}

// ParseHex parses a 32-bit hex value, the 0x prefix is optional.
func ParseHex(s string) (uint32, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "invalid hex value %q", s)
	}
	return uint32(v), nil
}

// ParseAddress accepts 0x-prefixed hex, decimal, and as a last resort bare hex.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ParseHex(s)
	}
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}
	v, err := ParseHex(s)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "invalid address %q", s)
	}
	return v, nil
}

// ParseRecord parses "hex-prefix length next_hop". Extra fields are ignored.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Record{}, errors.Wrapf(ErrMalformed, "expected 3 fields, got %d", len(fields))
	}

	prefix, err := ParseHex(fields[0])
	if err != nil {
		return Record{}, err
	}
	length, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, errors.Wrapf(ErrMalformed, "invalid length %q", fields[1])
	}
	nextHop, err := strconv.Atoi(fields[2])
	if err != nil {
		return Record{}, errors.Wrapf(ErrMalformed, "invalid next hop %q", fields[2])
	}

	return Record{Prefix: prefix, Length: length, NextHop: nextHop}, nil
}

func skip(line string) bool {
	return len(line) == 0 || strings.HasPrefix(line, "#")
}

// ReadPrefixes calls onRecord for every well formed record of r. Malformed
// lines are skipped and returned; an error from onRecord aborts the read.
func ReadPrefixes(r io.Reader, onRecord func(Record) error) ([]*LineError, error) {
	var skipped []*LineError

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if skip(line) {
			continue
		}

		record, err := ParseRecord(line)
		if err != nil {
			skipped = append(skipped, &LineError{Line: lineNo, Text: line, Cause: err})
			continue
		}
		record.Line = lineNo

		if err := onRecord(record); err != nil {
			return skipped, err
		}
	}

	return skipped, errors.Wrap(scanner.Err(), "failed to read prefixes")
}

// ReadAddresses works like ReadPrefixes for address lists.
func ReadAddresses(r io.Reader, onAddress func(uint32) error) ([]*LineError, error) {
	var skipped []*LineError

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if skip(line) {
			continue
		}

		addr, err := ParseAddress(line)
		if err != nil {
			skipped = append(skipped, &LineError{Line: lineNo, Text: line, Cause: err})
			continue
		}

		if err := onAddress(addr); err != nil {
			return skipped, err
		}
	}

	return skipped, errors.Wrap(scanner.Err(), "failed to read addresses")
}

// ReadPrefixFile opens path and hands it to ReadPrefixes.
func ReadPrefixFile(path string, onRecord func(Record) error) ([]*LineError, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open prefix file %s", path)
	}
	defer file.Close()

	return ReadPrefixes(file, onRecord)
}

// ReadAddressFile opens path and hands it to ReadAddresses.
func ReadAddressFile(path string, onAddress func(uint32) error) ([]*LineError, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open address file %s", path)
	}
	defer file.Close()

	return ReadAddresses(file, onAddress)
}

// LoadAddresses reads every address of path into memory.
func LoadAddresses(path string) ([]uint32, []*LineError, error) {
	addrs := []uint32{}
	skipped, err := ReadAddressFile(path, func(addr uint32) error {
		addrs = append(addrs, addr)
		return nil
	})
	return addrs, skipped, err
}
