package loader

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/pkg/errors"
)

// DefaultSeed makes generated address lists reproducible across runs.
const DefaultSeed int64 = 42

// GenerateAddresses returns count addresses drawn uniformly over the 32-bit
// space. The same seed always yields the same list.
func GenerateAddresses(count int, seed int64) ([]uint32, error) {
	if count <= 0 {
		return nil, errors.Errorf("count must be a positive integer, got %d", count)
	}

	rng := rand.New(rand.NewSource(seed))
	addrs := make([]uint32, count)
	for i := range addrs {
		addrs[i] = rng.Uint32()
	}
	return addrs, nil
}

// FormatAddress renders addr the way address lists store it.
func FormatAddress(addr uint32) string {
	return fmt.Sprintf("0x%08X", addr)
}

// WriteAddresses writes one address per line.
func WriteAddresses(w io.Writer, addrs []uint32) error {
	out := bufio.NewWriter(w)
	for _, addr := range addrs {
		if _, err := fmt.Fprintln(out, FormatAddress(addr)); err != nil {
			return errors.Wrap(err, "failed to write addresses")
		}
	}
	return errors.Wrap(out.Flush(), "failed to write addresses")
}

// WriteAddressFile creates (or truncates) path and writes addrs to it.
func WriteAddressFile(path string, addrs []uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create address file %s", path)
	}

	if err := WriteAddresses(file, addrs); err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "cannot close address file %s", path)
}
