package stats

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// TrieInfo is the trie side of a result row.
type TrieInfo struct {
	Stride         int
	NodeCount      int
	EstimatedBytes uint64
}

var summaryHeader = []string{"stride", "node_count", "estimated_bytes", "min_ns", "max_ns", "avg_ns", "std_ns"}

// WriteSummaryCSV writes the one-row result file of a run.
func WriteSummaryCSV(path string, info TrieInfo, s Summary) error {
	return writeCSV(path, func(writer *csv.Writer) error {
		if err := writer.Write(summaryHeader); err != nil {
			return err
		}
		return writer.Write([]string{
			strconv.Itoa(info.Stride),
			strconv.Itoa(info.NodeCount),
			strconv.FormatUint(info.EstimatedBytes, 10),
			strconv.FormatInt(s.MinNs, 10),
			strconv.FormatInt(s.MaxNs, 10),
			strconv.FormatFloat(s.AvgNs, 'f', 2, 64),
			strconv.FormatFloat(s.StdNs, 'f', 2, 64),
		})
	})
}

// WriteSamplesCSV writes every recorded lookup duration, one per row.
func WriteSamplesCSV(path string, samples []int64) error {
	return writeCSV(path, func(writer *csv.Writer) error {
		if err := writer.Write([]string{"lookup_time_ns"}); err != nil {
			return err
		}
		for _, sample := range samples {
			if err := writer.Write([]string{strconv.FormatInt(sample, 10)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, write func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := write(writer); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return file.Close()
}
