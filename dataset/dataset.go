// Package dataset loads categorical counts from CSV and selects the most frequent ones.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultLabelColumn = "reason"
	DefaultValueColumn = "Count"
	DefaultTop         = 10
)

// Record is one category and its count.
type Record struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
}

// Options selects the CSV columns to read.
type Options struct {
	LabelColumn string
	ValueColumn string
	Logger      logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.LabelColumn == "" {
		o.LabelColumn = DefaultLabelColumn
	}
	if o.ValueColumn == "" {
		o.ValueColumn = DefaultValueColumn
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}

// LoadFile opens path and reads it with Load.
func LoadFile(path string, opts Options) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "打开数据文件 '%s'", path)
	}
	defer f.Close()
	return Load(f, opts)
}

// Load reads a CSV with a header row. Rows keep file order. A count that
// does not parse as a number is read as 0 and logged; it is not an error.
func Load(r io.Reader, opts Options) ([]Record, error) {
	opts = opts.withDefaults()
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("数据文件为空")
	}
	if err != nil {
		return nil, errors.Wrap(err, "读取表头")
	}
	labelIdx, err := columnIndex(header, opts.LabelColumn)
	if err != nil {
		return nil, err
	}
	valueIdx, err := columnIndex(header, opts.ValueColumn)
	if err != nil {
		return nil, err
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "读取第 %d 行", line)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec := Record{Label: field(row, labelIdx)}
		raw := strings.TrimSpace(field(row, valueIdx))
		if raw != "" {
			count, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
			if err != nil {
				opts.Logger.WithFields(logrus.Fields{"line": line, "value": raw}).Warn("count is not a number, using 0")
			} else {
				rec.Count = count
			}
		}
		records = append(records, rec)
	}
	opts.Logger.WithField("rows", len(records)).Debug("dataset loaded")
	return records, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
			return i, nil
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i, nil
		}
	}
	return 0, errors.Errorf("表头中缺少列 %q（现有列: %s）", name, strings.Join(header, ", "))
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Top returns the n records with the highest counts, ties kept in input order.
// The input slice is not modified. n <= 0 returns every record.
func Top(records []Record, n int) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Max returns the largest count, 0 for no records.
func Max(records []Record) float64 {
	m := 0.0
	for i, r := range records {
		if i == 0 || r.Count > m {
			m = r.Count
		}
	}
	return m
}

// Total sums every count.
func Total(records []Record) float64 {
	sum := 0.0
	for _, r := range records {
		sum += r.Count
	}
	return sum
}
