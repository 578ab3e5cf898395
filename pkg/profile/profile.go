// Package profile loads and generates interval load profiles. A profile is
// stored column-wise so the billing engine can run single-pass loops over
// parallel slices.
package profile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidLoadProfile indicates a load profile that is missing required
// columns or contains unparseable values.
var ErrInvalidLoadProfile = errors.New("invalid load profile")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidLoadProfile}, args...)...)
}

// intervalHours is the assumed interval duration when only load_kW is
// provided. Profiles are expected at 15-minute resolution.
const intervalHours = 0.25

// Profile is a chronological interval load series with derived calendar
// columns. All slices have equal length.
type Profile struct {
	Timestamps []time.Time
	LoadKW     []float64
	KWH        []float64

	Months    []time.Month
	Years     []int
	Hours     []int
	IsWeekend []bool
}

// Len returns the number of intervals.
func (p *Profile) Len() int { return len(p.Timestamps) }

// TotalKWH returns the summed energy across all intervals.
func (p *Profile) TotalKWH() float64 {
	var total float64
	for _, v := range p.KWH {
		total += v
	}
	return total
}

// timestampLayouts are tried in order when parsing the timestamp column.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"1/2/2006 15:04",
	"01/02/2006 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// ParseCSV reads a load profile from CSV. The header must contain a
// timestamp column plus either load_kW (energy is derived assuming
// 15-minute intervals) or a precomputed kWh column. Rows are sorted
// chronologically if they arrive out of order.
func ParseCSV(r io.Reader) (*Profile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, invalidf("reading header: %v", err)
	}
	tsCol, loadCol, kwhCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp":
			tsCol = i
		case "load_kw":
			loadCol = i
		case "kwh":
			kwhCol = i
		}
	}
	if tsCol < 0 {
		return nil, invalidf("missing timestamp column")
	}
	if loadCol < 0 && kwhCol < 0 {
		return nil, invalidf("missing load_kW or kWh column")
	}

	p := &Profile{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, invalidf("line %d: %v", line, err)
		}
		ts, err := parseTimestamp(rec[tsCol])
		if err != nil {
			return nil, invalidf("line %d: %v", line, err)
		}
		var load, kwh float64
		if loadCol >= 0 {
			load, err = strconv.ParseFloat(strings.TrimSpace(rec[loadCol]), 64)
			if err != nil {
				return nil, invalidf("line %d: bad load_kW %q", line, rec[loadCol])
			}
		}
		if kwhCol >= 0 {
			kwh, err = strconv.ParseFloat(strings.TrimSpace(rec[kwhCol]), 64)
			if err != nil {
				return nil, invalidf("line %d: bad kWh %q", line, rec[kwhCol])
			}
			if loadCol < 0 {
				load = kwh / intervalHours
			}
		} else {
			kwh = load * intervalHours
		}
		p.Timestamps = append(p.Timestamps, ts)
		p.LoadKW = append(p.LoadKW, load)
		p.KWH = append(p.KWH, kwh)
	}
	if p.Len() == 0 {
		return nil, invalidf("no data rows")
	}

	if !sort.SliceIsSorted(p.Timestamps, func(i, j int) bool {
		return p.Timestamps[i].Before(p.Timestamps[j])
	}) {
		p.sortChronologically()
	}
	p.derive()
	return p, nil
}

// Load reads a profile CSV from disk.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening load profile: %w", err)
	}
	defer f.Close()
	p, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (p *Profile) sortChronologically() {
	idx := make([]int, p.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return p.Timestamps[idx[a]].Before(p.Timestamps[idx[b]])
	})
	ts := make([]time.Time, p.Len())
	load := make([]float64, p.Len())
	kwh := make([]float64, p.Len())
	for i, j := range idx {
		ts[i] = p.Timestamps[j]
		load[i] = p.LoadKW[j]
		kwh[i] = p.KWH[j]
	}
	p.Timestamps, p.LoadKW, p.KWH = ts, load, kwh
}

// derive fills the calendar columns from the timestamps.
func (p *Profile) derive() {
	n := p.Len()
	p.Months = make([]time.Month, n)
	p.Years = make([]int, n)
	p.Hours = make([]int, n)
	p.IsWeekend = make([]bool, n)
	for i, ts := range p.Timestamps {
		p.Months[i] = ts.Month()
		p.Years[i] = ts.Year()
		p.Hours[i] = ts.Hour()
		wd := ts.Weekday()
		p.IsWeekend[i] = wd == time.Saturday || wd == time.Sunday
	}
}

// WriteCSV writes the profile in the same schema Load accepts.
func (p *Profile) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "load_kW", "kWh"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range p.Timestamps {
		rec := []string{
			p.Timestamps[i].Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(p.LoadKW[i], 'f', 4, 64),
			strconv.FormatFloat(p.KWH[i], 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
