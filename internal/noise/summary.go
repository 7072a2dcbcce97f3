package noise

import (
	"fmt"
)

// Contribution is the share of the total acoustic energy one row accounts for
type Contribution struct {
	Index int
	Name  string
	Level float64
	Share float64
}

// Result is the aggregate view of a table. It is derived on demand and never stored.
type Result struct {
	Total         float64
	Sources       int
	Readout       string
	NoSources     bool
	Contributions []Contribution
}

// Summarize computes the energetic total of rows along with the per-row
// energy share. Rows with a missing level are skipped.
func Summarize(rows []Source) Result {
	levels := make([]*float64, len(rows))
	for i, r := range rows {
		levels[i] = r.Level
	}
	total := Total(levels)
	peak, _ := peakLevel(levels)

	var energy float64
	var contributions []Contribution
	for i, r := range rows {
		if !usable(r.Level) {
			continue
		}
		e := relativeEnergy(*r.Level, peak)
		energy += e
		contributions = append(contributions, Contribution{
			Index: i,
			Name:  r.Name,
			Level: *r.Level,
			Share: e,
		})
	}
	for i := range contributions {
		contributions[i].Share /= energy
	}

	return Result{
		Total:         total,
		Sources:       len(contributions),
		Readout:       FormatLevel(total),
		NoSources:     len(contributions) == 0,
		Contributions: contributions,
	}
}

// FormatLevel renders a level the way the calculator displays it
func FormatLevel(v float64) string {
	return fmt.Sprintf("%.2f dB", v)
}
