package noise

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultName is used for new rows and for rows whose name is cleared
const DefaultName = "Nuevo Equipo"

// Input bounds for a source level, in dB
const (
	MinLevel  = 0.0
	MaxLevel  = 200.0
	LevelStep = 0.1
)

var (
	ErrRowNotFound      = errors.New("noise source row not found")
	ErrUnknownField     = errors.New("unknown noise source field")
	ErrLevelOutOfBounds = errors.New("level out of bounds")
	ErrInvalidLevel     = errors.New("level is not a number")
)

// Field names accepted by Table.Edit
const (
	FieldName  = "name"
	FieldLevel = "level"
)

// Source is one row of the noise table. A nil Level means the level is missing.
type Source struct {
	Name  string
	Level *float64
}

// Level returns a pointer to v, for building sources inline
func Level(v float64) *float64 {
	return &v
}

// DefaultSources returns the rows a fresh session starts with
func DefaultSources() []Source {
	return []Source{
		{Name: "Extractor S&P 1", Level: Level(65.0)},
		{Name: "Inyector Muro", Level: Level(62.0)},
	}
}

// ValidateLevel checks a level against the input bounds. Total does not call it.
func ValidateLevel(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidLevel
	}
	if v < MinLevel || v > MaxLevel {
		return fmt.Errorf("%w: %.1f not in [%.0f, %.0f]", ErrLevelOutOfBounds, v, MinLevel, MaxLevel)
	}
	return nil
}

// ParseLevel parses a level typed into a form field. Blank input is a missing level.
// A decimal comma is accepted.
func ParseLevel(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, raw)
	}
	if err := ValidateLevel(v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Total combines sound pressure levels by energetic summation:
// 10 * log10(sum(10^(L/10))). Missing levels are dropped; with nothing left
// the total is 0. The loudest level is factored out of the sum so the
// result stays finite for any finite input.
func Total(levels []*float64) float64 {
	peak, ok := peakLevel(levels)
	if !ok {
		return 0.0
	}
	energy := 0.0
	for _, l := range levels {
		if usable(l) {
			energy += relativeEnergy(*l, peak)
		}
	}
	return peak + 10*math.Log10(energy)
}

// usable reports whether a level takes part in the sum. NaN and infinite
// values count as missing.
func usable(l *float64) bool {
	return l != nil && !math.IsNaN(*l) && !math.IsInf(*l, 0)
}

func peakLevel(levels []*float64) (float64, bool) {
	peak, found := 0.0, false
	for _, l := range levels {
		if !usable(l) {
			continue
		}
		if !found || *l > peak {
			peak, found = *l, true
		}
	}
	return peak, found
}

// relativeEnergy is 10^((level-peak)/10), in (0, 1] when level <= peak
func relativeEnergy(level, peak float64) float64 {
	return math.Pow(10, (level-peak)/10)
}
