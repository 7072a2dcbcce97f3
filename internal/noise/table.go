package noise

import (
	"fmt"
	"strings"
)

// Table is the ordered list of noise sources a session edits. Rows have no
// identity beyond their position.
type Table struct {
	rows []Source
}

// NewTable returns a table holding a copy of rows
func NewTable(rows []Source) *Table {
	t := &Table{}
	for _, r := range rows {
		t.rows = append(t.rows, copySource(r))
	}
	return t
}

// Rows returns a copy of the current rows
func (t *Table) Rows() []Source {
	out := make([]Source, len(t.rows))
	for i, r := range t.rows {
		out[i] = copySource(r)
	}
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Get returns a copy of the row at index
func (t *Table) Get(index int) (Source, error) {
	if err := t.check(index); err != nil {
		return Source{}, err
	}
	return copySource(t.rows[index]), nil
}

// Add appends a placeholder row with a missing level and returns its index
func (t *Table) Add() int {
	t.rows = append(t.rows, Source{Name: DefaultName})
	return len(t.rows) - 1
}

// Append adds a fully specified row and returns its index
func (t *Table) Append(s Source) int {
	s = copySource(s)
	s.Name = normalizeName(s.Name)
	t.rows = append(t.rows, s)
	return len(t.rows) - 1
}

// Remove deletes the row at index
func (t *Table) Remove(index int) error {
	if err := t.check(index); err != nil {
		return err
	}
	t.rows = append(t.rows[:index], t.rows[index+1:]...)
	return nil
}

// Rename sets the name of the row at index. A blank name becomes the placeholder.
func (t *Table) Rename(index int, name string) error {
	if err := t.check(index); err != nil {
		return err
	}
	t.rows[index].Name = normalizeName(name)
	return nil
}

// SetLevel sets or clears (nil) the level of the row at index
func (t *Table) SetLevel(index int, level *float64) error {
	if err := t.check(index); err != nil {
		return err
	}
	if level == nil {
		t.rows[index].Level = nil
		return nil
	}
	v := *level
	t.rows[index].Level = &v
	return nil
}

// Edit updates one field of the row at index from its text form
func (t *Table) Edit(index int, field, value string) error {
	switch field {
	case FieldName:
		return t.Rename(index, value)
	case FieldLevel:
		level, err := ParseLevel(value)
		if err != nil {
			return err
		}
		return t.SetLevel(index, level)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Reset discards every row
func (t *Table) Reset() {
	t.rows = nil
}

// Levels returns the level of every row, missing ones included as nil
func (t *Table) Levels() []*float64 {
	levels := make([]*float64, len(t.rows))
	for i, r := range t.rows {
		levels[i] = r.Level
	}
	return levels
}

func (t *Table) check(index int) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: index %d, table has %d rows", ErrRowNotFound, index, len(t.rows))
	}
	return nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return name
}

func copySource(s Source) Source {
	out := Source{Name: s.Name}
	if s.Level != nil {
		v := *s.Level
		out.Level = &v
	}
	return out
}
