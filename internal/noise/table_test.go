package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AddRemove(t *testing.T) {
	table := NewTable(DefaultSources())
	require.Equal(t, 2, table.Len())

	idx := table.Add()
	assert.Equal(t, 2, idx)
	rows := table.Rows()
	assert.Equal(t, DefaultName, rows[2].Name)
	assert.Nil(t, rows[2].Level)

	require.NoError(t, table.Remove(0))
	rows = table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Inyector Muro", rows[0].Name)

	assert.ErrorIs(t, table.Remove(5), ErrRowNotFound)
	assert.ErrorIs(t, table.Remove(-1), ErrRowNotFound)
}

func TestTable_Edit(t *testing.T) {
	table := NewTable(DefaultSources())

	require.NoError(t, table.Edit(0, FieldName, "Extractor Cocina"))
	require.NoError(t, table.Edit(0, FieldLevel, "70.5"))
	rows := table.Rows()
	assert.Equal(t, "Extractor Cocina", rows[0].Name)
	assert.Equal(t, 70.5, *rows[0].Level)

	require.NoError(t, table.Edit(1, FieldName, "   "))
	require.NoError(t, table.Edit(1, FieldLevel, ""))
	rows = table.Rows()
	assert.Equal(t, DefaultName, rows[1].Name)
	assert.Nil(t, rows[1].Level)

	assert.ErrorIs(t, table.Edit(0, "colour", "red"), ErrUnknownField)
	assert.ErrorIs(t, table.Edit(3, FieldName, "x"), ErrRowNotFound)
	assert.ErrorIs(t, table.Edit(0, FieldLevel, "-3"), ErrLevelOutOfBounds)
	assert.Equal(t, 70.5, *table.Rows()[0].Level, "rejected edit must not change the row")
}

func TestTable_RowsAreCopies(t *testing.T) {
	table := NewTable(DefaultSources())
	rows := table.Rows()
	*rows[0].Level = 10
	rows[0].Name = "changed"

	again := table.Rows()
	assert.Equal(t, 65.0, *again[0].Level)
	assert.Equal(t, "Extractor S&P 1", again[0].Name)
}

func TestTable_Reset(t *testing.T) {
	table := NewTable(DefaultSources())
	table.Reset()
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Levels())
	assert.Equal(t, 0.0, Total(table.Levels()))
}

func TestSummarize(t *testing.T) {
	t.Run("seed rows", func(t *testing.T) {
		res := Summarize(DefaultSources())
		assert.InDelta(t, 66.76, res.Total, 0.005)
		assert.Equal(t, 2, res.Sources)
		assert.False(t, res.NoSources)
		assert.Equal(t, FormatLevel(res.Total), res.Readout)

		require.Len(t, res.Contributions, 2)
		assert.InDelta(t, 1.0, res.Contributions[0].Share+res.Contributions[1].Share, 1e-12)
		assert.Greater(t, res.Contributions[0].Share, res.Contributions[1].Share)
	})

	t.Run("missing levels skipped", func(t *testing.T) {
		rows := []Source{{Name: "a", Level: Level(60)}, {Name: "b"}, {Name: "c", Level: Level(60)}}
		res := Summarize(rows)
		assert.Equal(t, 2, res.Sources)
		assert.Equal(t, "63.01 dB", res.Readout)
		require.Len(t, res.Contributions, 2)
		assert.Equal(t, 2, res.Contributions[1].Index)
		assert.InDelta(t, 0.5, res.Contributions[1].Share, 1e-12)
	})

	t.Run("no valid rows", func(t *testing.T) {
		res := Summarize([]Source{{Name: DefaultName}})
		assert.True(t, res.NoSources)
		assert.Equal(t, 0, res.Sources)
		assert.Equal(t, 0.0, res.Total)
		assert.Equal(t, "0.00 dB", res.Readout)
		assert.Empty(t, res.Contributions)
	})

	t.Run("extreme levels", func(t *testing.T) {
		tests := []struct {
			name  string
			rows  []Source
			total float64
			share float64
		}{
			{name: "4000 dB", rows: []Source{{Name: "a", Level: Level(4000)}}, total: 4000, share: 1},
			{name: "-4000 dB", rows: []Source{{Name: "a", Level: Level(-4000)}}, total: -4000, share: 1},
			{name: "two at 4000 dB", rows: []Source{{Name: "a", Level: Level(4000)}, {Name: "b", Level: Level(4000)}}, total: 4003.0103, share: 0.5},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := Summarize(tt.rows)
				assert.InDelta(t, tt.total, res.Total, 1e-4)
				require.NotEmpty(t, res.Contributions)
				for _, c := range res.Contributions {
					assert.InDelta(t, tt.share, c.Share, 1e-12)
				}
			})
		}
	})

	t.Run("single source", func(t *testing.T) {
		res := Summarize([]Source{{Name: "x", Level: Level(87.3)}})
		assert.InDelta(t, 87.3, res.Total, 1e-9)
		assert.False(t, math.IsNaN(res.Contributions[0].Share))
		assert.Equal(t, 1.0, res.Contributions[0].Share)
	})
}
