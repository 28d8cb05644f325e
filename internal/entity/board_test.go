package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMark_Opposite(t *testing.T) {
	assert.Equal(t, MarkCircle, MarkCross.Opposite())
	assert.Equal(t, MarkCross, MarkCircle.Opposite())
	assert.Equal(t, MarkNone, MarkNone.Opposite())
}

func TestReduce(t *testing.T) {
	t.Run("Returns the shared mark when all marks are identical", func(t *testing.T) {
		assert.Equal(t, MarkCross, Reduce(MarkCross, MarkCross, MarkCross))
		assert.Equal(t, MarkCircle, Reduce(MarkCircle, MarkCircle, MarkCircle))
	})

	t.Run("Returns MarkNone for mixed marks", func(t *testing.T) {
		assert.Equal(t, MarkNone, Reduce(MarkCross, MarkCircle, MarkCross))
		assert.Equal(t, MarkNone, Reduce(MarkCross, MarkNone, MarkCross))
	})

	t.Run("Returns MarkNone for an empty line", func(t *testing.T) {
		assert.Equal(t, MarkNone, Reduce(MarkNone, MarkNone, MarkNone))
		assert.Equal(t, MarkNone, Reduce())
	})
}

func TestBoard_Place(t *testing.T) {
	t.Run("Places a mark on an empty cell", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard(DefaultBoardSize)

		// When: a cross is placed in the middle
		ok := board.Place(1, 1, MarkCross)

		// Then: the cell holds the cross
		require.True(t, ok)
		assert.Equal(t, MarkCross, board.At(1, 1))
		assert.False(t, board.IsEmpty(1, 1))
		assert.Equal(t, 1, board.Filled())
	})

	t.Run("Rejects an occupied cell and keeps the board unchanged", func(t *testing.T) {
		// Given: a board with a cross in the corner
		board := NewBoard(DefaultBoardSize)
		require.True(t, board.Place(0, 0, MarkCross))
		before := board.Cells()

		// When: both marks are placed on the same cell again
		crossAgain := board.Place(0, 0, MarkCross)
		circle := board.Place(0, 0, MarkCircle)

		// Then: both attempts fail and nothing changes
		assert.False(t, crossAgain)
		assert.False(t, circle)
		assert.Equal(t, before, board.Cells())
	})

	t.Run("Rejects out of range coordinates", func(t *testing.T) {
		board := NewBoard(DefaultBoardSize)

		assert.False(t, board.Place(-1, 0, MarkCross))
		assert.False(t, board.Place(0, 3, MarkCross))
		assert.False(t, board.IsEmpty(3, 3))
		assert.Equal(t, 0, board.Filled())
	})

	t.Run("Rejects MarkNone", func(t *testing.T) {
		board := NewBoard(DefaultBoardSize)

		assert.False(t, board.Place(0, 0, MarkNone))
		assert.True(t, board.IsEmpty(0, 0))
	})
}

func TestBoard_Clear(t *testing.T) {
	// Given: a board with one mark
	board := NewBoard(DefaultBoardSize)
	require.True(t, board.Place(2, 1, MarkCircle))

	// When: the cell is cleared
	board.Clear(2, 1)

	// Then: the cell can be played again
	assert.True(t, board.IsEmpty(2, 1))
	assert.True(t, board.Place(2, 1, MarkCross))
}

func TestBoard_LinesReduced(t *testing.T) {
	t.Run("Detects every row, column and diagonal", func(t *testing.T) {
		size := DefaultBoardSize
		for _, line := range buildLines(size) {
			board := NewBoard(size)
			for _, idx := range line {
				require.True(t, board.Place(idx/size, idx%size, MarkCross))
			}

			assert.Equal(t, MarkCross, board.LinesReduced(), "line %v", line)
		}
	})

	t.Run("Circle outranks cross when both own a line", func(t *testing.T) {
		// Given: a board where the top row is crosses and the bottom row circles
		board := NewBoard(DefaultBoardSize)
		require.NoError(t, board.Load([]Mark{
			MarkCross, MarkCross, MarkCross,
			MarkNone, MarkNone, MarkNone,
			MarkCircle, MarkCircle, MarkCircle,
		}))

		// Then: the circle line wins the ordering
		assert.Equal(t, MarkCircle, board.LinesReduced())
	})

	t.Run("Matches a direct scan for every 3x3 board", func(t *testing.T) {
		size := DefaultBoardSize
		cells := make([]Mark, size*size)
		total := 1
		for range cells {
			total *= 3
		}

		for code := 0; code < total; code++ {
			rest := code
			for i := range cells {
				cells[i] = Mark(rest % 3)
				rest /= 3
			}

			board := NewBoard(size)
			require.NoError(t, board.Load(cells))

			require.Equal(t, scanWinner(cells, size), board.LinesReduced(), "cells %v", cells)
		}
	})

	t.Run("Works for the smaller boards", func(t *testing.T) {
		single := NewBoard(1)
		assert.Equal(t, MarkNone, single.LinesReduced())
		require.True(t, single.Place(0, 0, MarkCircle))
		assert.Equal(t, MarkCircle, single.LinesReduced())

		two := NewBoard(2)
		require.True(t, two.Place(0, 1, MarkCross))
		require.True(t, two.Place(1, 0, MarkCross))
		assert.Equal(t, MarkCross, two.LinesReduced())
	})
}

// scanWinner checks each line cell by cell and keeps the largest uniform mark.
func scanWinner(cells []Mark, size int) Mark {
	winner := MarkNone
	consider := func(mark Mark, uniform bool) {
		if uniform && mark > winner {
			winner = mark
		}
	}

	for i := 0; i < size; i++ {
		rowMark, colMark := cells[i*size], cells[i]
		rowUniform, colUniform := true, true
		for j := 0; j < size; j++ {
			rowUniform = rowUniform && cells[i*size+j] == rowMark
			colUniform = colUniform && cells[j*size+i] == colMark
		}
		consider(rowMark, rowUniform)
		consider(colMark, colUniform)
	}

	majorMark, minorMark := cells[0], cells[size-1]
	majorUniform, minorUniform := true, true
	for i := 0; i < size; i++ {
		majorUniform = majorUniform && cells[i*size+i] == majorMark
		minorUniform = minorUniform && cells[i*size+size-1-i] == minorMark
	}
	consider(majorMark, majorUniform)
	consider(minorMark, minorUniform)

	return winner
}

func TestBoard_IsFull(t *testing.T) {
	board := NewBoard(2)
	assert.False(t, board.IsFull())

	require.True(t, board.Place(0, 0, MarkCross))
	require.True(t, board.Place(0, 1, MarkCircle))
	require.True(t, board.Place(1, 0, MarkCircle))
	require.True(t, board.Place(1, 1, MarkCross))

	assert.True(t, board.IsFull())
}

func TestBoard_Clone(t *testing.T) {
	// Given: a board and its clone
	board := NewBoard(DefaultBoardSize)
	require.True(t, board.Place(0, 0, MarkCross))
	clone := board.Clone()

	// When: the clone is modified
	require.True(t, clone.Place(1, 1, MarkCircle))

	// Then: the original is untouched
	assert.True(t, board.IsEmpty(1, 1))
	assert.Equal(t, MarkCross, clone.At(0, 0))
}

func TestBoard_Load(t *testing.T) {
	t.Run("Rejects a wrong number of cells", func(t *testing.T) {
		board := NewBoard(DefaultBoardSize)

		err := board.Load([]Mark{MarkCross})

		require.ErrorIs(t, err, ErrInvalidBoardSize)
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		board := NewBoard(1)

		err := board.Load([]Mark{Mark(7)})

		require.ErrorIs(t, err, ErrUnknownMark)
		assert.True(t, board.IsEmpty(0, 0))
	})
}

func TestValidateBoardSize(t *testing.T) {
	require.NoError(t, ValidateBoardSize(1))
	require.NoError(t, ValidateBoardSize(DefaultBoardSize))
	require.ErrorIs(t, ValidateBoardSize(0), ErrInvalidBoardSize)
	require.ErrorIs(t, ValidateBoardSize(MaxBoardSize+1), ErrInvalidBoardSize)
}
