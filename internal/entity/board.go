package entity

import (
	"errors"
	"fmt"
)

const (
	DefaultBoardSize = 3

	// MaxBoardSize is the largest side the exhaustive search can still handle.
	MaxBoardSize = 3
)

var ErrInvalidBoardSize = errors.New("invalid board size")

// Board is a square grid of marks stored row-major.
type Board struct {
	size  int
	cells []Mark

	// lines holds the flattened cell indexes of every row, column and both diagonals.
	lines   [][]int
	scratch []Mark
}

func ValidateBoardSize(size int) error {
	if size < 1 || size > MaxBoardSize {
		return fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidBoardSize, size, MaxBoardSize)
	}

	return nil
}

// NewBoard returns an empty board. The size must pass ValidateBoardSize.
func NewBoard(size int) *Board {
	return &Board{
		size:    size,
		cells:   make([]Mark, size*size),
		lines:   buildLines(size),
		scratch: make([]Mark, size),
	}
}

func buildLines(size int) [][]int {
	lines := make([][]int, 0, 2*size+2)

	for row := 0; row < size; row++ {
		line := make([]int, size)
		for col := 0; col < size; col++ {
			line[col] = row*size + col
		}
		lines = append(lines, line)
	}

	for col := 0; col < size; col++ {
		line := make([]int, size)
		for row := 0; row < size; row++ {
			line[row] = row*size + col
		}
		lines = append(lines, line)
	}

	major := make([]int, size)
	minor := make([]int, size)
	for i := 0; i < size; i++ {
		major[i] = i*size + i
		minor[i] = i*size + (size - 1 - i)
	}

	return append(lines, major, minor)
}

func (that *Board) Size() int {
	return that.size
}

// Contains reports whether the coordinates lie on the board.
func (that *Board) Contains(row, col int) bool {
	return row >= 0 && row < that.size && col >= 0 && col < that.size
}

// At returns the mark at the cell, MarkNone when out of range.
func (that *Board) At(row, col int) Mark {
	if !that.Contains(row, col) {
		return MarkNone
	}

	return that.cells[row*that.size+col]
}

// IsEmpty reports whether the cell holds no mark. Out-of-range cells are never empty.
func (that *Board) IsEmpty(row, col int) bool {
	return that.Contains(row, col) && that.cells[row*that.size+col] == MarkNone
}

// Place sets the cell to mark if it is empty. It reports false and leaves the board
// untouched otherwise.
func (that *Board) Place(row, col int, mark Mark) bool {
	if !mark.IsPlayer() || !that.IsEmpty(row, col) {
		return false
	}

	that.cells[row*that.size+col] = mark

	return true
}

// Clear empties a cell. Only the search uses it, to revert tentative placements.
func (that *Board) Clear(row, col int) {
	if that.Contains(row, col) {
		that.cells[row*that.size+col] = MarkNone
	}
}

func (that *Board) IsFull() bool {
	for _, cell := range that.cells {
		if cell == MarkNone {
			return false
		}
	}

	return true
}

// LinesReduced reduces every row, column and diagonal and returns the largest result,
// so a uniform circle line outranks a uniform cross line, which outranks no line.
func (that *Board) LinesReduced() Mark {
	winner := MarkNone

	for _, line := range that.lines {
		for i, idx := range line {
			that.scratch[i] = that.cells[idx]
		}

		if mark := Reduce(that.scratch...); mark > winner {
			winner = mark
		}
	}

	return winner
}

// Cells returns a row-major copy of the grid.
func (that *Board) Cells() []Mark {
	cells := make([]Mark, len(that.cells))
	copy(cells, that.cells)

	return cells
}

func (that *Board) Clone() *Board {
	return &Board{
		size:    that.size,
		cells:   that.Cells(),
		lines:   that.lines,
		scratch: make([]Mark, that.size),
	}
}

// Load replaces the grid with cells (row-major). Every entry must be a valid mark.
func (that *Board) Load(cells []Mark) error {
	if len(cells) != len(that.cells) {
		return fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidBoardSize, len(that.cells), len(cells))
	}

	for _, cell := range cells {
		if cell != MarkNone && !cell.IsPlayer() {
			return fmt.Errorf("%w: %d", ErrUnknownMark, cell)
		}
	}

	copy(that.cells, cells)

	return nil
}

// Filled returns how many cells hold a mark.
func (that *Board) Filled() int {
	filled := 0
	for _, cell := range that.cells {
		if cell != MarkNone {
			filled++
		}
	}

	return filled
}
