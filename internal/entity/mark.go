package entity

import (
	"errors"
	"fmt"
)

var ErrUnknownMark = errors.New("unknown mark")

// Mark is the content of a single cell.
type Mark int

const (
	MarkNone   Mark = 0
	MarkCross  Mark = 1
	MarkCircle Mark = 2
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	EmptyCell = ""
)

func (that Mark) String() string {
	switch that {
	case MarkCross:
		return PlayerX
	case MarkCircle:
		return PlayerO
	default:
		return EmptyCell
	}
}

// IsPlayer reports whether the mark belongs to one of the sides.
func (that Mark) IsPlayer() bool {
	return that == MarkCross || that == MarkCircle
}

// Opposite returns the other side's mark. MarkNone stays MarkNone.
func (that Mark) Opposite() Mark {
	switch that {
	case MarkCross:
		return MarkCircle
	case MarkCircle:
		return MarkCross
	default:
		return MarkNone
	}
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	mark, err := ParseMark(string(text))
	if err != nil {
		return err
	}

	*that = mark

	return nil
}

func ParseMark(value string) (Mark, error) {
	switch value {
	case PlayerX:
		return MarkCross, nil
	case PlayerO:
		return MarkCircle, nil
	case EmptyCell:
		return MarkNone, nil
	default:
		return MarkNone, fmt.Errorf("%w: %q", ErrUnknownMark, value)
	}
}

// Reduce combines marks the way a line is checked for a winner: the shared mark when
// every input is identical, MarkNone otherwise (and for an empty input).
func Reduce(marks ...Mark) Mark {
	if len(marks) == 0 {
		return MarkNone
	}

	first := marks[0]
	for _, mark := range marks[1:] {
		if mark != first {
			return MarkNone
		}
	}

	return first
}
