package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

// Side says who acts on the current turn.
type Side string

const (
	SideHuman Side = "human"
	SideAI    Side = "ai"
)

func (that Side) Opposite() Side {
	if that == SideHuman {
		return SideAI
	}
	return SideHuman
}

// Outcome classifies a game. It is derived from the board after every move.
type Outcome string

const (
	OutcomeOngoing   Outcome = "ongoing"
	OutcomeHumanWins Outcome = "human"
	OutcomeAIWins    Outcome = "ai"
	OutcomeDraw      Outcome = "draw"
)

func (that Outcome) IsTerminal() bool {
	return that == OutcomeHumanWins || that == OutcomeAIWins || that == OutcomeDraw
}

// Difficulty selects the AI strategy.
type Difficulty string

const (
	EasyDifficulty Difficulty = "easy"
	HardDifficulty Difficulty = "hard"
)

// DifficultyFromLevel maps numeric levels: 0 is easy, everything else is hard.
func DifficultyFromLevel(level int) Difficulty {
	if level == 0 {
		return EasyDifficulty
	}
	return HardDifficulty
}

func ParseDifficulty(value string) (Difficulty, error) {
	switch Difficulty(value) {
	case EasyDifficulty, HardDifficulty:
		return Difficulty(value), nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, value)
	}
}

// Game is a serialisable picture of one engine's state.
type Game struct {
	ID         string     `json:"id"`
	Size       int        `json:"size"`
	Board      []Mark     `json:"board"`
	Turn       Side       `json:"turn"`
	Status     string     `json:"status"`
	Outcome    Outcome    `json:"outcome"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Moves      int        `json:"moves"`
	AIMark     Mark       `json:"ai_mark"`
	HumanMark  Mark       `json:"human_mark"`
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

// StatusOf names the lifecycle stage of a game: waiting until started, finished once
// the outcome is terminal.
func StatusOf(started bool, outcome Outcome) string {
	switch {
	case !started:
		return StatusWaiting
	case outcome.IsTerminal():
		return StatusFinished
	default:
		return StatusOngoing
	}
}
