package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

const (
	WinScore  = 10
	LossScore = -10
	DrawScore = 0
)

// Score evaluates the board from the AI's point of view: WinScore when a line is
// uniformly the AI's mark, LossScore when it is uniformly the human's, zero otherwise.
// A zero score does not tell a draw from a running game.
func Score(board *entity.Board, aiMark, humanMark entity.Mark) int {
	switch board.LinesReduced() {
	case aiMark:
		return WinScore
	case humanMark:
		return LossScore
	default:
		return DrawScore
	}
}
