package tictactoe

import (
	"log/slog"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Move is a cell chosen by a strategy.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Strategy picks the AI's next cell without modifying the board it is given.
type Strategy interface {
	ChooseMove(board *entity.Board, aiMark, humanMark entity.Mark) (Move, error)
}

type randomStrategy struct {
	rng *rand.Rand
}

func NewRandomStrategy(rng *rand.Rand) Strategy {
	return &randomStrategy{rng: rng}
}

// ChooseMove samples cells until it hits an empty one.
func (that *randomStrategy) ChooseMove(board *entity.Board, _, _ entity.Mark) (Move, error) {
	if board.IsFull() {
		return Move{}, apperror.ErrNoAvailableMoves
	}

	size := board.Size()
	for {
		row, col := that.rng.Intn(size), that.rng.Intn(size) //nolint: gosec // it's ok
		if board.IsEmpty(row, col) {
			return Move{Row: row, Col: col}, nil
		}
	}
}

type minimaxStrategy struct {
	logger *slog.Logger
}

func NewMinimaxStrategy(logger *slog.Logger) Strategy {
	return &minimaxStrategy{
		logger: logger.With("component", "minimax"),
	}
}

// ChooseMove runs a full minimax search on a copy of the board.
func (that *minimaxStrategy) ChooseMove(board *entity.Board, aiMark, humanMark entity.Mark) (Move, error) {
	search := &minimax{
		board:     board.Clone(),
		aiMark:    aiMark,
		humanMark: humanMark,
	}

	move, score, err := search.root()
	if err != nil {
		return Move{}, err
	}

	that.logger.Debug("search finished",
		"row", move.Row,
		"col", move.Col,
		"score", score,
		"nodes", search.nodes,
		"depth", search.maxDepth,
	)

	return move, nil
}

// minimax is one exhaustive search over a private board. Placements are reverted on
// the way back up, so the board is unchanged once the search returns.
type minimax struct {
	board     *entity.Board
	aiMark    entity.Mark
	humanMark entity.Mark

	nodes    int
	maxDepth int
}

// root scores every empty cell for the AI and returns the first one with the best score.
func (that *minimax) root() (Move, int, error) {
	that.nodes++

	if score := Score(that.board, that.aiMark, that.humanMark); score != DrawScore {
		return Move{}, score, apperror.ErrGameFinished
	}

	size := that.board.Size()
	scores := make([]int, 0, size*size)
	moves := make([]int, 0, size*size)

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if !that.board.Place(row, col, that.aiMark) {
				continue
			}

			scores = append(scores, that.evaluate(1, that.humanMark))
			moves = append(moves, row*size+col)
			that.board.Clear(row, col)
		}
	}

	if len(scores) == 0 {
		return Move{}, 0, apperror.ErrNoAvailableMoves
	}

	best := 0
	for i, score := range scores {
		if score > scores[best] {
			best = i
		}
	}

	return Move{Row: moves[best] / size, Col: moves[best] % size}, scores[best], nil
}

// evaluate returns the minimax value of the position with turn to move.
func (that *minimax) evaluate(depth int, turn entity.Mark) int {
	that.nodes++
	if depth > that.maxDepth {
		that.maxDepth = depth
	}

	// a decided position is never searched deeper
	if score := Score(that.board, that.aiMark, that.humanMark); score != DrawScore {
		return score
	}

	size := that.board.Size()
	best, found := 0, false

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if !that.board.Place(row, col, turn) {
				continue
			}

			score := that.evaluate(depth+1, turn.Opposite())
			that.board.Clear(row, col)

			switch {
			case !found:
				best = score
			case turn == that.aiMark && score > best:
				best = score
			case turn != that.aiMark && score < best:
				best = score
			}
			found = true
		}
	}

	// full board without a winner
	if !found {
		return DrawScore
	}

	return best
}
