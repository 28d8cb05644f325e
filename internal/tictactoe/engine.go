package tictactoe

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrInvalidSettings = errors.New("invalid engine settings")

// Notifier receives the engine's lifecycle events. Calls happen synchronously on the
// goroutine driving the engine.
type Notifier interface {
	GameStarted()
	// AIMoveDue says it is the AI's turn. The receiver decides when to call RequestAIMove.
	AIMoveDue()
	// GameFinished fires exactly once per game.
	GameFinished(outcome entity.Outcome)
}

type nopNotifier struct{}

func (nopNotifier) GameStarted() {}

func (nopNotifier) AIMoveDue() {}

func (nopNotifier) GameFinished(entity.Outcome) {}

type Settings struct {
	Size       int
	AIMark     entity.Mark
	HumanMark  entity.Mark
	HumanFirst bool
}

func DefaultSettings() Settings {
	return Settings{
		Size:       entity.DefaultBoardSize,
		AIMark:     entity.MarkCircle,
		HumanMark:  entity.MarkCross,
		HumanFirst: true,
	}
}

func (that Settings) Validate() error {
	if err := entity.ValidateBoardSize(that.Size); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if !that.AIMark.IsPlayer() || !that.HumanMark.IsPlayer() || that.AIMark == that.HumanMark {
		return fmt.Errorf("%w: ai mark %q, human mark %q", ErrInvalidSettings, that.AIMark, that.HumanMark)
	}

	return nil
}

// Engine owns the board of a single human-vs-AI game. It is not safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	settings Settings
	notifier Notifier
	rng      *rand.Rand

	board      *entity.Board
	moves      int
	turn       entity.Side
	outcome    entity.Outcome
	difficulty entity.Difficulty
	strategy   Strategy
	started    bool
}

// NewEngine creates an engine waiting for StartGame. A nil notifier drops events and a
// nil rng is seeded from the clock.
func NewEngine(logger *slog.Logger, settings Settings, notifier Notifier, rng *rand.Rand) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if notifier == nil {
		notifier = nopNotifier{}
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok
	}

	return &Engine{
		logger:   logger.With("component", "engine"),
		settings: settings,
		notifier: notifier,
		rng:      rng,
		board:    entity.NewBoard(settings.Size),
		turn:     firstTurn(settings),
		outcome:  entity.OutcomeOngoing,
	}, nil
}

func firstTurn(settings Settings) entity.Side {
	if settings.HumanFirst {
		return entity.SideHuman
	}
	return entity.SideAI
}

func (that *Engine) strategyFor(difficulty entity.Difficulty) (Strategy, error) {
	switch difficulty {
	case entity.EasyDifficulty:
		return NewRandomStrategy(that.rng), nil
	case entity.HardDifficulty:
		return NewMinimaxStrategy(that.logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, difficulty)
	}
}

// StartGame clears the board and selects the strategy for the AI's turns.
func (that *Engine) StartGame(difficulty entity.Difficulty) error {
	strategy, err := that.strategyFor(difficulty)
	if err != nil {
		return err
	}

	that.board = entity.NewBoard(that.settings.Size)
	that.moves = 0
	that.turn = firstTurn(that.settings)
	that.outcome = entity.OutcomeOngoing
	that.difficulty = difficulty
	that.strategy = strategy
	that.started = true

	that.logger.Info("game started", "difficulty", difficulty, "size", that.settings.Size, "turn", that.turn)

	that.notifier.GameStarted()
	if that.turn == entity.SideAI {
		that.notifier.AIMoveDue()
	}

	return nil
}

// SubmitHumanMove places the human's mark. A rejected move changes nothing.
func (that *Engine) SubmitHumanMove(row, col int) error {
	if err := that.confirmPlaying(); err != nil {
		return err
	}

	if that.turn != entity.SideHuman {
		return apperror.ErrNotYourTurn
	}

	if !that.board.Contains(row, col) {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidCell, row, col)
	}

	if !that.board.Place(row, col, that.settings.HumanMark) {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrCellOccupied, row, col)
	}

	that.completeMove()

	return nil
}

// RequestAIMove computes and applies the AI's move with the configured strategy.
func (that *Engine) RequestAIMove() error {
	if err := that.confirmPlaying(); err != nil {
		return err
	}

	if that.turn != entity.SideAI {
		return apperror.ErrNotYourTurn
	}

	if that.board.IsFull() {
		return apperror.ErrNoAvailableMoves
	}

	move, err := that.strategy.ChooseMove(that.board, that.settings.AIMark, that.settings.HumanMark)
	if err != nil {
		return fmt.Errorf("failed to choose move: %w", err)
	}

	if !that.board.Place(move.Row, move.Col, that.settings.AIMark) {
		return fmt.Errorf("strategy chose row %d, col %d: %w", move.Row, move.Col, apperror.ErrCellOccupied)
	}

	that.logger.Debug("ai moved", "row", move.Row, "col", move.Col, "difficulty", that.difficulty)

	that.completeMove()

	return nil
}

func (that *Engine) confirmPlaying() error {
	if !that.started {
		return apperror.ErrGameIsNotStarted
	}

	if that.outcome.IsTerminal() {
		return apperror.ErrGameFinished
	}

	return nil
}

// completeMove is the single turn transition run after every applied move.
func (that *Engine) completeMove() {
	that.moves++
	that.turn = that.turn.Opposite()

	if that.checkTerminal() {
		return
	}

	if that.turn == entity.SideAI {
		that.notifier.AIMoveDue()
	}
}

// checkTerminal reuses the search score to decide whether the game is over.
func (that *Engine) checkTerminal() bool {
	outcome := that.evaluateOutcome()
	if !outcome.IsTerminal() {
		return false
	}

	that.finish(outcome)

	return true
}

func (that *Engine) evaluateOutcome() entity.Outcome {
	return that.outcomeOf(that.board, that.moves)
}

func (that *Engine) outcomeOf(board *entity.Board, moves int) entity.Outcome {
	switch Score(board, that.settings.AIMark, that.settings.HumanMark) {
	case WinScore:
		return entity.OutcomeAIWins
	case LossScore:
		return entity.OutcomeHumanWins
	}

	if moves == that.settings.Size*that.settings.Size {
		return entity.OutcomeDraw
	}

	return entity.OutcomeOngoing
}

// turnAfter returns the side to move once the given number of moves was played.
func (that *Engine) turnAfter(moves int) entity.Side {
	turn := firstTurn(that.settings)
	if moves%2 == 1 {
		return turn.Opposite()
	}
	return turn
}

func (that *Engine) finish(outcome entity.Outcome) {
	if that.outcome.IsTerminal() {
		return
	}

	that.outcome = outcome

	that.logger.Info("game finished", "outcome", outcome, "moves", that.moves)

	that.notifier.GameFinished(outcome)
}

// Board returns a copy of the grid for rendering.
func (that *Engine) Board() *entity.Board {
	return that.board.Clone()
}

func (that *Engine) Turn() entity.Side {
	return that.turn
}

func (that *Engine) Outcome() entity.Outcome {
	return that.outcome
}

func (that *Engine) Ended() bool {
	return that.outcome.IsTerminal()
}

func (that *Engine) Started() bool {
	return that.started
}

func (that *Engine) Moves() int {
	return that.moves
}

func (that *Engine) Difficulty() entity.Difficulty {
	return that.difficulty
}

func (that *Engine) Settings() Settings {
	return that.settings
}

// AIMovePending reports whether the next step belongs to the AI.
func (that *Engine) AIMovePending() bool {
	return that.started && !that.Ended() && that.turn == entity.SideAI
}

// Snapshot describes the current state under the given id.
func (that *Engine) Snapshot(id string) *entity.Game {
	return &entity.Game{
		ID:         id,
		Size:       that.settings.Size,
		Board:      that.board.Cells(),
		Turn:       that.turn,
		Status:     entity.StatusOf(that.started, that.outcome),
		Outcome:    that.outcome,
		Difficulty: that.difficulty,
		Moves:      that.moves,
		AIMark:     that.settings.AIMark,
		HumanMark:  that.settings.HumanMark,
	}
}

// Restore loads a snapshot taken by Snapshot. Nothing is notified: the events for the
// restored state were delivered when it was first reached. The stored turn, status and
// outcome must agree with what the board implies.
func (that *Engine) Restore(game *entity.Game) error {
	if game.Size != that.settings.Size || game.AIMark != that.settings.AIMark || game.HumanMark != that.settings.HumanMark {
		return fmt.Errorf("%w: snapshot does not match engine settings", apperror.ErrInvalidSnapshot)
	}

	board := entity.NewBoard(that.settings.Size)
	if err := board.Load(game.Board); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidSnapshot, err)
	}

	if board.Filled() != game.Moves {
		return fmt.Errorf("%w: %d moves recorded, %d cells filled", apperror.ErrInvalidSnapshot, game.Moves, board.Filled())
	}

	if expected := that.turnAfter(game.Moves); game.Turn != expected {
		return fmt.Errorf("%w: turn %q after %d moves, expected %q", apperror.ErrInvalidSnapshot, game.Turn, game.Moves, expected)
	}

	if game.IsWaiting() {
		if game.Moves != 0 {
			return fmt.Errorf("%w: waiting game with %d moves", apperror.ErrInvalidSnapshot, game.Moves)
		}

		that.board = board
		that.moves = 0
		that.turn = game.Turn
		that.outcome = entity.OutcomeOngoing
		that.difficulty = ""
		that.strategy = nil
		that.started = false

		return nil
	}

	strategy, err := that.strategyFor(game.Difficulty)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidSnapshot, err)
	}

	outcome := that.outcomeOf(board, game.Moves)
	if game.Outcome != outcome || game.Status != entity.StatusOf(true, outcome) {
		return fmt.Errorf("%w: stored %s/%s, board is %s", apperror.ErrInvalidSnapshot, game.Status, game.Outcome, outcome)
	}

	that.board = board
	that.moves = game.Moves
	that.turn = game.Turn
	that.difficulty = game.Difficulty
	that.strategy = strategy
	that.started = true
	that.outcome = outcome

	return nil
}
