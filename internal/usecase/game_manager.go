package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

const (
	defaultIdleTimeout = time.Hour
	sweepInterval      = time.Minute
)

// Options tune the manager. AIDelay is the pause before every AI move. SessionTTL is how
// long a session lives after its last save; zero keeps stored snapshots forever and
// drops idle engines from memory after an hour.
type Options struct {
	Settings          tictactoe.Settings
	AIDelay           time.Duration
	DefaultDifficulty entity.Difficulty
	SessionTTL        time.Duration
}

// GameManager drives one engine per session. Engines are kept in memory while they are
// in use and the latest snapshot of each is written to the repository after every
// change, so an evicted session is restored on its next request.
type GameManager struct {
	logger       *slog.Logger
	engineLogger *slog.Logger
	gameRepo     gameRepo
	options      Options
	now          func() time.Time

	mu        sync.Mutex
	sessions  map[string]*session
	lastSweep time.Time
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, options Options) (*GameManager, error) {
	if err := options.Settings.Validate(); err != nil {
		return nil, err
	}

	if options.DefaultDifficulty == "" {
		options.DefaultDifficulty = entity.EasyDifficulty
	}

	if _, err := entity.ParseDifficulty(string(options.DefaultDifficulty)); err != nil {
		return nil, fmt.Errorf("default difficulty: %w", err)
	}

	return &GameManager{
		logger:       logger.With("component", "game_manager"),
		engineLogger: logger,
		gameRepo:     gameRepo,
		options:      options,
		now:          time.Now,
		sessions:     make(map[string]*session),
	}, nil
}

// session is the notifier of its own engine. Every field is guarded by mu. A closed
// session has left the manager and must not be used or saved again.
type session struct {
	mu      sync.Mutex
	id      string
	logger  *slog.Logger
	engine  *tictactoe.Engine
	aiDue   bool
	savedAt time.Time
	closed  bool
}

func (that *session) GameStarted() {
	that.aiDue = false
	that.logger.Info("game started")
}

func (that *session) AIMoveDue() {
	that.aiDue = true
}

func (that *session) GameFinished(outcome entity.Outcome) {
	that.aiDue = false
	that.logger.Info("game finished", "outcome", outcome)
}

func (that *GameManager) newSession(id string) (*session, error) {
	s := &session{
		id:     id,
		logger: that.logger.With("game_id", id),
	}

	engine, err := tictactoe.NewEngine(that.engineLogger.With("game_id", id), that.options.Settings, s, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	s.engine = engine

	return s, nil
}

func (that *GameManager) idleTimeout() time.Duration {
	if that.options.SessionTTL > 0 {
		return that.options.SessionTTL
	}
	return defaultIdleTimeout
}

func (that *GameManager) expired(s *session) bool {
	return that.now().Sub(s.savedAt) >= that.idleTimeout()
}

func (that *GameManager) resolveDifficulty(difficulty string) (entity.Difficulty, error) {
	if difficulty == "" {
		return that.options.DefaultDifficulty, nil
	}

	return entity.ParseDifficulty(difficulty)
}

// CreateGame opens a new session and starts its first game. An empty difficulty
// falls back to the configured default.
func (that *GameManager) CreateGame(ctx context.Context, difficulty string) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	level, err := that.resolveDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	that.evictIdle()

	s, err := that.newSession(pkg.GenerateGameID())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.engine.StartGame(level); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	if err = that.playAI(ctx, s); err != nil {
		return nil, err
	}

	game, err := that.saveSnapshot(ctx, s)
	if err != nil {
		return nil, err
	}

	that.mu.Lock()
	that.sessions[s.id] = s
	that.mu.Unlock()

	log.Info("game created", "game_id", s.id, "difficulty", level)

	return game, nil
}

// GetGame returns the current snapshot of a session.
func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	s, err := that.lockSession(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return s.engine.Snapshot(s.id), nil
}

// StartGame begins a fresh game in an existing session.
func (that *GameManager) StartGame(ctx context.Context, id, difficulty string) (*entity.Game, error) {
	level, err := that.resolveDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	s, err := that.lockSession(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if err = s.engine.StartGame(level); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	if err = that.playAI(ctx, s); err != nil {
		that.save(ctx, s)

		return nil, err
	}

	return that.saveSnapshot(ctx, s)
}

// MakeMove applies the human move and, unless the game ended, answers with the AI
// move after the configured delay.
func (that *GameManager) MakeMove(ctx context.Context, id string, row, col int) (*entity.Game, error) {
	s, err := that.lockSession(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	// an AI move left over from a cancelled request is played and stored on its own, so
	// the human never moves against a board they have not seen
	if s.aiDue {
		if err = that.requestAIMove(s); err != nil {
			return nil, err
		}

		if _, err = that.saveSnapshot(ctx, s); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: the pending ai move was played first", apperror.ErrNotYourTurn)
	}

	if err = s.engine.SubmitHumanMove(row, col); err != nil {
		return nil, err
	}

	if err = that.playAI(ctx, s); err != nil {
		that.save(ctx, s)

		return nil, err
	}

	return that.saveSnapshot(ctx, s)
}

// DeleteGame discards a session and its stored snapshot. A request still working on the
// session finishes first and cannot save it afterwards.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	if !pkg.IsGameID(id) {
		return apperror.ErrGameNotFound
	}

	if s := that.closeLive(id); s != nil {
		defer s.mu.Unlock()
	}

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "game_id", id)

	return nil
}

// closeLive closes the in-memory session for id, if any, and returns it still locked.
func (that *GameManager) closeLive(id string) *session {
	for {
		that.mu.Lock()
		s, ok := that.sessions[id]
		that.mu.Unlock()

		if !ok {
			return nil
		}

		s.mu.Lock()
		if !s.closed {
			that.close(s)
			return s
		}
		s.mu.Unlock()
	}
}

// close takes a locked session out of the manager.
func (that *GameManager) close(s *session) {
	s.closed = true

	that.mu.Lock()
	if that.sessions[s.id] == s {
		delete(that.sessions, s.id)
	}
	that.mu.Unlock()
}

// evictIdle drops sessions that were not saved within the idle timeout. Sessions busy
// with a request are left for a later sweep.
func (that *GameManager) evictIdle() {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()
	if now.Sub(that.lastSweep) < sweepInterval {
		return
	}
	that.lastSweep = now

	for id, s := range that.sessions {
		if !s.mu.TryLock() {
			continue
		}

		if now.Sub(s.savedAt) >= that.idleTimeout() {
			s.closed = true
			delete(that.sessions, id)
			that.logger.Debug("session evicted", "game_id", id)
		}

		s.mu.Unlock()
	}
}

// playAI waits out the thinking delay and plays the AI move if one is due.
func (that *GameManager) playAI(ctx context.Context, s *session) error {
	if !s.aiDue {
		return nil
	}

	if err := that.think(ctx); err != nil {
		return fmt.Errorf("ai move interrupted: %w", err)
	}

	return that.requestAIMove(s)
}

func (that *GameManager) requestAIMove(s *session) error {
	s.aiDue = false

	if err := s.engine.RequestAIMove(); err != nil {
		s.aiDue = s.engine.AIMovePending()

		return fmt.Errorf("failed to make ai move: %w", err)
	}

	return nil
}

func (that *GameManager) think(ctx context.Context) error {
	if that.options.AIDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(that.options.AIDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (that *GameManager) saveSnapshot(ctx context.Context, s *session) (*entity.Game, error) {
	game := s.engine.Snapshot(s.id)
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	s.savedAt = that.now()

	return game, nil
}

// save persists the state reached before a failure. The request context may already
// be cancelled, so it is detached.
func (that *GameManager) save(ctx context.Context, s *session) {
	log := that.logger.With("method", "save")

	if _, err := that.saveSnapshot(context.WithoutCancel(ctx), s); err != nil {
		log.Error("failed to save game", "game_id", s.id, "error", err)
	}
}

// lockSession returns the live session for id with its lock held. A session closed or
// expired while the caller waited for the lock is looked up again, which goes back to
// the repository.
func (that *GameManager) lockSession(ctx context.Context, id string) (*session, error) {
	for {
		s, err := that.getSession(ctx, id)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if !s.closed && !that.expired(s) {
			return s, nil
		}

		if !s.closed {
			that.close(s)
		}
		s.mu.Unlock()
	}
}

// getSession returns the live session, restoring it from the repository when it is not
// in memory.
func (that *GameManager) getSession(ctx context.Context, id string) (*session, error) {
	if !pkg.IsGameID(id) {
		return nil, apperror.ErrGameNotFound
	}

	that.evictIdle()

	that.mu.Lock()
	s, ok := that.sessions[id]
	that.mu.Unlock()

	if ok {
		return s, nil
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrGameNotFound) {
			return nil, apperror.ErrGameNotFound
		}

		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	s, err = that.newSession(id)
	if err != nil {
		return nil, err
	}

	if err = s.engine.Restore(game); err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	s.aiDue = s.engine.AIMovePending()
	s.savedAt = that.now()

	that.mu.Lock()
	defer that.mu.Unlock()

	// another request may have restored the same session meanwhile
	if existing, ok := that.sessions[id]; ok {
		return existing, nil
	}

	that.sessions[id] = s

	that.logger.Info("game restored", "game_id", id, "status", game.Status)

	return s, nil
}
