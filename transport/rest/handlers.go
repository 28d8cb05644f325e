package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const maxBodySize = 1 << 12

var (
	errInvalidBody    = errors.New("invalid request body")
	errMissingCell    = errors.New("row and col are required")
	errInternal       = errors.New("internal server error")
	errAmbiguousLevel = errors.New("difficulty and level are mutually exclusive")
)

type gameUseCase interface {
	CreateGame(ctx context.Context, difficulty string) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	StartGame(ctx context.Context, id, difficulty string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, row, col int) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type GameHandler interface {
	CreateGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	StartGame(w http.ResponseWriter, r *http.Request)
	MakeMove(w http.ResponseWriter, r *http.Request)
	DeleteGame(w http.ResponseWriter, r *http.Request)
}

type gameHandler struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandler(logger *slog.Logger, games gameUseCase) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "game_handler"),
		games:  games,
	}
}

// startRequest selects the AI strategy either by name or by numeric level.
type startRequest struct {
	Difficulty string `json:"difficulty"`
	Level      *int   `json:"level"`
}

func (that startRequest) difficulty() (string, error) {
	if that.Level == nil {
		return that.Difficulty, nil
	}

	if that.Difficulty != "" {
		return "", errAmbiguousLevel
	}

	return string(entity.DifficultyFromLevel(*that.Level)), nil
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *gameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var request startRequest
	if err := decodeBody(r, &request, true); err != nil {
		that.writeError(w, err)
		return
	}

	difficulty, err := request.difficulty()
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.games.CreateGame(r.Context(), difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var request startRequest
	if err := decodeBody(r, &request, true); err != nil {
		that.writeError(w, err)
		return
	}

	difficulty, err := request.difficulty()
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.games.StartGame(r.Context(), chi.URLParam(r, "id"), difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) MakeMove(w http.ResponseWriter, r *http.Request) {
	var request moveRequest
	if err := decodeBody(r, &request, false); err != nil {
		that.writeError(w, err)
		return
	}

	if request.Row == nil || request.Col == nil {
		that.writeError(w, errMissingCell)
		return
	}

	game, err := that.games.MakeMove(r.Context(), chi.URLParam(r, "id"), *request.Row, *request.Col)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *gameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a JSON body. An empty body is accepted only when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}

	if err != nil {
		return errors.Join(errInvalidBody, err)
	}

	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, errMissingCell),
		errors.Is(err, errAmbiguousLevel),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *gameHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = errInternal.Error()
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *gameHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
