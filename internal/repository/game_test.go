package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
)

func newSnapshot(id string) *entity.Game {
	return &entity.Game{
		ID:   id,
		Size: 3,
		Board: []entity.Mark{
			entity.MarkCross, entity.MarkNone, entity.MarkNone,
			entity.MarkNone, entity.MarkCircle, entity.MarkNone,
			entity.MarkNone, entity.MarkNone, entity.MarkNone,
		},
		Turn:       entity.SideHuman,
		Status:     entity.StatusOngoing,
		Outcome:    entity.OutcomeOngoing,
		Difficulty: entity.HardDifficulty,
		Moves:      2,
		AIMark:     entity.MarkCircle,
		HumanMark:  entity.MarkCross,
	}
}

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	t.Run("CreateOrUpdate_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, 0)

		// Given: a snapshot of a running game
		game := newSnapshot("123")

		// When: CreateOrUpdate is called
		err := gameRepo.CreateOrUpdate(ctx, game)

		// Then: no error should be returned, and the snapshot is stored without expiry
		require.NoError(t, err)

		ttl, err := st.Redis.TTL(ctx, "game:123").Result()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(-1), ttl)
	})

	t.Run("CreateOrUpdate_Overwrites", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, 0)

		// Given: a stored snapshot
		game := newSnapshot("123")
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: the same session is saved again after a move
		game.Board[2] = entity.MarkCross
		game.Moves = 3
		game.Turn = entity.SideAI
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// Then: only the latest snapshot is kept
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, game, retrievedGame)

		keys, err := st.Redis.Keys(ctx, "game:*").Result()
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("CreateOrUpdate_WithTTL", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, time.Hour)

		// Given: a repository configured with a session ttl
		game := newSnapshot("456")

		// When: CreateOrUpdate is called
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// Then: the key expires within the ttl
		ttl, err := st.Redis.TTL(ctx, "game:456").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Hour)
	})
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, 0)

		// Given: a stored snapshot
		game := newSnapshot("123")

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		assert.Equal(t, game, retrievedGame)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, 0)

		nonExistentGameID := "9999999"

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, nonExistentGameID)

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})

	t.Run("GetByID_CorruptedValue", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, 0)

		// Given: a value that is not a snapshot
		require.NoError(t, st.Redis.Set(ctx, "game:broken", "not json", 0).Err())

		// When: GetByID is called
		retrievedGame, err := gameRepo.GetByID(ctx, "broken")

		// Then: an unmarshal error should be returned
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, 0)

		// Given: a stored finished game
		game := newSnapshot("123")
		game.Status = entity.StatusFinished

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: DeleteByID is called with existing ID
		err = gameRepo.DeleteByID(ctx, game.ID)

		// Then: no error should be returned
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Redis, 0)

		// Given: a non-existent game ID
		nonExistentGameID := "9999999"

		// When: DeleteByID is called with non-existent ID
		err := gameRepo.DeleteByID(ctx, nonExistentGameID)

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
