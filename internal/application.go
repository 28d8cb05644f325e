package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
)

var (
	ErrAddrNotFound     = errors.New("redis address string is empty")
	ErrNegativeDuration = errors.New("duration must not be negative")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	options, err := gameOptions(conf)
	if err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisStorage, conf.Game.SessionTTL)

	gameManager, err := usecase.NewGameManager(logger, gameRepo, options)
	if err != nil {
		return fmt.Errorf("could not create game manager: %w", err)
	}

	router := rest.NewRouter(rest.NewPingHandler(), rest.NewGameHandler(logger, gameManager))

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, router, rest.WriteTimeout(options.AIDelay)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func gameOptions(conf *config.Config) (usecase.Options, error) {
	aiMark, err := entity.ParseMark(conf.Game.AIMark)
	if err != nil {
		return usecase.Options{}, fmt.Errorf("ai mark: %w", err)
	}

	humanMark, err := entity.ParseMark(conf.Game.HumanMark)
	if err != nil {
		return usecase.Options{}, fmt.Errorf("human mark: %w", err)
	}

	difficulty, err := entity.ParseDifficulty(conf.Game.DefaultDifficulty)
	if err != nil {
		return usecase.Options{}, err
	}

	settings := tictactoe.Settings{
		Size:       conf.Game.GridSize,
		AIMark:     aiMark,
		HumanMark:  humanMark,
		HumanFirst: !conf.Game.AIFirst,
	}

	if err = settings.Validate(); err != nil {
		return usecase.Options{}, err
	}

	if conf.Game.AIDelay < 0 {
		return usecase.Options{}, fmt.Errorf("ai delay: %w", ErrNegativeDuration)
	}

	if conf.Game.SessionTTL < 0 {
		return usecase.Options{}, fmt.Errorf("session ttl: %w", ErrNegativeDuration)
	}

	return usecase.Options{
		Settings:          settings,
		AIDelay:           conf.Game.AIDelay,
		DefaultDifficulty: difficulty,
		SessionTTL:        conf.Game.SessionTTL,
	}, nil
}
