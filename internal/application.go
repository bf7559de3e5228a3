package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/console"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-client/internal/session"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-client/internal/usecase"
)

const (
	connectAttempts = 5
	connectTimeout  = 10 * time.Second
	saveTimeout     = 5 * time.Second
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the client against endpoint until the player quits or a signal arrives.
func RunApp(logger *slog.Logger, conf *config.Config, endpoint string) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return run(ctx, logger, conf, endpoint, os.Stdin, os.Stdout)
}

func run(ctx context.Context, logger *slog.Logger, conf *config.Config, endpoint string, in io.Reader, out io.Writer) error {
	log := logger.With("component", "app", "method", "run")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	identities, closeStorage, err := openIdentities(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeStorage(); err != nil {
			log.Error("could not close identity storage", "error", err)
		}
	}()

	identity, err := identities.GetOrCreate(ctx, conf.Profile)
	if err != nil {
		return fmt.Errorf("could not load identity: %w", err)
	}

	log.Info("Starting client", "profile", identity.Profile, "playerID", identity.PlayerID, "lastScores", identity.LastScores, "endpoint", endpoint)

	game := session.New(logger, identity.PlayerID, session.WithReadinessPolicy(session.ReadinessPolicy(conf.Readiness)))

	client := websocket.New(logger)
	defer client.Shutdown()

	gameSync := usecase.NewGameSync(logger, game, client)
	notices := gameSync.Notices().Subscribe()
	defer notices.Close()

	var opts []tictactoe.Option
	if conf.EagerReset {
		opts = append(opts, tictactoe.WithEagerReset())
	}

	controller := tictactoe.NewGameController(logger, game, client, opts...)
	view := console.New(logger, in, out, controller, game)

	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		if err := gameSync.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("game sync stopped", "error", err)
		}
	}()

	go keepConnected(ctx, logger, client, endpoint)

	err = view.Run(ctx, notices.C())

	scores := game.DisplayScores()

	cancel()
	<-syncDone

	saveIdentity(logger, identities, identity, scores)

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("console stopped: %w", err)
	}

	return nil
}

// openIdentities returns redis backed identities when redis is enabled, else in-memory ones.
func openIdentities(ctx context.Context, conf *config.Config) (repository.IdentityRepository, func() error, error) {
	if !conf.Redis.Enabled {
		return repository.NewMemoryIdentityRepository(), func() error { return nil }, nil
	}

	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewIdentityRepository(redisStorage.Connection), redisStorage.Close, nil
}

func saveIdentity(logger *slog.Logger, identities repository.IdentityRepository, identity *entity.Identity, scores map[entity.Symbol]int) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	identity.LastScores = scores

	if err := identities.Save(ctx, identity); err != nil {
		logger.Error("could not save identity", "error", err, "profile", identity.Profile)
	}
}

// keepConnected connects and reconnects whenever the transport closes, until ctx is done.
func keepConnected(ctx context.Context, logger *slog.Logger, client *websocket.Client, endpoint string) {
	log := logger.With("component", "app", "method", "keepConnected")

	states := client.States().Subscribe()
	defer states.Close()

	if err := connectWithRetry(ctx, logger, client, endpoint); err != nil {
		log.Error("giving up on relay", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case state, ok := <-states.C():
			if !ok {
				return
			}

			// transitions queued during an earlier attempt are stale
			if state != websocket.StateClosed || client.State() != websocket.StateClosed {
				continue
			}

			log.Info("connection closed, reconnecting")

			if err := connectWithRetry(ctx, logger, client, endpoint); err != nil {
				log.Error("giving up on relay", "error", err)
				return
			}
		}
	}
}

func connectWithRetry(ctx context.Context, logger *slog.Logger, client *websocket.Client, endpoint string) error {
	log := logger.With("component", "app", "method", "connectWithRetry")

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectAttempts), ctx)

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		err := client.Connect(attemptCtx, endpoint)
		if errors.Is(err, websocket.ErrSuperseded) {
			return backoff.Permanent(err)
		}

		return err
	}

	notify := func(err error, wait time.Duration) {
		log.Warn("could not connect, retrying", "error", err, "wait", wait)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	return nil
}
