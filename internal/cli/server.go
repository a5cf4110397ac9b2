package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quiztrack/internal/app"
	"quiztrack/internal/bank"
	"quiztrack/internal/config"
	"quiztrack/internal/domain"
	"quiztrack/internal/infra/memory"
	pgstore "quiztrack/internal/infra/postgres"
	redisstore "quiztrack/internal/infra/redis"
	"quiztrack/internal/logging"
	"quiztrack/internal/transport/telegram"
	"quiztrack/internal/transport/ws"
)

// NewStartCmd builds the CLI subcommand to start the service.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Env)
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var loader bank.Loader
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgstore.NewQuestionLoader(pool, cfg.Postgres.BankID)
	case cfg.Bank.File != "":
		loader = bank.NewFileLoader(cfg.Bank.File)
	default:
		static, err := bank.NewStatic(sampleQuestions())
		if err != nil {
			return err
		}
		loader = static
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var source app.QuestionSource
	if redisClient != nil {
		source = redisstore.NewQuestionCache(redisClient, loader, bankTTL)
	} else {
		source = memory.NewQuestionCache(loader, bankTTL)
	}

	var store app.SessionStore
	switch {
	case cfg.Postgres.URL != "":
		db := openBunDB(cfg.Postgres.URL)
		defer db.Close()
		store = pgstore.NewSessionStore(db)
	case redisClient != nil:
		store = redisstore.NewSessionStore(redisClient)
	default:
		log.Warn("no postgres or redis configured, sessions will not survive a restart")
		store = memory.NewSessionStore()
	}

	engine := app.NewEngine(store, source)
	wsHandler := ws.NewHandler(engine, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("quiz service listening", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Telegram.Token != "" {
		bot, err := telegram.New(cfg.Telegram.Token, engine, log)
		if err != nil {
			return err
		}
		group.Go(func() error {
			return bot.Run(gctx)
		})
	}

	group.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// sampleQuestions is the fallback bank used when neither a bank file nor
// Postgres is configured.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Prompt:  "What is 2 + 2?",
			Options: []string{"3", "4", "5"},
			Correct: 1,
		},
		{
			Prompt:  "Which planet is known as the red planet?",
			Options: []string{"Venus", "Jupiter", "Mars"},
			Correct: 2,
		},
		{
			Prompt:  "What does HTTP stand for?",
			Options: []string{"HyperText Transfer Protocol", "High Throughput Transfer Protocol"},
			Correct: 0,
		},
	}
}
