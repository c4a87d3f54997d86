package main

import (
	"context"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"

	"github.com/Roderick111/auror/internal/ai"
	"github.com/Roderick111/auror/internal/caseload"
	"github.com/Roderick111/auror/internal/engine"
	"github.com/Roderick111/auror/internal/envstruct"
	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/logging"
	"github.com/Roderick111/auror/internal/narrator"
	"github.com/Roderick111/auror/internal/pprofserver"
	"github.com/Roderick111/auror/internal/repositories"
	"github.com/Roderick111/auror/internal/sessionlock"
	"github.com/Roderick111/auror/internal/sqlite"
	"github.com/Roderick111/auror/internal/tone"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	catalog        *caseload.Catalog
	engines        map[string]*engine.Engine
	investigations *repositories.InvestigationRepository
	locks          *sessionlock.Locker
	classifier     tone.Classifier
	narrator       narrator.Narrator
}

type config struct {
	// Addr is the address the API server listens on. Use port 0 to let the
	// kernel pick a free one.
	Addr string `env:"AUROR_ADDR" envDefault:"localhost:4000"`
	// PprofPort is the loopback pprof port in ":6060" form. Empty disables
	// profiling.
	PprofPort string `env:"AUROR_PPROF_PORT" envDefault:""`
	SQLiteURL string `env:"AUROR_SQLITE_URL" envDefault:"./auror.sqlite"`
	CaseDir   string `env:"AUROR_CASE_DIR" envDefault:"./cases"`
	// OpenAIKey switches witness dialogue between the OpenAI-backed tone
	// classifier and narrator and their offline fallbacks.
	OpenAIKey string `env:"OPENAI_API_KEY" envDefault:""`
}

// globalRNG draws from math/rand/v2's shared source, which is safe for
// concurrent request handlers.
type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }
func (globalRNG) IntN(n int) int   { return rand.IntN(n) }

func main() {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})))
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server exited with error", errors.SlogError(err))
		os.Exit(1)
	}
}

// run wires the whole application together and blocks until the server shuts
// down. Tests call it directly with their own logger and environment.
func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofPort != "" {
		pprofserver.Launch(cfg.PprofPort, logger)
	}

	dbs, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()

	catalog, err := caseload.LoadDir(ctx, logger, cfg.CaseDir)
	if err != nil {
		return errors.Wrap(err, "load cases")
	}
	if catalog.Len() == 0 {
		return errors.New("no playable cases", slog.String("dir", cfg.CaseDir))
	}

	engines := make(map[string]*engine.Engine, catalog.Len())
	for _, c := range catalog.All() {
		engines[c.ID] = engine.New(c, logger, globalRNG{})
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	var (
		classifier tone.Classifier
		answers    narrator.Narrator
	)
	if cfg.OpenAIKey != "" {
		aiClient := ai.NewClient(cfg.OpenAIKey)
		classifier = tone.NewAIClassifier(aiClient)
		answers = narrator.NewAINarrator(aiClient)
		logger.LogAttrs(ctx, slog.LevelInfo, "witness dialogue uses the OpenAI API")
	} else {
		classifier = tone.KeywordClassifier{}
		answers = narrator.Fallback{}
		logger.LogAttrs(ctx, slog.LevelInfo, "OPENAI_API_KEY not set, witness dialogue uses offline fallbacks")
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		catalog:        catalog,
		engines:        engines,
		investigations: repositories.NewInvestigationRepository(dbs, logger),
		locks:          sessionlock.New(),
		classifier:     classifier,
		narrator:       answers,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
