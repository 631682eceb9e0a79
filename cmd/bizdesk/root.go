package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dwoolworth/bizdesk"
	"github.com/dwoolworth/bizdesk/backends/boltstore"
	"github.com/dwoolworth/bizdesk/backends/mongostore"
	"github.com/dwoolworth/bizdesk/backends/redisstore"
	"github.com/dwoolworth/bizdesk/backends/sqlitestore"
	"github.com/dwoolworth/bizdesk/internal/config"
	"github.com/dwoolworth/bizdesk/internal/logger"
	_ "github.com/dwoolworth/bizdesk/models"
	"github.com/dwoolworth/bizdesk/modules"
	"github.com/dwoolworth/bizdesk/session"
)

// standalone marks commands that run without opening the store.
const standalone = "standalone"

// app is the wiring shared by every command that touches the store.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	db   *bizdesk.DB
	gate *session.Gate
	svc  *modules.Services
}

// rootOptions carries state between the root command and its subcommands.
type rootOptions struct {
	app *app
	// module is the module tag the failing command worked on, recorded with
	// the error log entry.
	module string
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bizdesk",
		Short:         "bizdesk - multi-module business back office",
		Long:          "A back office for purchasing, production planning, R&D, warranty, regulatory and sales records kept in a local store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[standalone] != "" {
				return nil
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
	}

	cmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newAddCmd(opts),
		newUpdateCmd(opts),
		newRemoveCmd(opts),
		newImportCmd(opts),
		newHistoryCmd(opts),
		newProgressCmd(opts),
		newAttachCmd(opts),
		newStatsCmd(opts),
		newSyncCmd(opts),
		newExportCmd(opts),
		newCheckCmd(opts),
		newInspectCmd(),
		newVersionCmd(),
	)
	return cmd
}

// run executes one CLI invocation. A failing command is also written to the
// error log collection when the store was opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if a := opts.app; a != nil {
		if err != nil {
			recordFailure(ctx, a, opts.module, args, err)
		}
		if cerr := a.db.Close(); cerr != nil {
			a.log.Warn("failed to close store", zap.Error(cerr))
		}
		_ = a.log.Sync()
	}
	return err
}

func recordFailure(ctx context.Context, a *app, module string, args []string, err error) {
	if errors.Is(err, session.ErrInvalidCredentials) || errors.Is(err, context.Canceled) {
		return
	}
	details := map[string]any{"args": strings.Join(args, " ")}
	if _, rerr := a.svc.Errors.Record(ctx, err, module, details); rerr != nil {
		a.log.Warn("failed to record error", zap.Error(rerr))
	}
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db, err := bizdesk.Open(backend,
		bizdesk.WithLogger(log),
		bizdesk.WithMiddleware(bizdesk.LoggingMiddleware(log)),
	)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	verifier, err := loadVerifier(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	gate, err := session.New(ctx, verifier, backend, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	svc, err := modules.New(db, gate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db, gate: gate, svc: svc}, nil
}

func openBackend(ctx context.Context, cfg *config.Config) (bizdesk.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return bizdesk.NewMemoryBackend(), nil
	case config.BackendFile:
		return bizdesk.NewFileBackend(cfg.DataDir)
	case config.BackendBolt:
		return boltstore.Open(cfg.BoltPath, "")
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, err
		}
		return sqlitestore.Open(cfg.SQLitePath)
	case config.BackendMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.BackendRedis:
		return redisstore.Connect(cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func loadVerifier(cfg *config.Config) (session.Verifier, error) {
	if cfg.UsersFile != "" {
		return session.LoadUsersFile(cfg.UsersFile)
	}
	return session.NewDefaultVerifier()
}
