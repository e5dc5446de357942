package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quickaccess/internal/assetdb"
	"quickaccess/internal/config"
	"quickaccess/internal/handle"
	"quickaccess/internal/launch"
	"quickaccess/internal/logging"
	"quickaccess/internal/store"
)

// app bundles everything a command needs for one workspace.
type app struct {
	ws        string
	cfg       *config.Config
	persister *store.FilePersister
	store     *store.Store
	db        *assetdb.DB
	resolver  handle.Resolver
	launcher  *launch.Launcher
}

// resolveWorkspace returns the absolute project directory.
func resolveWorkspace() (string, error) {
	ws := workspace
	if ws == "" {
		var err error
		ws, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return "", fmt.Errorf("invalid workspace %s: %w", ws, err)
	}
	return abs, nil
}

func loadConfig(ws string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadApp loads config, the asset database and the store. The asset
// database is indexed on first use when the project has an Assets folder.
func loadApp(cmd *cobra.Command) (*app, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(ws)
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(cfg.LogsDir(ws), cfg.Logging.ToLogging()); err != nil {
		logger.Warn("Failed to initialize file logging", zap.Error(err))
	}
	logging.Boot("workspace %s", ws)

	a := &app{ws: ws, cfg: cfg}

	if cfg.AssetDB.Enabled {
		db, err := assetdb.Open(cfg.AssetDBPath(ws))
		if err != nil {
			return nil, err
		}
		a.db = db
		a.resolver = db
		if err := a.ensureIndexed(commandContext(cmd)); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.persister = store.NewFilePersister(cfg.StoreFilePath(ws))
	a.store, err = store.Open(a.persister, store.WithResolver(a.resolver))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load quick access list: %w", err)
	}
	a.launcher = launch.New(cfg.Launch, ws, a.resolver)

	logger.Debug("Loaded quick access list",
		zap.String("workspace", ws),
		zap.String("state", a.persister.Path()),
		zap.Int("items", a.store.Len()))
	return a, nil
}

func (a *app) ensureIndexed(ctx context.Context) error {
	if _, err := a.db.LastIndexed(); !errors.Is(err, assetdb.ErrNotIndexed) {
		return err
	}
	if _, err := os.Stat(filepath.Join(a.ws, "Assets")); err != nil {
		return nil
	}
	res, err := a.reindex(ctx)
	if err != nil {
		return err
	}
	logger.Info("Indexed project assets", zap.Int("assets", res.Assets), zap.Int("folders", res.Folders))
	return nil
}

func (a *app) reindex(ctx context.Context) (*assetdb.IndexResult, error) {
	res, err := a.db.Index(ctx, a.ws, a.cfg.AssetDB.Roots, a.cfg.AssetDB.Workers)
	if err != nil {
		return nil, err
	}
	if res.Warnings != nil {
		logger.Warn("Some .meta files could not be indexed", zap.Error(res.Warnings))
	}
	return res, nil
}

// refresher returns the asset database reindex hook, or nil when the asset
// database is disabled.
func (a *app) refresher() func(context.Context) error {
	if a.db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		_, err := a.reindex(ctx)
		return err
	}
}

// Close releases the asset database and flushes log files.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Warn("Failed to close asset database", zap.Error(err))
		}
	}
	logging.CloseAll()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
