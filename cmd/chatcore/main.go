package main

import (
	"context"

	"github.com/joho/godotenv"

	"chatcore/internal/app"
	"chatcore/pkg/config"
	"chatcore/pkg/logger"
	"chatcore/pkg/shutdown"
	"chatcore/pkg/store"
)

// build metadata - set via ldflags during build/release
var (
	version = "dev"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	// Resolve config path (file flag wins over env)
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		cfg = &config.Config{}
	}
	logger.InitWithLevel(cfg.Logging.Level)

	// Flags explicitly set win over env/config for addr and dbPath.
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	dbPath := dbVal
	if !setFlags["db"] && cfg.Storage.DBPath != "" {
		dbPath = cfg.Storage.DBPath
	}
	source := "config"
	if envUsed {
		source = "env"
	}
	if setFlags["addr"] || setFlags["db"] {
		source = "flags"
	}

	if err := store.Open(dbPath); err != nil {
		shutdown.Abort("snapshot_open_failed", err, dbPath, 0)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	eff := config.EffectiveConfigResult{Config: cfg, Addr: addr, DBPath: dbPath, Source: source}
	a := app.New(eff, version)
	if err := a.Run(ctx); err != nil {
		shutdown.Abort("app_run_failed", err, dbPath, 0)
	}
	logger.Info("shutdown_complete")
}
