package main

import (
	"context"
	"strings"

	"github.com/joho/godotenv"

	"civchat/internal/app"
	"civchat/pkg/config"
	"civchat/pkg/logger"
	"civchat/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")

	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	cfg, _, _, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		logger.Init()
		shutdown.Abort("failed to load config", err, "", 0)
	}

	logger.InitWithLevel(cfg.Logging.Level)

	// flags win over env/config for addr and db path
	addr := addrVal
	if !setFlags["addr"] {
		addr = cfg.Addr()
	}
	dbPath := dbVal
	if !setFlags["db"] {
		if p := cfg.Storage.DBPath; p != "" {
			dbPath = p
		}
	}

	// config sources summary for the banner
	var srcs []string
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}

	a, err := app.New(cfg, addr, dbPath, strings.Join(srcs, ", "), version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, dbPath, 0)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		shutdown.Abort("server exited", err, dbPath, 0)
	}
}
