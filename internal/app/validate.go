package app

import (
	"fmt"
	"os"

	"github.com/adhocore/gronx"

	"civchat/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(cfg *config.Config, dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("database path is empty: set --db flag, CIVCHAT_DB_PATH env, or storage.db_path in config")
	}

	// TLS cert/key presence check if one is set
	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	switch cfg.Typing.Backend {
	case "", "memory":
	case "redis":
		if cfg.Typing.Redis.Addr == "" {
			return fmt.Errorf("typing backend is redis but typing.redis.addr is empty")
		}
	default:
		return fmt.Errorf("unknown typing backend %q: use memory or redis", cfg.Typing.Backend)
	}

	if cfg.Maintenance.Enabled && cfg.Maintenance.Cron != "" {
		if !gronx.IsValid(cfg.Maintenance.Cron) {
			return fmt.Errorf("invalid maintenance cron expression: %s", cfg.Maintenance.Cron)
		}
	}

	return nil
}
