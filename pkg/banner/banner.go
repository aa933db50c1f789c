package banner

import (
	"fmt"

	"civchat/pkg/config"
)

const banner = `
 ██████╗██╗██╗   ██╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔════╝██║██║   ██║██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██║     ██║██║   ██║██║     ███████║███████║   ██║
██║     ██║╚██╗ ██╔╝██║     ██╔══██║██╔══██║   ██║
╚██████╗██║ ╚████╔╝ ╚██████╗██║  ██║██║  ██║   ██║
 ╚═════╝╚═╝  ╚═══╝   ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// Print prints the startup banner with the effective runtime settings so
// operators can verify what the process is actually running with.
func Print(cfg *config.Config, addr, dbPath, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/messages - Send a message (JSON: receiver_id, body)")
	fmt.Println("GET  /v1/conversations - List conversations for the signed participant")
	fmt.Println("GET  /v1/conversations/{peer}/messages?limit=<n> - Fetch a conversation")
	fmt.Println("POST /v1/conversations/{peer}/read - Mark a conversation read")
	fmt.Println("POST /v1/typing - Report typing activity")
	fmt.Println("GET  /v1/typing/{peer} - Ask whether a peer is typing")
	fmt.Println("POST /v1/notifications/diff - Compute unread deltas for polling clients")

	fmt.Println("\n== Production? =================================================")
	if cfg == nil {
		return
	}
	if n := len(cfg.Security.APIKeys.Backend); n > 0 {
		fmt.Printf("- Backend API keys: OK (%d)\n", n)
	} else {
		fmt.Println("- Backend API keys: MISSING (required for backend services)")
	}
	if n := len(cfg.Security.APIKeys.Frontend); n > 0 {
		fmt.Printf("- Frontend API keys: OK (%d)\n", n)
	} else {
		fmt.Println("- Frontend API keys: MISSING (required for client access)")
	}
	if n := len(cfg.Security.APIKeys.Admin); n > 0 {
		fmt.Printf("- Admin API keys: OK (%d)\n", n)
	} else {
		fmt.Println("- Admin API keys: MISSING (required for admin tooling)")
	}

	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}

	switch cfg.Typing.Backend {
	case "redis":
		fmt.Printf("- Typing tracker: redis (%s)\n", cfg.Typing.Redis.Addr)
	default:
		fmt.Println("- Typing tracker: in-memory (single instance only)")
	}

	if cfg.Notify.NATSURL != "" {
		fmt.Printf("- Notifications: nats (%s)\n", cfg.Notify.NATSURL)
	} else {
		fmt.Println("- Notifications: log sink")
	}

	if cfg.Maintenance.Enabled {
		cron := cfg.Maintenance.Cron
		if cron == "" {
			cron = "* * * * *"
		}
		fmt.Printf("- Maintenance: enabled (cron=%s)\n", cron)
	} else {
		fmt.Println("- Maintenance: disabled")
	}

	fmt.Println("\n== Logs: =================================================")
}
