package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// Store backend: "memory" (volatile, default) or "sqlite".
	Store  string
	DBPath string // e.g. "./data/portal.db"; used when Store is "sqlite"

	// Seed organizer account.
	AdminUsername string
	AdminPassword string

	// Sessions
	SessionTTL          time.Duration
	SessionSweepMinutes int // how often expired sessions are swept (default 60)
}

func FromEnv() Config {
	storeKind := strings.ToLower(getenvDefault("PORTAL_STORE", "memory"))
	if storeKind != "memory" && storeKind != "sqlite" {
		// fail-soft: treat unknown as memory
		storeKind = "memory"
	}

	return Config{
		HTTPAddr: getenvDefault("PORTAL_HTTP_ADDR", ":8080"),

		Store:  storeKind,
		DBPath: getenvDefault("PORTAL_DB_PATH", "./data/portal.db"),

		AdminUsername: getenvDefault("PORTAL_ADMIN_USERNAME", "admin"),
		AdminPassword: getenvDefault("PORTAL_ADMIN_PASSWORD", "admin_password"),

		SessionTTL:          time.Duration(getenvInt("PORTAL_SESSION_TTL_HOURS", 24)) * time.Hour,
		SessionSweepMinutes: getenvInt("PORTAL_SESSION_SWEEP_MINUTES", 60),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
