package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnv layers TASKDESK_* environment overrides on top of the file
// values. Unset or malformed variables are ignored.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TASKDESK_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDESK_DATA_DIR")); v != "" {
		c.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDESK_STATIC_DIR")); v != "" {
		c.UI.StaticDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKDESK_CORS_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORS.AllowedOrigins = origins
	}
	if n := getEnvInt("TASKDESK_COMPLETION_WINDOW_DAYS"); n > 0 {
		c.Stats.CompletionWindowDays = n
	}
}

// UseDiskStaticByEnv reports whether static assets should be served
// from disk instead of the embedded copy (dev loop).
func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKDESK_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
