package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Backend
		Database
		SecureStore
		CacheSync
		Tasks
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}

	// Backend points at the hosted API project (edge functions + auth).
	Backend struct {
		BaseURL       string
		AnonKey       string
		OAuthRedirect string
	}

	Database struct {
		Path string
	}

	SecureStore struct {
		Path          string
		EncryptionKey string // base64; resolved via env/keyfile when empty
		KeyFilePath   string
	}

	// CacheSync controls the periodic background refresh of cached clubs.
	CacheSync struct {
		Enabled  bool
		Schedule string        // Cron format: "0 */6 * * *" = every 6 hours
		MaxAge   time.Duration // clubs fresher than this are skipped
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Global struct {
		ShutdownTimeoutInSeconds int
		SessionSecret            string
		SecureCookies            bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("backend_base_url", "")
	v.SetDefault("backend_anon_key", "")
	v.SetDefault("oauth_redirect", DefaultOAuthRedirect)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("secure_store_path", DefaultSecureStorePath)
	v.SetDefault("secure_store_key", "")
	v.SetDefault("secure_store_key_file", "")

	v.SetDefault("cache_sync_enabled", false)
	v.SetDefault("cache_sync_schedule", "0 */6 * * *") // Every 6 hours
	v.SetDefault("cache_sync_max_age", "6h")

	v.SetDefault("session_secret", "") // Auto-generated if empty
	v.SetDefault("secure_cookies", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Backend: Backend{
			BaseURL:       v.GetString("BACKEND_BASE_URL"),
			AnonKey:       v.GetString("BACKEND_ANON_KEY"),
			OAuthRedirect: v.GetString("OAUTH_REDIRECT"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		SecureStore: SecureStore{
			Path:          v.GetString("SECURE_STORE_PATH"),
			EncryptionKey: v.GetString("SECURE_STORE_KEY"),
			KeyFilePath:   v.GetString("SECURE_STORE_KEY_FILE"),
		},
		CacheSync: CacheSync{
			Enabled:  v.GetBool("CACHE_SYNC_ENABLED"),
			Schedule: v.GetString("CACHE_SYNC_SCHEDULE"),
			MaxAge:   v.GetDuration("CACHE_SYNC_MAX_AGE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			SessionSecret:            v.GetString("SESSION_SECRET"),
			SecureCookies:            v.GetBool("SECURE_COOKIES"),
		},
	}
}
