package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               string
	DBConnectionString string
	GomafiaBaseURL     string
	VerifyCronSpec     string
	AlertWebhookURL    string
	Sync               *SyncConfig
	Gomafia            *GomafiaConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		GomafiaBaseURL:     getEnv("GOMAFIA_BASE_URL", "https://gomafia.pro"),
		VerifyCronSpec:     getEnv("VERIFY_CRON", "0 3 * * *"),
		AlertWebhookURL:    getEnv("ALERT_WEBHOOK_URL", ""),
		Sync:               DefaultSyncConfig(),
		Gomafia:            DefaultGomafiaConfig(),
	}
	cfg.Gomafia.BaseURL = cfg.GomafiaBaseURL

	if batchSize, err := getEnvInt("SYNC_BATCH_SIZE"); err != nil {
		return nil, err
	} else if batchSize > 0 {
		cfg.Sync.BatchSize = batchSize
	}

	if sampleSize, err := getEnvInt("VERIFY_SAMPLE_SIZE"); err != nil {
		return nil, err
	} else if sampleSize > 0 {
		cfg.Sync.VerificationSampleSize = sampleSize
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
