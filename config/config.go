package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Store  StoreConfig
	Assist AssistConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// StoreConfig configures the persistence adapters backing the domain store.
type StoreConfig struct {
	KeyPrefix   string
	PatientFile string
}

// AssistConfig configures the simulated assist capabilities. The delays model
// the latency of a real model-backed service; they are injected here so core
// logic never hard-codes them.
type AssistConfig struct {
	SafetyDelay  time.Duration
	SummaryDelay time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	safetyDelay, err := time.ParseDuration(viper.GetString("ASSIST_SAFETY_DELAY"))
	if err != nil {
		safetyDelay = 800 * time.Millisecond
	}

	summaryDelay, err := time.ParseDuration(viper.GetString("ASSIST_SUMMARY_DELAY"))
	if err != nil {
		summaryDelay = 1500 * time.Millisecond
	}

	keyPrefix := viper.GetString("STORE_KEY_PREFIX")
	if keyPrefix == "" {
		keyPrefix = "nexus"
	}

	patientFile := viper.GetString("STORE_PATIENT_FILE")
	if patientFile == "" {
		patientFile = "data/patients.json"
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Store: StoreConfig{
			KeyPrefix:   keyPrefix,
			PatientFile: patientFile,
		},
		Assist: AssistConfig{
			SafetyDelay:  safetyDelay,
			SummaryDelay: summaryDelay,
		},
	}

	return config, nil
}
