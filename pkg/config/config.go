package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the decision core.
type Config struct {
	Port string

	// Market data
	BinanceTestnet bool
	Symbols        []string
	KlineInterval  string
	UseMockFeed    bool

	// Learning
	Alpha           float64
	Gamma           float64
	Lambda          float64
	ReplayCapacity  int
	BatchSize       int
	DecisionEvery   int
	ReplayEvery     int
	OverfitEvery    int
	TuneEvery       int
	GateEnabled     bool
	PretrainEnabled bool
	PretrainCandles int

	// Virtual trading
	BaseEquity float64
	Lot        float64
	MinTick    float64

	// Persistence
	BrainDir         string
	PersistEnabled   bool
	AutosaveInterval time.Duration
	DBPath           string
	JournalEnabled   bool
	JournalBatchSize int

	// Instruments
	InstrumentsPath string

	// Auth / licensing
	JWTSecret    string
	LicenseToken string

	// Localization
	Language string // "en" or "zh"
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	// Database path: prefer DB_PATH, then DATABASE_PATH for backward compatibility.
	dbPath := getEnv("DB_PATH", "")
	if dbPath == "" {
		dbPath = getEnv("DATABASE_PATH", "./data/adaptive.db")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		BinanceTestnet:   getEnv("BINANCE_TESTNET", "false") == "true",
		Symbols:          splitAndTrim(getEnv("SYMBOLS", "BTCUSDT,ETHUSDT")),
		KlineInterval:    getEnv("KLINE_INTERVAL", "1m"),
		UseMockFeed:      getEnv("USE_MOCK_FEED", "true") == "true",
		Alpha:            getEnvFloat("LEARNING_ALPHA", 0.1),
		Gamma:            getEnvFloat("LEARNING_GAMMA", 0.95),
		Lambda:           getEnvFloat("LEARNING_LAMBDA", 0.8),
		ReplayCapacity:   getEnvInt("REPLAY_CAPACITY", 1000),
		BatchSize:        getEnvInt("REPLAY_BATCH_SIZE", 32),
		DecisionEvery:    getEnvInt("DECISION_EVERY_TICKS", 10),
		ReplayEvery:      getEnvInt("REPLAY_EVERY_DECISIONS", 5),
		OverfitEvery:     getEnvInt("OVERFIT_EVERY_DECISIONS", 20),
		TuneEvery:        getEnvInt("TUNE_EVERY_CLOSES", 5),
		GateEnabled:      getEnv("GATE_ENABLED", "true") == "true",
		PretrainEnabled:  getEnv("PRETRAIN_ENABLED", "true") == "true",
		PretrainCandles:  getEnvInt("PRETRAIN_CANDLES", 5000),
		BaseEquity:       getEnvFloat("BASE_EQUITY", 10000.0),
		Lot:              getEnvFloat("LOT_SIZE", 1.0),
		MinTick:          getEnvFloat("MIN_TICK", 0.0001),
		BrainDir:         getEnv("BRAIN_DIR", "./data/brains"),
		PersistEnabled:   getEnv("PERSIST_ENABLED", "true") == "true",
		AutosaveInterval: getEnvDuration("AUTOSAVE_INTERVAL", time.Hour),
		DBPath:           dbPath,
		JournalEnabled:   getEnv("JOURNAL_ENABLED", "true") == "true",
		JournalBatchSize: getEnvInt("JOURNAL_BATCH_SIZE", 50),
		InstrumentsPath:  getEnv("INSTRUMENTS_PATH", "./instruments.yaml"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret"),
		LicenseToken:     getEnv("LICENSE_TOKEN", ""),
		Language:         getEnv("LANGUAGE", "en"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
