package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ricemill/backend/internal/domain"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	SnapshotDir           string
	AttachmentDir         string
	GCSBucket             string
	GCSPrefix             string
	MillName              string
	AuthSecret            string
	AccessTokenTTLMinutes int
	OperatorUsername      string
	OperatorPassword      string
	AckTarget             int
	DigestSchedule        string
	DigestTimezone        string
	Tariff                domain.Tariff
}

// Load reads configuration from the environment after applying a .env file
// in the working directory, if there is one.
func Load() Config {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile is Load with an explicit env file. A missing file is not an error.
func LoadFile(envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed loading env file %s: %w", envFile, err)
	}
	return fromEnv(), nil
}

func fromEnv() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "720"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 720
	}
	ackTarget, err := strconv.Atoi(getEnv("ACK_TARGET", "0"))
	if err != nil || ackTarget < 0 {
		ackTarget = 0
	}

	defaults := domain.DefaultTariff()
	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		SnapshotDir:           os.Getenv("SNAPSHOT_DIR"),
		AttachmentDir:         getEnv("ATTACHMENT_DIR", "./uploads"),
		GCSBucket:             strings.TrimSpace(os.Getenv("GCS_BUCKET")),
		GCSPrefix:             getEnv("GCS_PREFIX", "ricemill"),
		MillName:              getEnv("MILL_NAME", "Rice Mill"),
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		OperatorUsername:      getEnv("OPERATOR_USERNAME", "operator"),
		OperatorPassword:      os.Getenv("OPERATOR_PASSWORD"),
		AckTarget:             ackTarget,
		DigestSchedule:        getEnv("DIGEST_SCHEDULE", "0 8 * * *"),
		DigestTimezone:        getEnv("DIGEST_TIMEZONE", "Asia/Kolkata"),
		Tariff: domain.Tariff{
			FixedCharge:       getFloat("TARIFF_FIXED_CHARGE", defaults.FixedCharge),
			EnergyRate:        getFloat("TARIFF_ENERGY_RATE", defaults.EnergyRate),
			DemandRate:        getFloat("TARIFF_DEMAND_RATE", defaults.DemandRate),
			FuelSurchargeRate: getFloat("TARIFF_FUEL_SURCHARGE", defaults.FuelSurchargeRate),
			DutyRate:          getFloat("TARIFF_DUTY_RATE", defaults.DutyRate),
			AdditionalCharge:  getFloat("TARIFF_ADDITIONAL_CHARGE", defaults.AdditionalCharge),
			MinPowerFactor:    getFloat("TARIFF_MIN_POWER_FACTOR", defaults.MinPowerFactor),
		},
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
