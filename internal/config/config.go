// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/neomorfeo/rentiq/internal/domain"
)

type Config struct {
	App struct {
		Port        int      `envconfig:"PORT" default:"8080"`
		CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
		PurgePolicy string   `envconfig:"BRANCH_PURGE_POLICY" default:"restrict"`
	}

	DB struct {
		Path string `envconfig:"DATABASE_PATH" default:"rentiq.db"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	Billing struct {
		ElectricUnitPrice int64  `envconfig:"ELECTRIC_UNIT_PRICE" default:"3500"`
		WaterUnitPrice    int64  `envconfig:"WATER_UNIT_PRICE" default:"15000"`
		ServiceFee        int64  `envconfig:"DEFAULT_SERVICE_FEE" default:"150000"`
		PayeeBankID       string `envconfig:"PAYEE_BANK_ID" default:"VCB"`
		PayeeAccountNo    string `envconfig:"PAYEE_ACCOUNT_NO" default:"1234567890"`
		PayeeAccountName  string `envconfig:"PAYEE_ACCOUNT_NAME" default:"LE HOANG GIANG"`
	}

	Notify struct {
		ReminderSchedule string `envconfig:"REMINDER_SCHEDULE" default:"0 8 * * *"`
		Language         string `envconfig:"NOTIFY_LANGUAGE" default:"vi"`
	}

	SMTP struct {
		Host     string `envconfig:"SMTP_HOST"`
		Port     int    `envconfig:"SMTP_PORT" default:"587"`
		Username string `envconfig:"SMTP_USERNAME"`
		Password string `envconfig:"SMTP_PASSWORD"`
		From     string `envconfig:"SMTP_FROM" default:"billing@rentiq.local"`
	}

	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Username string        `envconfig:"REDIS_USERNAME"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB" default:"0"`
		TTL      time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"60s"`
	}

	Storage struct {
		CloudinaryURL    string `envconfig:"CLOUDINARY_URL"`
		CloudinaryFolder string `envconfig:"CLOUDINARY_FOLDER" default:"rentiq"`
		UploadDir        string `envconfig:"UPLOAD_DIR" default:"uploads"`
	}

	FaceID struct {
		URL     string        `envconfig:"FACE_SERVICE_URL" default:"http://localhost:8000"`
		Timeout time.Duration `envconfig:"FACE_SERVICE_TIMEOUT" default:"15s"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}

	OTel struct {
		ServiceName    string  `envconfig:"OTEL_SERVICE_NAME" default:"rentiq"`
		ServiceVersion string  `envconfig:"OTEL_SERVICE_VERSION" default:"0.1.0"`
		Environment    string  `envconfig:"OTEL_ENVIRONMENT" default:"development"`
		Exporter       string  `envconfig:"OTEL_EXPORTER" default:"stdout"`
		SampleRatio    float64 `envconfig:"OTEL_SAMPLE_RATIO" default:"1"`
	}
}

// Load reads the given dotenv files (".env" when none are named) into the
// process environment and then decodes the environment. Missing dotenv
// files are skipped; variables already set take precedence.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// Tariff returns the configured unit prices.
func (c *Config) Tariff() domain.Tariff {
	return domain.Tariff{
		ElectricUnitPrice: c.Billing.ElectricUnitPrice,
		WaterUnitPrice:    c.Billing.WaterUnitPrice,
		DefaultServiceFee: c.Billing.ServiceFee,
	}
}

// Payee returns the bank account tenants pay into.
func (c *Config) Payee() domain.PayeeAccount {
	return domain.PayeeAccount{
		BankID:      c.Billing.PayeeBankID,
		AccountNo:   c.Billing.PayeeAccountNo,
		AccountName: c.Billing.PayeeAccountName,
	}
}

// Insecure reports whether OTLP should use plain HTTP.
func (c *Config) Insecure() bool { return c.OTel.Environment == "development" }
