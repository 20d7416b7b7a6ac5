package config

import (
	"fmt"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

type Config struct {
	APIBaseURL      string        `koanf:"api_url"`
	APIToken        string        `koanf:"api_token"`
	SecretAPIToken  string        `koanf:"secret_api_token"`
	Timeout         time.Duration `koanf:"timeout"`
	MaxRetries      int           `koanf:"max_retries"`
	RetryDelay      time.Duration `koanf:"retry_delay"`
	PageDelay       time.Duration `koanf:"page_delay"`
	WindowStart     string        `koanf:"window_start"`
	CacheDir        string        `koanf:"cache_dir"`
	CacheEnabled    bool          `koanf:"cache_enabled"`
	Environment     string        `koanf:"environment"`
	SpreadsheetID   string        `koanf:"spreadsheet_id"`
	SheetName       string        `koanf:"sheet_name"`
	CredentialsFile string        `koanf:"credentials_file"`
	OutputDir       string        `koanf:"output_dir"`
	LogFile         string        `koanf:"log_file"`
	Debug           bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		Timeout:         30 * time.Second,
		MaxRetries:      5,
		RetryDelay:      2 * time.Second,
		PageDelay:       500 * time.Millisecond,
		WindowStart:     "2023-01-01",
		CacheDir:        "./cache",
		Environment:     "production",
		SheetName:       "Sheet1",
		CredentialsFile: "credentials.json",
		LogFile:         "./gestao-report.log",
		Debug:           false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

// CacheActive reports whether on-disk cache artifacts may be read for this
// run. Cache is opt-in and never used in production.
func (c Config) CacheActive() bool {
	return c.CacheEnabled && c.Environment != "production"
}
