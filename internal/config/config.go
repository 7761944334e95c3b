package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/utils"
)

// EnvPrefix prefixes environment overrides: FATURA_SERVER_PORT, FATURA_INVOICES_BASE_DIR, ...
const EnvPrefix = "FATURA"

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Invoices    InvoicesConfig    `mapstructure:"invoices"`
	Spreadsheet SpreadsheetConfig `mapstructure:"spreadsheet"`
	Report      ReportConfig      `mapstructure:"report"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// InvoicesConfig locates the monthly spreadsheets
type InvoicesConfig struct {
	BaseDir  string   `mapstructure:"base_dir"`
	Prefix   string   `mapstructure:"prefix"`
	TieBreak string   `mapstructure:"tie_break"` // lexicographic or fail
	Years    []string `mapstructure:"years"`     // empty lists the year directories
	Months   []string `mapstructure:"months"`
}

// SpreadsheetConfig selects the worksheet and the CSV dialect
type SpreadsheetConfig struct {
	Sheet        string `mapstructure:"sheet"`
	SheetIndex   int    `mapstructure:"sheet_index"`
	CSVEncoding  string `mapstructure:"csv_encoding"`
	CSVSeparator string `mapstructure:"csv_separator"`
}

// ReportConfig holds PDF settings
type ReportConfig struct {
	FooterLines []string `mapstructure:"footer_lines"` // empty uses the department footer
	Verify      bool     `mapstructure:"verify"`
}

// DatabaseConfig holds the download ledger configuration
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from the YAML file, then environment variables.
// An empty path skips the file. Variables from a .env file in the working
// directory are loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv exports the variables of a dotenv file without overriding the
// ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	// Invoice file defaults
	v.SetDefault("invoices.base_dir", "/mnt/dados")
	v.SetDefault("invoices.prefix", "fatura_coparticipacao_")
	v.SetDefault("invoices.tie_break", "lexicographic")
	v.SetDefault("invoices.years", []string{})
	v.SetDefault("invoices.months", []string{
		"janeiro", "fevereiro", "marco", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	})

	// Spreadsheet defaults
	v.SetDefault("spreadsheet.sheet", "")
	v.SetDefault("spreadsheet.sheet_index", 0)
	v.SetDefault("spreadsheet.csv_encoding", "utf-8")
	v.SetDefault("spreadsheet.csv_separator", ";")

	// Report defaults
	v.SetDefault("report.footer_lines", []string{})
	v.SetDefault("report.verify", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.path", "data/fatura.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	if strings.TrimSpace(c.Invoices.BaseDir) == "" {
		return fmt.Errorf("invoices.base_dir is required")
	}
	switch c.Invoices.TieBreak {
	case "lexicographic", "fail":
	default:
		return fmt.Errorf("invoices.tie_break must be lexicographic or fail, got %q", c.Invoices.TieBreak)
	}
	for _, year := range c.Invoices.Years {
		if err := utils.ValidateYear(year); err != nil {
			return fmt.Errorf("invoices.years: %w", err)
		}
	}
	if len(c.Invoices.Months) == 0 {
		return fmt.Errorf("invoices.months must not be empty")
	}

	if c.Spreadsheet.SheetIndex < 0 {
		return fmt.Errorf("spreadsheet.sheet_index must not be negative")
	}
	if utf8.RuneCountInString(c.Spreadsheet.CSVSeparator) != 1 {
		return fmt.Errorf("spreadsheet.csv_separator must be a single character, got %q", c.Spreadsheet.CSVSeparator)
	}

	if c.Database.Enabled && c.Database.Path == "" {
		return fmt.Errorf("database.path is required when the ledger is enabled")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
