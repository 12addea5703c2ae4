package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "salespulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Quality   QualityConfig   `yaml:"quality" envconfig:"QUALITY"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig locates the sales dataset
type InputConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// OutputConfig locates the report folder
type OutputConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// QualityConfig holds the cleaning policies for data-quality findings
type QualityConfig struct {
	MissingPolicy  string   `yaml:"missing_policy" split_words:"true" validate:"oneof=drop keep fail"`
	MismatchPolicy string   `yaml:"mismatch_policy" split_words:"true" validate:"oneof=annotate exclude correct"`
	ScratchColumns []string `yaml:"scratch_columns" split_words:"true"`
}

// ReportConfig controls the exported artifacts and console report
type ReportConfig struct {
	Formats     []string `yaml:"formats" validate:"min=1,dive,oneof=csv xlsx pdf"`
	Currency    string   `yaml:"currency"`
	PreviewRows int      `yaml:"preview_rows" split_words:"true" validate:"gte=0"`
	TopReps     int      `yaml:"top_reps" split_words:"true" validate:"gte=1"`
	TopProducts int      `yaml:"top_products" split_words:"true" validate:"gte=1"`
	Quiet       bool     `yaml:"quiet"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" validate:"oneof=json text"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=none stdout file"`
	TraceFile     string `yaml:"trace_file" split_words:"true" validate:"required_if=TraceExporter file"`
	MetricsFile   string `yaml:"metrics_file" split_words:"true"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: DefaultOutputDir,
		},
		Quality: QualityConfig{
			MissingPolicy:  MissingPolicyDrop,
			MismatchPolicy: MismatchPolicyAnnotate,
			ScratchColumns: []string{ScratchRevenueColumn},
		},
		Report: ReportConfig{
			Formats:     []string{FormatCSV},
			Currency:    DefaultCurrency,
			PreviewRows: DefaultPreviewRows,
			TopReps:     DefaultTopReps,
			TopProducts: DefaultTopProducts,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// SALES_* environment variables, in increasing order of precedence.
// The result is not validated; callers apply CLI overrides and then call Validate.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()
	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg; keys absent from the file keep their current value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewConfigError(fmt.Sprintf("config file %s not found", filePath), err)
		}
		return apperrors.NewConfigError("failed to read config file", err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("failed to parse config file %s", filePath), err)
	}
	return nil
}

// normalize lower-cases enumerations and trims list entries
func (c *Config) normalize() {
	c.Quality.MissingPolicy = strings.ToLower(strings.TrimSpace(c.Quality.MissingPolicy))
	c.Quality.MismatchPolicy = strings.ToLower(strings.TrimSpace(c.Quality.MismatchPolicy))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))

	formats := make([]string, 0, len(c.Report.Formats))
	seen := make(map[string]bool, len(c.Report.Formats))
	for _, f := range c.Report.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	c.Report.Formats = formats
}

// Validate checks the configuration against its declared constraints
func (c *Config) Validate() error {
	c.normalize()

	v := validator.New()
	if err := v.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return apperrors.NewConfigError("config validation failed", fmt.Errorf("%s", strings.Join(msgs, "; ")))
	}
	return nil
}

// formatFieldError renders a validator field error as a readable message
func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required", "required_unless", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
