package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Source     SourceConfig     `yaml:"source"`
	Browser    BrowserConfig    `yaml:"browser"`
	Submission SubmissionConfig `yaml:"submission"`
	Receipt    ReceiptConfig    `yaml:"receipt"`
	Output     OutputConfig     `yaml:"output"`
	Cleanup    CleanupConfig    `yaml:"cleanup"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
	DryRun     bool             `yaml:"dry_run"`
}

type SiteConfig struct {
	OrderURL        string          `yaml:"order_url"`
	ModalButtonText string          `yaml:"modal_button_text"`
	Selectors       SelectorsConfig `yaml:"selectors"`
}

// SelectorsConfig holds the CSS selectors of the order form. Body is a
// pattern: "{value}" is replaced with the record's body value.
type SelectorsConfig struct {
	Head         string `yaml:"head"`
	Body         string `yaml:"body"`
	Legs         string `yaml:"legs"`
	Address      string `yaml:"address"`
	Preview      string `yaml:"preview"`
	PreviewImage string `yaml:"preview_image"`
	Order        string `yaml:"order"`
	Alert        string `yaml:"alert"`
	Receipt      string `yaml:"receipt"`
	OrderNumber  string `yaml:"order_number"`
	OrderAnother string `yaml:"order_another"`
}

type SourceConfig struct {
	URL       string        `yaml:"url"`
	LocalFile string        `yaml:"local_file"` // relative to output.directory
	Timeout   Duration      `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	Columns   ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig maps record fields to CSV header names.
type ColumnsConfig struct {
	Reference string `yaml:"reference"` // optional
	Head      string `yaml:"head"`
	Body      string `yaml:"body"`
	Legs      string `yaml:"legs"`
	Address   string `yaml:"address"`
}

type BrowserConfig struct {
	Headless      bool     `yaml:"headless"`
	ChromePath    string   `yaml:"chrome_path"`
	CDPURL        string   `yaml:"cdp_url"`
	UserDataDir   string   `yaml:"user_data_dir"`
	SlowMotion    Duration `yaml:"slow_motion"`
	ActionTimeout Duration `yaml:"action_timeout"`
	WindowWidth   int      `yaml:"window_width"`
	WindowHeight  int      `yaml:"window_height"`
}

type SubmissionConfig struct {
	ModalTimeout      Duration `yaml:"modal_timeout"`
	PreviewTimeout    Duration `yaml:"preview_timeout"`
	AlertCheckTimeout Duration `yaml:"alert_check_timeout"`
	MaxSubmitAttempts int      `yaml:"max_submit_attempts"`
	ReceiptTimeout    Duration `yaml:"receipt_timeout"`
	AdvanceTimeout    Duration `yaml:"advance_timeout"`
	OnFailure         string   `yaml:"on_failure"` // "abort" or "skip"
}

// Failure policies for submission.on_failure.
const (
	FailureAbort = "abort"
	FailureSkip  = "skip"
)

// ReceiptConfig controls how receipt markup becomes a PDF document.
type ReceiptConfig struct {
	TemplateDir string `yaml:"template_dir"` // empty uses the built-in templates only
	Template    string `yaml:"template"`
	Title       string `yaml:"title"`
}

type OutputConfig struct {
	Directory      string   `yaml:"directory"`
	ReceiptsDir    string   `yaml:"receipts_dir"` // relative to directory
	ArchiveName    string   `yaml:"archive_name"` // relative to directory
	ArchiveInclude []string `yaml:"archive_include"`
	ArchiveExclude []string `yaml:"archive_exclude"`
	CleanBeforeRun bool     `yaml:"clean_before_run"`
}

type CleanupConfig struct {
	RemoveSourceFile bool `yaml:"remove_source_file"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // empty disables metrics output
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Duration is a time.Duration read from a Go duration string ("30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// Load reads a YAML configuration file over the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.ErrConfig, "config", path, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError(domain.ErrConfig, "config", path, "failed to parse config file", err)
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to the defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
		ApplyEnv(cfg)
		return cfg, nil
	}
	return cfg, err
}
