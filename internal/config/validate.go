package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Site validation
	if err := validateURL(cfg.Site.OrderURL); err != nil {
		errs = append(errs, fmt.Sprintf("site.order_url %v", err))
	}
	if strings.TrimSpace(cfg.Site.ModalButtonText) == "" {
		errs = append(errs, "site.modal_button_text must not be empty")
	}
	sel := cfg.Site.Selectors
	for _, f := range []struct{ name, value string }{
		{"head", sel.Head}, {"body", sel.Body}, {"legs", sel.Legs}, {"address", sel.Address},
		{"preview", sel.Preview}, {"preview_image", sel.PreviewImage}, {"order", sel.Order},
		{"alert", sel.Alert}, {"receipt", sel.Receipt}, {"order_number", sel.OrderNumber},
		{"order_another", sel.OrderAnother},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Sprintf("site.selectors.%s must not be empty", f.name))
		}
	}
	if sel.Body != "" && !strings.Contains(sel.Body, "{value}") {
		errs = append(errs, "site.selectors.body must contain the {value} placeholder")
	}

	// Source validation
	if err := validateURL(cfg.Source.URL); err != nil {
		errs = append(errs, fmt.Sprintf("source.url %v", err))
	}
	if cfg.Source.LocalFile == "" {
		errs = append(errs, "source.local_file must not be empty")
	}
	if cfg.Source.Timeout <= 0 {
		errs = append(errs, "source.timeout must be positive")
	}
	if cfg.Source.MaxBytes <= 0 {
		errs = append(errs, "source.max_bytes must be positive")
	}
	cols := cfg.Source.Columns
	if cols.Head == "" || cols.Body == "" || cols.Legs == "" || cols.Address == "" {
		errs = append(errs, "source.columns head, body, legs and address must all be set")
	}

	// Browser validation
	if cfg.Browser.SlowMotion < 0 {
		errs = append(errs, "browser.slow_motion must not be negative")
	}
	if cfg.Browser.ActionTimeout <= 0 {
		errs = append(errs, "browser.action_timeout must be positive")
	}

	// Submission validation
	sub := cfg.Submission
	for _, f := range []struct {
		name string
		d    Duration
	}{
		{"modal_timeout", sub.ModalTimeout}, {"preview_timeout", sub.PreviewTimeout},
		{"alert_check_timeout", sub.AlertCheckTimeout}, {"receipt_timeout", sub.ReceiptTimeout},
		{"advance_timeout", sub.AdvanceTimeout},
	} {
		if f.d <= 0 {
			errs = append(errs, fmt.Sprintf("submission.%s must be positive", f.name))
		}
	}
	if sub.MaxSubmitAttempts < 1 {
		errs = append(errs, "submission.max_submit_attempts must be at least 1")
	}
	if sub.OnFailure != FailureAbort && sub.OnFailure != FailureSkip {
		errs = append(errs, fmt.Sprintf("submission.on_failure must be one of: abort, skip (got %q)", sub.OnFailure))
	}

	if strings.TrimSpace(cfg.Receipt.Template) == "" {
		errs = append(errs, "receipt.template must not be empty")
	}

	// Output validation
	if cfg.Output.Directory == "" {
		errs = append(errs, "output.directory must not be empty")
	}
	if !isSubPath(cfg.Output.ReceiptsDir) {
		errs = append(errs, fmt.Sprintf("output.receipts_dir must be a relative path inside output.directory (got %q)", cfg.Output.ReceiptsDir))
	}
	if !isSubPath(cfg.Output.ArchiveName) {
		errs = append(errs, fmt.Sprintf("output.archive_name must be a relative path inside output.directory (got %q)", cfg.Output.ArchiveName))
	}
	if !strings.HasSuffix(cfg.Output.ArchiveName, ".zip") {
		errs = append(errs, "output.archive_name must end with .zip")
	}
	if len(cfg.Output.ArchiveInclude) == 0 {
		errs = append(errs, "output.archive_include must not be empty")
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError(domain.ErrConfig, "config", "", fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}

// isSubPath reports whether p names something strictly below its base
// directory; "." and ".." are rejected after cleaning.
func isSubPath(p string) bool {
	return p != "" && filepath.IsLocal(p) && filepath.Clean(p) != "."
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) URL (got %q)", raw)
	}
	return nil
}

// ReceiptsPath returns the absolute-or-relative receipts directory.
func (c *Config) ReceiptsPath() string {
	return filepath.Join(c.Output.Directory, c.Output.ReceiptsDir)
}

// ArchivePath returns the path of the receipts archive.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Output.Directory, c.Output.ArchiveName)
}

// SourcePath returns where the downloaded orders file is stored.
func (c *Config) SourcePath() string {
	if filepath.IsAbs(c.Source.LocalFile) {
		return c.Source.LocalFile
	}
	return filepath.Join(c.Output.Directory, c.Source.LocalFile)
}
