// Package pipeline runs the stages of an order batch against one browser
// session: open, load orders, submit, archive, clean up.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/GoRPA-OrderBot/internal/archive"
	"github.com/fjglira/GoRPA-OrderBot/internal/browser"
	"github.com/fjglira/GoRPA-OrderBot/internal/config"
	"github.com/fjglira/GoRPA-OrderBot/internal/converter"
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
	"github.com/fjglira/GoRPA-OrderBot/internal/metrics"
	"github.com/fjglira/GoRPA-OrderBot/internal/source"
	"github.com/fjglira/GoRPA-OrderBot/internal/submitter"
)

// Runner is the top-level orchestrator.
type Runner interface {
	Run(ctx context.Context) (*domain.RunSummary, error)
}

// DefaultRunner implements Runner by wiring all components together.
type DefaultRunner struct {
	cfg       *config.Config
	runID     string
	launcher  browser.Launcher
	source    source.Source
	converter converter.Converter
	submitter submitter.Submitter
	archiver  archive.Archiver
	recorder  *metrics.Recorder
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewRunner creates a new DefaultRunner with all dependencies. recorder may
// be nil when no metrics textfile is configured.
func NewRunner(
	cfg *config.Config,
	runID string,
	l browser.Launcher,
	src source.Source,
	c converter.Converter,
	s submitter.Submitter,
	a archive.Archiver,
	recorder *metrics.Recorder,
	log logrus.FieldLogger,
) *DefaultRunner {
	return &DefaultRunner{
		cfg:       cfg,
		runID:     runID,
		launcher:  l,
		source:    src,
		converter: c,
		submitter: s,
		archiver:  a,
		recorder:  recorder,
		log:       log,
		now:       time.Now,
	}
}

// Run executes the whole batch. The returned summary is never nil and holds
// whatever was achieved before an error. An aborted run still archives the
// receipts written so far.
func (r *DefaultRunner) Run(ctx context.Context) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{RunID: r.runID, StartedAt: r.now()}
	defer func() { summary.FinishedAt = r.now() }()

	if r.cfg.DryRun {
		return summary, r.dryRun(ctx, summary)
	}

	// Step 1: Remove stale output
	if r.cfg.Output.CleanBeforeRun {
		if err := Clean(r.cfg, false, r.log); err != nil {
			return summary, err
		}
	}
	if err := os.MkdirAll(r.cfg.ReceiptsPath(), 0755); err != nil {
		return summary, domain.NewErrorWithSuggestion(domain.ErrReceipt, "receipt", r.cfg.ReceiptsPath(),
			"failed to create receipts directory",
			"check that output.directory is writable",
			err)
	}

	// Step 2: Open the session; everything after this point is cleaned up
	page, err := r.launcher.Open(ctx)
	if err != nil {
		return summary, domain.NewErrorWithSuggestion(domain.ErrSession, "session", r.cfg.Site.OrderURL,
			"failed to open browser session",
			"check browser.chrome_path or browser.cdp_url",
			err)
	}
	defer r.cleanup(page)

	r.log.WithField("url", r.cfg.Site.OrderURL).Info("Opening order form")
	if err := page.Navigate(ctx, r.cfg.Site.OrderURL); err != nil {
		return summary, domain.NewError(domain.ErrSession, "session", r.cfg.Site.OrderURL, "failed to open order form", err)
	}
	if err := r.submitter.DismissModal(ctx, page); err != nil {
		return summary, err
	}

	// Step 3: Load orders
	records, err := r.source.Load(ctx)
	if err != nil {
		return summary, err
	}

	// Step 4: Submit every order
	outcomes, runErr := r.submitter.ProcessAll(ctx, page, records)
	summary.Outcomes = outcomes

	// Step 5: Archive receipts
	entries, archiveErr := r.archive(summary)
	r.observe(summary, entries)

	r.log.WithFields(logrus.Fields{
		"succeeded": summary.Count(domain.StatusSucceeded),
		"failed":    summary.Count(domain.StatusFailed),
		"skipped":   summary.Count(domain.StatusSkipped),
	}).Info("Run complete")

	if runErr != nil {
		return summary, runErr
	}
	return summary, archiveErr
}

func (r *DefaultRunner) archive(summary *domain.RunSummary) (int, error) {
	zipPath := r.cfg.ArchivePath()
	entries, err := r.archiver.Archive(r.cfg.ReceiptsPath(), zipPath)
	if err != nil {
		r.log.WithError(err).Error("Archiving receipts failed")
		return 0, err
	}
	summary.ArchivePath = zipPath
	return len(entries), nil
}

// observe writes the metrics textfile. Failing to do so never fails the run.
func (r *DefaultRunner) observe(summary *domain.RunSummary, archived int) {
	if r.recorder == nil || r.cfg.Metrics.Textfile == "" {
		return
	}
	summary.FinishedAt = r.now()
	r.recorder.Observe(summary, archived)
	if err := r.recorder.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
		r.log.WithError(err).Warn("Failed to write metrics")
	}
}

// cleanup releases the session and transient files on every exit path.
func (r *DefaultRunner) cleanup(page browser.Page) {
	if err := page.Close(); err != nil {
		r.log.WithError(err).Warn("Failed to close browser session")
	}
	if !r.cfg.Cleanup.RemoveSourceFile {
		return
	}
	if err := os.Remove(r.cfg.SourcePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.log.WithError(err).Warn("Failed to remove orders file")
	}
}

// dryRun loads the orders and logs the form plan of each one without
// opening a browser.
func (r *DefaultRunner) dryRun(ctx context.Context, summary *domain.RunSummary) error {
	records, err := r.source.Load(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		plan, err := r.converter.Convert(rec)
		if err != nil {
			return err
		}
		for _, step := range plan.Steps {
			r.log.WithFields(logrus.Fields{
				"row":      rec.Row,
				"field":    step.Field,
				"selector": step.Selector,
				"value":    step.Value,
			}).Infof("[DRY-RUN] Would %s", step.Action)
		}
		summary.Outcomes = append(summary.Outcomes, domain.OrderOutcome{Record: rec, Status: domain.StatusSkipped})
	}
	return nil
}
