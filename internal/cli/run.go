package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjglira/GoRPA-OrderBot/internal/archive"
	"github.com/fjglira/GoRPA-OrderBot/internal/browser"
	"github.com/fjglira/GoRPA-OrderBot/internal/config"
	"github.com/fjglira/GoRPA-OrderBot/internal/converter"
	"github.com/fjglira/GoRPA-OrderBot/internal/metrics"
	"github.com/fjglira/GoRPA-OrderBot/internal/parser"
	"github.com/fjglira/GoRPA-OrderBot/internal/pipeline"
	"github.com/fjglira/GoRPA-OrderBot/internal/receipt"
	"github.com/fjglira/GoRPA-OrderBot/internal/source"
	"github.com/fjglira/GoRPA-OrderBot/internal/submitter"
	tmpl "github.com/fjglira/GoRPA-OrderBot/internal/template"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Place every order of the orders file",
	Long: `Opens the order form, downloads and parses the orders file, submits every order,
writes a PDF receipt with the robot preview per order and zips the receipts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if dryRun {
			cfg.DryRun = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runID := uuid.NewString()
		runLog := log.WithField("run_id", runID)
		runLog.WithFields(logrus.Fields{
			"source": cfg.Source.URL,
			"output": cfg.Output.Directory,
		}).Info("Configuration loaded successfully")

		runner, err := buildRunner(cfg, runID, runLog)
		if err != nil {
			return err
		}

		summary, runErr := runner.Run(ctx)
		printSummary(cmd.OutOrStdout(), summary, cfg.DryRun)
		return runErr
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "download and plan the orders without opening a browser")
	rootCmd.AddCommand(runCmd)
}

// buildRunner wires all components.
func buildRunner(cfg *config.Config, runID string, runLog logrus.FieldLogger) (*pipeline.DefaultRunner, error) {
	// Create template engine
	engine, err := tmpl.NewEngine(cfg.Receipt.TemplateDir, cfg.Receipt.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to create template engine: %w", err)
	}

	// Create order source
	cols := cfg.Source.Columns
	p := parser.NewCSVParser(parser.Columns{
		Reference: cols.Reference,
		Head:      cols.Head,
		Body:      cols.Body,
		Legs:      cols.Legs,
		Address:   cols.Address,
	})
	d := source.NewDownloader(&http.Client{}, cfg.Source.Timeout.D(), cfg.Source.MaxBytes)
	src := source.NewRemoteSource(cfg.Source.URL, cfg.SourcePath(), d, p, runLog)

	// Create browser launcher
	launcher := browser.NewChromeLauncher(browser.Options{
		Headless:      cfg.Browser.Headless,
		ChromePath:    cfg.Browser.ChromePath,
		CDPURL:        cfg.Browser.CDPURL,
		UserDataDir:   cfg.Browser.UserDataDir,
		SlowMotion:    cfg.Browser.SlowMotion.D(),
		ActionTimeout: cfg.Browser.ActionTimeout.D(),
		WindowWidth:   cfg.Browser.WindowWidth,
		WindowHeight:  cfg.Browser.WindowHeight,
	}, runLog)

	// Create submitter
	conv := converter.NewConverter(cfg.Site.Selectors)
	writer := receipt.NewWriter(cfg.ReceiptsPath(), cfg.Site.Selectors.PreviewImage, cfg.Receipt.Title, engine, runLog)
	sub := submitter.New(submitter.OptionsFromConfig(cfg), conv, writer, runLog)

	// Create archiver
	zipper := archive.NewZipper(archive.NewScanner(), cfg.Output.ArchiveInclude, cfg.Output.ArchiveExclude, runLog)

	var recorder *metrics.Recorder
	if cfg.Metrics.Textfile != "" {
		recorder, err = metrics.NewRecorder()
		if err != nil {
			return nil, err
		}
	}

	return pipeline.NewRunner(cfg, runID, launcher, src, conv, sub, zipper, recorder, runLog), nil
}
