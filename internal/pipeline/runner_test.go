package pipeline_test

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/GoRPA-OrderBot/internal/archive"
	"github.com/fjglira/GoRPA-OrderBot/internal/browser/browsertest"
	"github.com/fjglira/GoRPA-OrderBot/internal/config"
	"github.com/fjglira/GoRPA-OrderBot/internal/converter"
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
	"github.com/fjglira/GoRPA-OrderBot/internal/metrics"
	"github.com/fjglira/GoRPA-OrderBot/internal/parser"
	"github.com/fjglira/GoRPA-OrderBot/internal/pipeline"
	"github.com/fjglira/GoRPA-OrderBot/internal/receipt"
	"github.com/fjglira/GoRPA-OrderBot/internal/source"
	"github.com/fjglira/GoRPA-OrderBot/internal/submitter"
	tmpl "github.com/fjglira/GoRPA-OrderBot/internal/template"
)

func zipNames(path string) []string {
	r, err := zip.OpenReader(path)
	Expect(err).ToNot(HaveOccurred())
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

var _ = Describe("DefaultRunner", func() {
	var (
		ctx      context.Context
		cfg      *config.Config
		server   *httptest.Server
		status   int
		payload  []byte
		page     *browsertest.FakePage
		launcher *browsertest.Launcher
		log      *logrus.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		payload, err = os.ReadFile(filepath.Join("..", "..", "testdata", "orders", "two_orders.csv"))
		Expect(err).ToNot(HaveOccurred())

		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			if status == http.StatusOK {
				w.Write(payload)
			}
		}))
		DeferCleanup(server.Close)

		cfg = config.DefaultConfig()
		cfg.Source.URL = server.URL + "/orders.csv"
		cfg.Output.Directory = GinkgoT().TempDir()
		Expect(config.Validate(cfg)).To(Succeed())

		page = browsertest.NewFakePage()
		launcher = &browsertest.Launcher{Page: page}
		log = logrus.New()
		log.SetOutput(io.Discard)
	})

	newRunner := func() *pipeline.DefaultRunner {
		engine, err := tmpl.NewEngine("", cfg.Receipt.Template)
		Expect(err).ToNot(HaveOccurred())
		recorder, err := metrics.NewRecorder()
		Expect(err).ToNot(HaveOccurred())

		cols := cfg.Source.Columns
		src := source.NewRemoteSource(cfg.Source.URL, cfg.SourcePath(),
			source.NewDownloader(server.Client(), cfg.Source.Timeout.D(), cfg.Source.MaxBytes),
			parser.NewCSVParser(parser.Columns{Reference: cols.Reference, Head: cols.Head, Body: cols.Body, Legs: cols.Legs, Address: cols.Address}),
			log)
		conv := converter.NewConverter(cfg.Site.Selectors)
		writer := receipt.NewWriter(cfg.ReceiptsPath(), cfg.Site.Selectors.PreviewImage, cfg.Receipt.Title, engine, log)
		sub := submitter.New(submitter.OptionsFromConfig(cfg), conv, writer, log)
		zipper := archive.NewZipper(archive.NewScanner(), cfg.Output.ArchiveInclude, cfg.Output.ArchiveExclude, log)

		return pipeline.NewRunner(cfg, "run-1", launcher, src, conv, sub, zipper, recorder, log)
	}

	It("should produce receipts and an archive for every order", func() {
		summary, err := newRunner().Run(ctx)
		Expect(err).ToNot(HaveOccurred())

		Expect(summary.RunID).To(Equal("run-1"))
		Expect(summary.Count(domain.StatusSucceeded)).To(Equal(2))
		receipts := summary.Receipts()
		Expect(receipts).To(HaveLen(2))
		for _, r := range receipts {
			Expect(r.PDFPath).To(BeAnExistingFile())
			Expect(r.ScreenshotPath).To(BeAnExistingFile())
			n, err := receipt.PageCount(r.PDFPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(2))
		}

		Expect(summary.ArchivePath).To(Equal(cfg.ArchivePath()))
		Expect(zipNames(cfg.ArchivePath())).To(ConsistOf(
			"order_RSB-ROBO-ORDER-1000.pdf", "order_RSB-ROBO-ORDER-1000.png",
			"order_RSB-ROBO-ORDER-1001.pdf", "order_RSB-ROBO-ORDER-1001.png",
		))

		Expect(page.Navigations).To(Equal([]string{cfg.Site.OrderURL}))
		Expect(page.Value(cfg.Site.Selectors.Address)).To(BeEmpty())
		Expect(page.Closed).To(Equal(1))
		Expect(cfg.SourcePath()).To(BeAnExistingFile())
	})

	It("should remove stale receipts before the run", func() {
		stale := filepath.Join(cfg.ReceiptsPath(), "order_OLD.pdf")
		Expect(os.MkdirAll(cfg.ReceiptsPath(), 0755)).To(Succeed())
		Expect(os.WriteFile(stale, []byte("old"), 0644)).To(Succeed())

		_, err := newRunner().Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(stale).ToNot(BeAnExistingFile())
		Expect(zipNames(cfg.ArchivePath())).To(HaveLen(4))
	})

	It("should close the session when the source fails", func() {
		status = http.StatusNotFound
		summary, err := newRunner().Run(ctx)
		Expect(errors.Is(err, domain.ErrSource)).To(BeTrue())
		Expect(summary).ToNot(BeNil())
		Expect(page.Closed).To(Equal(1))
		Expect(cfg.ArchivePath()).ToNot(BeAnExistingFile())
	})

	It("should report a session error when the browser cannot start", func() {
		launcher.Err = errors.New("chrome not found")
		_, err := newRunner().Run(ctx)
		Expect(errors.Is(err, domain.ErrSession)).To(BeTrue())
		Expect(page.Closed).To(BeZero())
	})

	It("should archive the receipts written before an abort", func() {
		cfg.Submission.MaxSubmitAttempts = 2
		page.Rejections = []int{0, -1}

		summary, err := newRunner().Run(ctx)
		Expect(errors.Is(err, domain.ErrSubmissionRejected)).To(BeTrue())
		Expect(summary.Count(domain.StatusSucceeded)).To(Equal(1))
		Expect(summary.Count(domain.StatusFailed)).To(Equal(1))
		Expect(zipNames(cfg.ArchivePath())).To(ConsistOf(
			"order_RSB-ROBO-ORDER-1000.pdf", "order_RSB-ROBO-ORDER-1000.png",
		))
		Expect(page.Closed).To(Equal(1))
	})

	It("should remove the orders file and write metrics when configured", func() {
		cfg.Cleanup.RemoveSourceFile = true
		cfg.Metrics.Textfile = filepath.Join(cfg.Output.Directory, "metrics", "orderbot.prom")

		_, err := newRunner().Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.SourcePath()).ToNot(BeAnExistingFile())

		data, err := os.ReadFile(cfg.Metrics.Textfile)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`orderbot_orders_total{status="succeeded"} 2`))
	})

	It("should fail only the row with a blank field when skipping", func() {
		cfg.Submission.OnFailure = config.FailureSkip
		payload = []byte("Order number,Head,Body,Legs,Address\n1,1,2,3,A St\n2,2,1,,B St\n3,3,3,3,C St\n")

		summary, err := newRunner().Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(summary.Outcomes).To(HaveLen(3))
		Expect(summary.Count(domain.StatusSucceeded)).To(Equal(2))
		Expect(summary.Count(domain.StatusFailed)).To(Equal(1))
		Expect(summary.Outcomes[1].Status).To(Equal(domain.StatusFailed))
		Expect(summary.Outcomes[1].SubmitClicks).To(BeZero())
		Expect(zipNames(cfg.ArchivePath())).To(HaveLen(4))
	})

	It("should only plan the orders on a dry run", func() {
		cfg.DryRun = true
		summary, err := newRunner().Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(launcher.Opened).To(BeZero())
		Expect(summary.Count(domain.StatusSkipped)).To(Equal(2))
		Expect(cfg.ReceiptsPath()).ToNot(BeADirectory())
	})
})

var _ = Describe("Clean", func() {
	It("should remove receipts and archive but keep the orders file", func() {
		cfg := config.DefaultConfig()
		cfg.Output.Directory = GinkgoT().TempDir()
		Expect(os.MkdirAll(cfg.ReceiptsPath(), 0755)).To(Succeed())
		for _, p := range []string{filepath.Join(cfg.ReceiptsPath(), "order_1.pdf"), cfg.ArchivePath(), cfg.SourcePath()} {
			Expect(os.WriteFile(p, []byte("x"), 0644)).To(Succeed())
		}

		log := logrus.New()
		log.SetOutput(io.Discard)
		Expect(pipeline.Clean(cfg, false, log)).To(Succeed())
		Expect(cfg.ReceiptsPath()).ToNot(BeADirectory())
		Expect(cfg.ArchivePath()).ToNot(BeAnExistingFile())
		Expect(cfg.SourcePath()).To(BeAnExistingFile())

		Expect(pipeline.Clean(cfg, true, log)).To(Succeed())
		Expect(cfg.SourcePath()).ToNot(BeAnExistingFile())
	})
})
