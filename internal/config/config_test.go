package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/GoRPA-OrderBot/internal/config"
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

var _ = Describe("Config", func() {
	Describe("Load", func() {
		It("should load minimal config over the defaults", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "minimal.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Output.Directory).To(Equal(filepath.Join("build", "output")))
			Expect(cfg.Site.Selectors.Order).To(Equal("#order"))
			Expect(cfg.Submission.MaxSubmitAttempts).To(Equal(10))
		})

		It("should load full config", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Site.ModalButtonText).To(Equal("OK"))
			Expect(cfg.Source.Timeout.D()).To(Equal(45 * time.Second))
			Expect(cfg.Browser.Headless).To(BeFalse())
			Expect(cfg.Browser.SlowMotion.D()).To(Equal(250 * time.Millisecond))
			Expect(cfg.Submission.MaxSubmitAttempts).To(Equal(5))
			Expect(cfg.Submission.OnFailure).To(Equal(config.FailureSkip))
			Expect(cfg.Output.ArchiveInclude).To(ConsistOf("*.pdf", "*.png"))
			Expect(cfg.Cleanup.RemoveSourceFile).To(BeTrue())
			Expect(cfg.Metrics.Textfile).To(Equal("out/orderbot.prom"))
			Expect(cfg.Receipt.Title).To(Equal("RobotSpareBin receipt"))
		})

		It("should return error for nonexistent file", func() {
			_, err := config.Load("nonexistent.yaml")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, domain.ErrConfig)).To(BeTrue())
		})

		It("should return error for invalid YAML", func() {
			tmpFile := filepath.Join(GinkgoT().TempDir(), "invalid_orderbot.yaml")
			Expect(os.WriteFile(tmpFile, []byte("{{invalid yaml}}"), 0644)).To(Succeed())

			_, err := config.Load(tmpFile)
			Expect(err).To(HaveOccurred())
		})

		It("should reject malformed durations", func() {
			tmpFile := filepath.Join(GinkgoT().TempDir(), "bad_duration.yaml")
			Expect(os.WriteFile(tmpFile, []byte("submission:\n  receipt_timeout: soon\n"), 0644)).To(Succeed())

			_, err := config.Load(tmpFile)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("invalid duration"))
		})
	})

	Describe("LoadOrDefault", func() {
		It("should fall back to defaults when the file is missing", func() {
			cfg, err := config.LoadOrDefault(filepath.Join(GinkgoT().TempDir(), "absent.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Output.Directory).To(Equal("output"))
		})
	})

	Describe("DefaultConfig", func() {
		It("should return config with sensible defaults", func() {
			cfg := config.DefaultConfig()
			Expect(cfg.Site.ModalButtonText).To(Equal("I guess so..."))
			Expect(cfg.Source.Columns.Head).To(Equal("Head"))
			Expect(cfg.Browser.SlowMotion.D()).To(Equal(200 * time.Millisecond))
			Expect(cfg.Submission.ReceiptTimeout.D()).To(Equal(30 * time.Second))
			Expect(cfg.Submission.AdvanceTimeout.D()).To(Equal(5 * time.Second))
			Expect(cfg.Submission.OnFailure).To(Equal(config.FailureAbort))
			Expect(cfg.ReceiptsPath()).To(Equal(filepath.Join("output", "receipts")))
			Expect(cfg.ArchivePath()).To(Equal(filepath.Join("output", "receipts.zip")))
			Expect(cfg.SourcePath()).To(Equal(filepath.Join("output", "orders.csv")))
			Expect(config.Validate(cfg)).To(Succeed())
		})
	})

	Describe("ApplyEnv", func() {
		It("should override values from ORDERBOT_ variables", func() {
			os.Setenv("ORDERBOT_SOURCE_URL", "http://127.0.0.1:9999/orders.csv")
			os.Setenv("ORDERBOT_HEADLESS", "false")
			DeferCleanup(os.Unsetenv, "ORDERBOT_SOURCE_URL")
			DeferCleanup(os.Unsetenv, "ORDERBOT_HEADLESS")

			cfg := config.DefaultConfig()
			config.ApplyEnv(cfg)
			Expect(cfg.Source.URL).To(Equal("http://127.0.0.1:9999/orders.csv"))
			Expect(cfg.Browser.Headless).To(BeFalse())
			Expect(cfg.Site.OrderURL).To(Equal(config.DefaultConfig().Site.OrderURL))
		})
	})

	Describe("Validate", func() {
		It("should pass for valid config", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(config.Validate(cfg)).To(Succeed())
		})

		It("should fail if the order url is not http", func() {
			cfg := config.DefaultConfig()
			cfg.Site.OrderURL = "ftp://example.com"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("site.order_url"))
		})

		It("should fail if the body selector lacks the placeholder", func() {
			cfg := config.DefaultConfig()
			cfg.Site.Selectors.Body = "#id-body"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("{value}"))
		})

		It("should fail if max submit attempts is zero", func() {
			cfg := config.DefaultConfig()
			cfg.Submission.MaxSubmitAttempts = 0
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("max_submit_attempts"))
		})

		It("should fail for an unknown failure policy", func() {
			cfg := config.DefaultConfig()
			cfg.Submission.OnFailure = "retry"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("on_failure"))
		})

		DescribeTable("should keep receipts_dir inside the output directory",
			func(dir string) {
				cfg := config.DefaultConfig()
				cfg.Output.ReceiptsDir = dir
				err := config.Validate(cfg)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("output.receipts_dir"))
			},
			Entry("parent", ".."),
			Entry("output directory itself", "."),
			Entry("escaping after a subdirectory", "a/../.."),
			Entry("collapsing to the output directory", "a/.."),
			Entry("absolute", "/tmp/receipts"),
			Entry("empty", ""),
		)

		It("should accept a nested receipts_dir", func() {
			cfg := config.DefaultConfig()
			cfg.Output.ReceiptsDir = "run/receipts"
			Expect(config.Validate(cfg)).To(Succeed())
		})

		It("should keep the archive inside the output directory", func() {
			cfg := config.DefaultConfig()
			cfg.Output.ArchiveName = "../x.zip"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("output.archive_name must be a relative path"))
		})

		It("should report problems in a stable order", func() {
			cfg := config.DefaultConfig()
			cfg.Site.Selectors.Head = ""
			cfg.Site.Selectors.OrderAnother = ""
			cfg.Submission.ModalTimeout = 0
			cfg.Submission.AdvanceTimeout = 0

			first := config.Validate(cfg).Error()
			for i := 0; i < 20; i++ {
				Expect(config.Validate(cfg).Error()).To(Equal(first))
			}
			Expect(first).To(MatchRegexp(`selectors\.head .*selectors\.order_another .*modal_timeout .*advance_timeout`))
		})

		It("should fail if archive name doesn't end with .zip", func() {
			cfg := config.DefaultConfig()
			cfg.Output.ArchiveName = "receipts.tar"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("archive_name"))
		})

		It("should fail for invalid log level", func() {
			cfg := config.DefaultConfig()
			cfg.Logging.Level = "verbose"
			err := config.Validate(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logging.level"))
			Expect(errors.Is(err, domain.ErrConfig)).To(BeTrue())
		})
	})
})
