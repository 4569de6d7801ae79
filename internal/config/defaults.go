package config

import "time"

// DefaultConfig returns a Config targeting the RobotSpareBin order site.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			OrderURL:        "https://robotsparebinindustries.com/#/robot-order",
			ModalButtonText: "I guess so...",
			Selectors: SelectorsConfig{
				Head:         "#head",
				Body:         "#id-body-{value}",
				Legs:         `input[type="number"]`,
				Address:      "#address",
				Preview:      "#preview",
				PreviewImage: "#robot-preview-image",
				Order:        "#order",
				Alert:        "div.alert.alert-danger",
				Receipt:      "#receipt",
				OrderNumber:  ".badge-success",
				OrderAnother: "#order-another",
			},
		},
		Source: SourceConfig{
			URL:       "https://robotsparebinindustries.com/orders.csv",
			LocalFile: "orders.csv",
			Timeout:   Duration(30 * time.Second),
			MaxBytes:  10 << 20,
			Columns: ColumnsConfig{
				Reference: "Order number",
				Head:      "Head",
				Body:      "Body",
				Legs:      "Legs",
				Address:   "Address",
			},
		},
		Browser: BrowserConfig{
			Headless:      true,
			SlowMotion:    Duration(200 * time.Millisecond),
			ActionTimeout: Duration(60 * time.Second),
			WindowWidth:   1280,
			WindowHeight:  1024,
		},
		Submission: SubmissionConfig{
			ModalTimeout:      Duration(3 * time.Second),
			PreviewTimeout:    Duration(30 * time.Second),
			AlertCheckTimeout: Duration(5 * time.Second),
			MaxSubmitAttempts: 10,
			ReceiptTimeout:    Duration(30 * time.Second),
			AdvanceTimeout:    Duration(5 * time.Second),
			OnFailure:         FailureAbort,
		},
		Receipt: ReceiptConfig{
			Template: "receipt_default",
			Title:    "Robot order receipt",
		},
		Output: OutputConfig{
			Directory:      "output",
			ReceiptsDir:    "receipts",
			ArchiveName:    "receipts.zip",
			ArchiveInclude: []string{"**"},
			CleanBeforeRun: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
