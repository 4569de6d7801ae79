package pipeline

import (
	"errors"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/GoRPA-OrderBot/internal/config"
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// Clean removes the artifacts of a previous run: the receipts directory and
// the archive, plus the downloaded orders file when all is set. Missing
// files are not an error.
func Clean(cfg *config.Config, all bool, log logrus.FieldLogger) error {
	targets := []string{cfg.ReceiptsPath(), cfg.ArchivePath()}
	if all {
		targets = append(targets, cfg.SourcePath())
	}

	for _, path := range targets {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		log.WithField("path", path).Debug("Removing")
		if err := os.RemoveAll(path); err != nil {
			return domain.NewErrorWithSuggestion(domain.ErrCleanup, "cleanup", path,
				"failed to remove previous output",
				"check file permissions or set output.clean_before_run to false in orderbot.yaml",
				err)
		}
	}
	return nil
}
