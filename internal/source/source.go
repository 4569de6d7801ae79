package source

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
	"github.com/fjglira/GoRPA-OrderBot/internal/parser"
)

// Source produces the ordered list of orders for a run.
type Source interface {
	Load(ctx context.Context) ([]domain.OrderRecord, error)
}

// RemoteSource downloads the orders file, keeps a local copy and parses it.
type RemoteSource struct {
	url        string
	localPath  string
	downloader *Downloader
	parser     parser.Parser
	log        logrus.FieldLogger
}

// NewRemoteSource creates a RemoteSource.
func NewRemoteSource(url, localPath string, d *Downloader, p parser.Parser, log logrus.FieldLogger) *RemoteSource {
	return &RemoteSource{
		url:        url,
		localPath:  localPath,
		downloader: d,
		parser:     p,
		log:        log,
	}
}

// Load fetches and parses the orders file. There is no partial mode: any
// failure aborts with an ErrSource error.
func (s *RemoteSource) Load(ctx context.Context) ([]domain.OrderRecord, error) {
	s.log.WithField("url", s.url).Debug("Downloading orders file")
	content, err := s.downloader.Download(ctx, s.url, s.localPath)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion(domain.ErrSource, "source", s.url,
			"failed to download orders file",
			"check source.url and network access",
			err)
	}
	s.log.WithField("path", s.localPath).Debugf("Stored orders file (%d bytes)", len(content))

	records, err := s.parser.Parse(s.localPath, content)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		s.log.Warn("Orders file contains no data rows")
	}
	s.log.Infof("Loaded %d order(s)", len(records))
	return records, nil
}
