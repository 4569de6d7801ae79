package submitter

import (
	"time"

	"github.com/fjglira/GoRPA-OrderBot/internal/config"
)

// Options holds the form contract and the bounds of every wait.
type Options struct {
	Selectors       config.SelectorsConfig
	ModalButtonText string

	ModalTimeout      time.Duration
	PreviewTimeout    time.Duration
	AlertCheckTimeout time.Duration
	ReceiptTimeout    time.Duration
	AdvanceTimeout    time.Duration
	MaxSubmitAttempts int
	OnFailure         string
}

// OptionsFromConfig extracts the submitter options from a validated Config.
func OptionsFromConfig(cfg *config.Config) Options {
	sub := cfg.Submission
	return Options{
		Selectors:         cfg.Site.Selectors,
		ModalButtonText:   cfg.Site.ModalButtonText,
		ModalTimeout:      sub.ModalTimeout.D(),
		PreviewTimeout:    sub.PreviewTimeout.D(),
		AlertCheckTimeout: sub.AlertCheckTimeout.D(),
		ReceiptTimeout:    sub.ReceiptTimeout.D(),
		AdvanceTimeout:    sub.AdvanceTimeout.D(),
		MaxSubmitAttempts: sub.MaxSubmitAttempts,
		OnFailure:         sub.OnFailure,
	}
}
