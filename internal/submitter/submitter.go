// Package submitter drives the order form for each record: fill, preview,
// submit until the form accepts, capture the receipt and move on.
package submitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/GoRPA-OrderBot/internal/browser"
	"github.com/fjglira/GoRPA-OrderBot/internal/config"
	"github.com/fjglira/GoRPA-OrderBot/internal/converter"
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
	"github.com/fjglira/GoRPA-OrderBot/internal/receipt"
)

// Submitter places orders through the session page.
type Submitter interface {
	DismissModal(ctx context.Context, page browser.Page) error
	Submit(ctx context.Context, page browser.Page, rec domain.OrderRecord) (domain.OrderOutcome, error)
	ProcessAll(ctx context.Context, page browser.Page, records []domain.OrderRecord) ([]domain.OrderOutcome, error)
}

// OrderSubmitter implements Submitter.
type OrderSubmitter struct {
	opts      Options
	converter converter.Converter
	receipts  receipt.Writer
	log       logrus.FieldLogger
}

// New creates an OrderSubmitter.
func New(opts Options, conv converter.Converter, receipts receipt.Writer, log logrus.FieldLogger) *OrderSubmitter {
	return &OrderSubmitter{opts: opts, converter: conv, receipts: receipts, log: log}
}

// DismissModal closes the intro dialog. A dialog that does not show up
// within the modal timeout is not an error.
func (s *OrderSubmitter) DismissModal(ctx context.Context, page browser.Page) error {
	err := page.ClickText(ctx, s.opts.ModalButtonText, s.opts.ModalTimeout)
	switch {
	case err == nil:
		s.log.Debug("Modal dismissed")
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, browser.ErrNotFound):
		s.log.WithField("button", s.opts.ModalButtonText).Debug("No modal to dismiss")
		return nil
	default:
		return domain.NewError(domain.ErrSession, "session", s.opts.ModalButtonText, "failed to dismiss modal", err)
	}
}

// Submit takes one record from an empty form to the next empty form. The
// returned outcome is filled in whether or not an error is returned.
func (s *OrderSubmitter) Submit(ctx context.Context, page browser.Page, rec domain.OrderRecord) (domain.OrderOutcome, error) {
	start := time.Now()
	out := domain.OrderOutcome{Record: rec, Status: domain.StatusFailed}
	log := s.log.WithField("row", rec.Row)

	err := s.submit(ctx, page, rec, &out, log)
	out.Duration = time.Since(start)
	if err != nil {
		out.Err = err
		return out, err
	}
	out.Status = domain.StatusSucceeded
	return out, nil
}

func (s *OrderSubmitter) submit(ctx context.Context, page browser.Page, rec domain.OrderRecord, out *domain.OrderOutcome, log logrus.FieldLogger) error {
	state := StateFilling
	var markup, orderNumber string

	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.WithField("state", state).Debug("Order state")

		switch state {
		case StateFilling:
			if err := s.fill(ctx, page, rec); err != nil {
				return err
			}
			state = StatePreviewing

		case StatePreviewing:
			if err := page.Click(ctx, s.opts.Selectors.Preview, 0); err != nil {
				return s.stepError(ctx, state, rec, "failed to request preview", err)
			}
			if err := page.WaitVisible(ctx, s.opts.Selectors.PreviewImage, s.opts.PreviewTimeout); err != nil {
				return s.stepError(ctx, state, rec, fmt.Sprintf("robot preview did not appear within %s", s.opts.PreviewTimeout), err)
			}
			state = StateSubmitting

		case StateSubmitting:
			if out.SubmitClicks >= s.opts.MaxSubmitAttempts {
				return domain.NewErrorWithSuggestion(domain.ErrSubmissionRejected, "submit", rec.Label(),
					fmt.Sprintf("order still rejected after %d submit attempts", out.SubmitClicks),
					"raise submission.max_submit_attempts or set submission.on_failure to skip", nil)
			}
			if err := page.Click(ctx, s.opts.Selectors.Order, 0); err != nil {
				return s.stepError(ctx, state, rec, "failed to click order", err)
			}
			out.SubmitClicks++
			state = StateValidating

		case StateValidating:
			rejected, err := s.rejected(ctx, page)
			if err != nil {
				return s.stepError(ctx, state, rec, "failed to check order result", err)
			}
			if rejected {
				log.WithField("attempt", out.SubmitClicks).Warn("Order rejected by the form, resubmitting")
				state = StateSubmitting
				continue
			}
			state = StateConfirming

		case StateConfirming:
			if err := page.WaitVisible(ctx, s.opts.Selectors.Receipt, s.opts.ReceiptTimeout); err != nil {
				return s.stepError(ctx, state, rec, fmt.Sprintf("receipt did not appear within %s", s.opts.ReceiptTimeout), err)
			}
			html, err := page.InnerHTML(ctx, s.opts.Selectors.Receipt)
			if err != nil {
				return s.stepError(ctx, state, rec, "failed to read receipt", err)
			}
			n, err := receipt.ParseOrderNumber(html, s.opts.Selectors.OrderNumber)
			if err != nil {
				return err
			}
			markup, orderNumber = html, n
			log = log.WithField("order_number", orderNumber)
			state = StateReceipting

		case StateReceipting:
			r, err := s.receipts.Write(ctx, page, rec, orderNumber, markup)
			if err != nil {
				return err
			}
			out.Receipt = &r
			state = StateAdvancing

		case StateAdvancing:
			reloaded, err := s.Advance(ctx, page)
			if err != nil {
				return err
			}
			out.AdvanceReload = reloaded
			state = StateDone
		}
	}

	log.WithField("attempts", out.SubmitClicks).Info("Order placed")
	return nil
}

func (s *OrderSubmitter) fill(ctx context.Context, page browser.Page, rec domain.OrderRecord) error {
	plan, err := s.converter.Convert(rec)
	if err != nil {
		return err
	}

	for _, step := range plan.Steps {
		var err error
		switch step.Action {
		case domain.ActionSelect:
			err = page.SelectOption(ctx, step.Selector, step.Value)
		case domain.ActionCheck:
			err = page.Check(ctx, step.Selector)
		case domain.ActionFill:
			err = page.Fill(ctx, step.Selector, step.Value)
		default:
			err = fmt.Errorf("unknown form action %q", step.Action)
		}
		if err != nil {
			return s.stepError(ctx, StateFilling, rec, fmt.Sprintf("failed to set %s", step.Field), err)
		}
	}
	return nil
}

// rejected reports whether the danger alert is showing after a submit. The
// check gives up after the alert check timeout; no alert means accepted.
func (s *OrderSubmitter) rejected(ctx context.Context, page browser.Page) (bool, error) {
	sel, err := page.WaitAny(ctx, []string{s.opts.Selectors.Alert, s.opts.Selectors.Receipt}, s.opts.AlertCheckTimeout)
	if err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return sel == s.opts.Selectors.Alert, nil
}

// Advance brings the form back for the next order. It reports whether the
// "order another" control was missing and the page had to be reloaded.
func (s *OrderSubmitter) Advance(ctx context.Context, page browser.Page) (bool, error) {
	reloaded := false
	err := page.Click(ctx, s.opts.Selectors.OrderAnother, s.opts.AdvanceTimeout)
	if err != nil {
		if ctx.Err() != nil || !errors.Is(err, browser.ErrNotFound) {
			return false, domain.NewError(domain.ErrSession, "submit", s.opts.Selectors.OrderAnother, "failed to advance to the next order", err)
		}
		s.log.WithField("selector", s.opts.Selectors.OrderAnother).Warn("Order another control missing, reloading the form")
		if err := page.Reload(ctx); err != nil {
			return false, domain.NewError(domain.ErrSession, "session", "", "failed to reload the order form", err)
		}
		reloaded = true
	}
	return reloaded, s.DismissModal(ctx, page)
}

// ProcessAll submits every record in order. Under the abort policy the first
// failure stops the run; under skip the form is reset and the run goes on.
// Records never attempted are reported as skipped.
func (s *OrderSubmitter) ProcessAll(ctx context.Context, page browser.Page, records []domain.OrderRecord) ([]domain.OrderOutcome, error) {
	outcomes := make([]domain.OrderOutcome, 0, len(records))

	skipRest := func(from int) {
		for _, rec := range records[from:] {
			outcomes = append(outcomes, domain.OrderOutcome{Record: rec, Status: domain.StatusSkipped})
		}
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			skipRest(i)
			return outcomes, err
		}

		out, err := s.Submit(ctx, page, rec)
		outcomes = append(outcomes, out)
		if err == nil {
			continue
		}

		if s.opts.OnFailure != config.FailureSkip || ctx.Err() != nil {
			s.log.WithField("row", rec.Row).WithError(err).Error("Order failed, aborting run")
			skipRest(i + 1)
			return outcomes, err
		}

		s.log.WithField("row", rec.Row).WithError(err).Warn("Order failed, continuing with the next one")
		if rerr := s.reset(ctx, page); rerr != nil {
			skipRest(i + 1)
			return outcomes, rerr
		}
	}

	return outcomes, nil
}

// reset discards a half-finished order by reloading the form.
func (s *OrderSubmitter) reset(ctx context.Context, page browser.Page) error {
	if err := page.Reload(ctx); err != nil {
		return domain.NewError(domain.ErrSession, "session", "", "failed to reload the order form", err)
	}
	return s.DismissModal(ctx, page)
}

// stepError classifies a failed interaction: an element that never showed up
// is a timeout of the order, anything else is a broken session.
func (s *OrderSubmitter) stepError(ctx context.Context, state State, rec domain.OrderRecord, message string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, browser.ErrNotFound) {
		return domain.NewError(domain.ErrSubmissionTimeout, "submit", rec.Label(), fmt.Sprintf("%s: %s", state, message), err)
	}
	return domain.NewError(domain.ErrSession, "submit", rec.Label(), fmt.Sprintf("%s: %s", state, message), err)
}
