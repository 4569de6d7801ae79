package receipt

import (
	"context"
	"html/template"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/GoRPA-OrderBot/internal/browser"
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
	tmpl "github.com/fjglira/GoRPA-OrderBot/internal/template"
)

// Writer produces the receipt artifacts of confirmed orders.
type Writer interface {
	Write(ctx context.Context, page browser.Page, rec domain.OrderRecord, orderNumber, markup string) (domain.Receipt, error)
}

// DefaultWriter renders receipts through a template engine and the session's
// PDF printer, then appends the robot preview screenshot.
type DefaultWriter struct {
	dir                string
	screenshotSelector string
	title              string
	engine             tmpl.TemplateEngine
	log                logrus.FieldLogger
	now                func() time.Time
}

// NewWriter creates a Writer storing receipts in dir. screenshotSelector is
// the element captured as the robot image.
func NewWriter(dir, screenshotSelector, title string, engine tmpl.TemplateEngine, log logrus.FieldLogger) *DefaultWriter {
	return &DefaultWriter{
		dir:                dir,
		screenshotSelector: screenshotSelector,
		title:              title,
		engine:             engine,
		log:                log,
		now:                time.Now,
	}
}

// Write stores order_<n>.pdf and order_<n>.png and merges the screenshot
// into the PDF.
func (w *DefaultWriter) Write(ctx context.Context, page browser.Page, rec domain.OrderRecord, orderNumber, markup string) (domain.Receipt, error) {
	r := PathsFor(w.dir, orderNumber)

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return r, w.fail(r.PDFPath, "failed to create receipts directory", err)
	}

	doc, err := w.engine.Render(tmpl.ReceiptData{
		Title:       w.title,
		OrderNumber: orderNumber,
		Reference:   rec.Reference,
		CapturedAt:  w.now(),
		Body:        template.HTML(Sanitize(markup)),
	})
	if err != nil {
		return r, w.fail(r.PDFPath, "failed to render receipt document", err)
	}

	pdf, err := page.RenderPDF(ctx, doc)
	if err != nil {
		return r, w.fail(r.PDFPath, "failed to print receipt", err)
	}
	if err := os.WriteFile(r.PDFPath, pdf, 0644); err != nil {
		return r, w.fail(r.PDFPath, "failed to write receipt", err)
	}

	png, err := page.Screenshot(ctx, w.screenshotSelector)
	if err != nil {
		return r, w.fail(r.ScreenshotPath, "failed to capture robot preview", err)
	}
	if err := os.WriteFile(r.ScreenshotPath, png, 0644); err != nil {
		return r, w.fail(r.ScreenshotPath, "failed to write screenshot", err)
	}

	if err := Embed(r.ScreenshotPath, r.PDFPath); err != nil {
		return r, w.fail(r.PDFPath, "failed to embed screenshot", err)
	}

	w.log.WithFields(logrus.Fields{
		"row":          rec.Row,
		"order_number": orderNumber,
		"pdf":          r.PDFPath,
	}).Debug("Receipt written")
	return r, nil
}

func (w *DefaultWriter) fail(subject, message string, cause error) error {
	return domain.NewError(domain.ErrReceipt, "receipt", subject, message, cause)
}
