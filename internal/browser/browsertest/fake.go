// Package browsertest provides an in-memory order form for tests.
package browsertest

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/fjglira/GoRPA-OrderBot/internal/browser"
	"github.com/fjglira/GoRPA-OrderBot/internal/config"
)

// FakePage simulates the robot order form. Exported fields configure
// behaviour and must be set before use; recorded fields are read after.
type FakePage struct {
	Selectors config.SelectorsConfig
	ModalText string

	// Rejections[i] is how many submit clicks of the i-th order show the
	// danger alert before it clears. A negative value never clears.
	Rejections []int
	// NoOrderAnother removes the "order another" control.
	NoOrderAnother bool
	// PreviewBroken keeps the preview image from ever appearing.
	PreviewBroken bool
	// ReceiptNeverShows keeps the receipt hidden after a clean submission.
	ReceiptNeverShows bool
	// ModalShown is whether the intro modal currently covers the form.
	ModalShown bool
	// OrderNumbers overrides the generated order numbers, by order index.
	OrderNumbers []string

	mu sync.Mutex

	order        int
	submitClicks int
	previewShown bool
	alertShown   bool
	receiptShown bool
	values       map[string]string

	// Recorded.
	Navigations     []string
	Reloads         int
	ModalDismissals int
	AdvanceClicks   int
	SubmitClicks    []int // submit clicks per finished order
	RenderedDocs    []string
	Closed          int
}

var _ browser.Page = (*FakePage)(nil)

// NewFakePage returns a page using the default selectors with the modal shown.
func NewFakePage() *FakePage {
	cfg := config.DefaultConfig()
	return &FakePage{
		Selectors:  cfg.Site.Selectors,
		ModalText:  cfg.Site.ModalButtonText,
		ModalShown: true,
	}
}

func (f *FakePage) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Navigations = append(f.Navigations, url)
	return ctx.Err()
}

func (f *FakePage) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reloads++
	f.resetLocked()
	return ctx.Err()
}

// resetLocked finishes the current order and shows the modal again.
func (f *FakePage) resetLocked() {
	f.SubmitClicks = append(f.SubmitClicks, f.submitClicks)
	f.order++
	f.submitClicks = 0
	f.previewShown = false
	f.alertShown = false
	f.receiptShown = false
	f.values = nil
	f.ModalShown = true
}

func (f *FakePage) blockedLocked(selector string) error {
	if f.ModalShown {
		return fmt.Errorf("%s is covered by the modal dialog", selector)
	}
	return nil
}

func (f *FakePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.blockedLocked(selector); err != nil {
		return err
	}

	switch selector {
	case f.Selectors.Preview:
		f.previewShown = !f.PreviewBroken
	case f.Selectors.Order:
		f.submitClicks++
		f.alertShown = f.rejectedLocked()
		f.receiptShown = !f.alertShown && !f.ReceiptNeverShows
	case f.Selectors.OrderAnother:
		if f.NoOrderAnother || !f.receiptShown {
			return fmt.Errorf("%s not visible within %s: %w", selector, timeout, browser.ErrNotFound)
		}
		f.AdvanceClicks++
		f.resetLocked()
	}
	return ctx.Err()
}

func (f *FakePage) rejectedLocked() bool {
	if f.order >= len(f.Rejections) {
		return false
	}
	n := f.Rejections[f.order]
	return n < 0 || f.submitClicks <= n
}

func (f *FakePage) ClickText(ctx context.Context, text string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if text != f.ModalText || !f.ModalShown {
		return fmt.Errorf("button %q not visible within %s: %w", text, timeout, browser.ErrNotFound)
	}
	f.ModalShown = false
	f.ModalDismissals++
	return ctx.Err()
}

func (f *FakePage) SelectOption(ctx context.Context, selector, value string) error {
	return f.setValue(ctx, selector, value)
}

func (f *FakePage) Check(ctx context.Context, selector string) error {
	return f.setValue(ctx, selector, "checked")
}

func (f *FakePage) Fill(ctx context.Context, selector, value string) error {
	return f.setValue(ctx, selector, value)
}

func (f *FakePage) setValue(ctx context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.blockedLocked(selector); err != nil {
		return err
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[selector] = value
	return ctx.Err()
}

// Value returns what was last entered into selector for the current order.
func (f *FakePage) Value(selector string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[selector]
}

func (f *FakePage) visibleLocked(selector string) bool {
	switch selector {
	case f.Selectors.PreviewImage:
		return f.previewShown
	case f.Selectors.Alert:
		return f.alertShown
	case f.Selectors.Receipt:
		return f.receiptShown
	}
	return true
}

func (f *FakePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.visibleLocked(selector) {
		return fmt.Errorf("%s not visible within %s: %w", selector, timeout, browser.ErrNotFound)
	}
	return ctx.Err()
}

func (f *FakePage) WaitAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sel := range selectors {
		if f.visibleLocked(sel) {
			return sel, ctx.Err()
		}
	}
	return "", fmt.Errorf("none of %s visible within %s: %w", strings.Join(selectors, ", "), timeout, browser.ErrNotFound)
}

// OrderNumber returns the order number the receipt of order index i shows.
func (f *FakePage) OrderNumber(i int) string {
	if i < len(f.OrderNumbers) {
		return f.OrderNumbers[i]
	}
	return fmt.Sprintf("RSB-ROBO-ORDER-%d", 1000+i)
}

func (f *FakePage) InnerHTML(ctx context.Context, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selector != f.Selectors.Receipt || !f.receiptShown {
		return "", fmt.Errorf("%s: %w", selector, browser.ErrNotFound)
	}
	var b strings.Builder
	b.WriteString(`<h3>Receipt</h3><div>2026-10-17</div>`)
	fmt.Fprintf(&b, `<p class="badge badge-success">%s</p>`, html.EscapeString(f.OrderNumber(f.order)))
	fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(f.values[f.Selectors.Address]))
	fmt.Fprintf(&b, `<div id="parts" class="alert alert-light"><div>Head: %s</div><div>Legs: %s</div></div>`,
		html.EscapeString(f.values[f.Selectors.Head]), html.EscapeString(f.values[f.Selectors.Legs]))
	b.WriteString(`<script>alert("x")</script>`)
	return b.String(), ctx.Err()
}

func (f *FakePage) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	f.mu.Lock()
	shown := f.visibleLocked(selector)
	f.mu.Unlock()
	if !shown {
		return nil, fmt.Errorf("%s: %w", selector, browser.ErrNotFound)
	}
	return PNG(120, 80)
}

func (f *FakePage) RenderPDF(ctx context.Context, doc string) ([]byte, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, fmt.Errorf("empty document")
	}
	f.mu.Lock()
	f.RenderedDocs = append(f.RenderedDocs, doc)
	f.mu.Unlock()
	return PDF(1)
}

func (f *FakePage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed++
	return nil
}

// PNG returns an opaque width x height PNG.
func PNG(width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 90, B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF returns an A4 document with the given number of text pages.
func PDF(pages int) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 14)
		pdf.Cell(0, 20, fmt.Sprintf("Receipt page %d", i+1))
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
