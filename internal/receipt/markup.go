package receipt

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

var (
	receiptPolicyOnce sync.Once
	receiptPolicy     *bluemonday.Policy
)

// ParseOrderNumber extracts the order number shown in the element matched by
// selector inside the receipt markup.
func ParseOrderNumber(markup, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", domain.NewError(domain.ErrSubmissionTimeout, "submit", selector, "failed to parse receipt markup", err)
	}

	number := strings.TrimSpace(doc.Find(selector).First().Text())
	if number == "" {
		return "", domain.NewError(domain.ErrSubmissionTimeout, "submit", selector, "receipt shows no order number", nil)
	}
	return number, nil
}

// Sanitize strips scripts, event handlers and anything else that should not
// be printed from receipt markup copied off the live page.
func Sanitize(markup string) string {
	return strings.TrimSpace(receiptSanitizer().Sanitize(markup))
}

func receiptSanitizer() *bluemonday.Policy {
	receiptPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		receiptPolicy = policy
	})
	return receiptPolicy
}
