package converter

import (
	"fmt"
	"strings"

	"github.com/fjglira/GoRPA-OrderBot/internal/config"
	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

// bodyPlaceholder is replaced by the record's body value in the body selector.
const bodyPlaceholder = "{value}"

// Converter transforms order records into form plans.
type Converter interface {
	Convert(rec domain.OrderRecord) (domain.FormPlan, error)
}

// DefaultConverter implements Converter.
type DefaultConverter struct {
	selectors config.SelectorsConfig
}

// NewConverter creates a new DefaultConverter.
func NewConverter(selectors config.SelectorsConfig) *DefaultConverter {
	return &DefaultConverter{selectors: selectors}
}

// Convert builds the fill order for one record: head, body, legs, address.
// Values are passed through untouched apart from two checks: every field must
// be present, and the body value must be safe to splice into a selector.
func (c *DefaultConverter) Convert(rec domain.OrderRecord) (domain.FormPlan, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"head", rec.Head}, {"body", rec.Body}, {"legs", rec.Legs}, {"address", rec.Address},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return domain.FormPlan{}, domain.NewError(domain.ErrSubmissionRejected, "convert", rec.Label(),
			fmt.Sprintf("empty %s", strings.Join(missing, ", ")), nil)
	}
	if err := ValidateSelectorValue(rec.Body); err != nil {
		return domain.FormPlan{}, domain.NewError(domain.ErrSubmissionRejected, "convert", rec.Label(), err.Error(), nil)
	}

	return domain.FormPlan{
		Record: rec,
		Steps: []domain.FormStep{
			{Field: "head", Action: domain.ActionSelect, Selector: c.selectors.Head, Value: rec.Head},
			{Field: "body", Action: domain.ActionCheck, Selector: BodySelector(c.selectors.Body, rec.Body), Value: rec.Body},
			{Field: "legs", Action: domain.ActionFill, Selector: c.selectors.Legs, Value: rec.Legs},
			{Field: "address", Action: domain.ActionFill, Selector: c.selectors.Address, Value: rec.Address},
		},
	}, nil
}

// BodySelector expands the body selector pattern for one value.
func BodySelector(pattern, value string) string {
	return strings.ReplaceAll(pattern, bodyPlaceholder, value)
}
