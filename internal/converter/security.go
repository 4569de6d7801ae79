package converter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateSelectorValue checks that a value can be spliced into a CSS id
// selector without changing its meaning.
func ValidateSelectorValue(value string) error {
	if value == "" {
		return fmt.Errorf("selector value must not be empty")
	}
	if i := strings.IndexFunc(value, func(r rune) bool {
		return !(r == '-' || r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'))
	}); i >= 0 {
		r, _ := utf8.DecodeRuneInString(value[i:])
		return fmt.Errorf("value %q contains %q, which is not allowed in a selector", value, r)
	}
	return nil
}
