package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// visibleIndexJS returns the index of the first visible selector, or -1.
const visibleIndexJS = `(function(selectors) {
	for (let i = 0; i < selectors.length; i++) {
		const el = document.querySelector(selectors[i]);
		if (!el) continue;
		const style = window.getComputedStyle(el);
		if (el.offsetHeight !== 0 && style.display !== 'none' && style.visibility !== 'hidden' && style.opacity !== '0') {
			return i;
		}
	}
	return -1;
})(%s)`

// setValueJS assigns through the native value setter so that framework
// change tracking sees the update, then fires input and change.
const setValueJS = `(function(selector, value) {
	const el = document.querySelector(selector);
	if (!el) return false;
	const desc = Object.getOwnPropertyDescriptor(Object.getPrototypeOf(el), 'value');
	if (desc && desc.set) { desc.set.call(el, value); } else { el.value = value; }
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return el.value === value;
})(%s, %s)`

const isCheckedJS = `(function(selector) {
	const el = document.querySelector(selector);
	return !!(el && el.checked);
})(%s)`

func jsArg(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func visibleIndexScript(selectors []string) string {
	return fmt.Sprintf(visibleIndexJS, jsArg(selectors))
}

func setValueScript(selector, value string) string {
	return fmt.Sprintf(setValueJS, jsArg(selector), jsArg(value))
}

func isCheckedScript(selector string) string {
	return fmt.Sprintf(isCheckedJS, jsArg(selector))
}

// textButtonXPath matches a button or link whose normalized text is text.
func textButtonXPath(text string) string {
	return fmt.Sprintf("//*[self::button or self::a or @role='button'][normalize-space(.)=%s]", xpathLiteral(text))
}

// xpathLiteral quotes s for use in an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	if len(quoted) == 1 {
		quoted = append(quoted, `""`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
