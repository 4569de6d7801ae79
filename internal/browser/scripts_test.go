package browser_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/GoRPA-OrderBot/internal/browser"
)

var _ = Describe("Scripts", func() {
	DescribeTable("XPathLiteral",
		func(in, want string) {
			Expect(browser.XPathLiteral(in)).To(Equal(want))
		},
		Entry("plain", "I guess so...", `"I guess so..."`),
		Entry("double quote", `say "hi"`, `'say "hi"'`),
		Entry("both quotes", `it's "x"`, `concat("it's ", '"', "x", '"')`),
		Entry("lone double quote with apostrophe", `'"`, `concat("'", '"')`),
	)

	It("should match buttons by normalized text", func() {
		Expect(browser.TextButtonXPath("OK")).To(Equal(`//*[self::button or self::a or @role='button'][normalize-space(.)="OK"]`))
	})

	It("should JSON-quote script arguments", func() {
		script := browser.SetValueScript(`input[type="number"]`, "3")
		Expect(script).To(ContainSubstring(`("input[type=\"number\"]", "3")`))
	})

	It("should pass selectors as a JSON array", func() {
		script := browser.VisibleIndexScript([]string{"div.alert", "#receipt"})
		Expect(script).To(HaveSuffix(`(["div.alert","#receipt"])`))
	})
})
