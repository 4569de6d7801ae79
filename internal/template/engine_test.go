package template_test

import (
	"html/template"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tmpl "github.com/fjglira/GoRPA-OrderBot/internal/template"
)

var _ = Describe("TemplateEngine", func() {
	var engine *tmpl.DefaultEngine

	BeforeEach(func() {
		var err error
		engine, err = tmpl.NewEngine("", "receipt_default")
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("ListTemplates", func() {
		It("should list the built-in template", func() {
			Expect(engine.ListTemplates()).To(ContainElement("receipt_default"))
		})
	})

	Describe("Render", func() {
		It("should wrap the receipt body in a document", func() {
			out, err := engine.Render(tmpl.ReceiptData{
				OrderNumber: "RSB-ROBO-ORDER-42",
				Reference:   "7",
				CapturedAt:  time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
				Body:        template.HTML(`<p class="badge badge-success">RSB-ROBO-ORDER-42</p>`),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(HavePrefix("<!DOCTYPE html>"))
			Expect(out).To(ContainSubstring("<title>Robot order receipt</title>"))
			Expect(out).To(ContainSubstring(`<p class="badge badge-success">RSB-ROBO-ORDER-42</p>`))
			Expect(out).To(ContainSubstring("source ref 7"))
			Expect(out).To(ContainSubstring("2026-10-17 09:30:00 UTC"))
		})

		It("should escape plain fields", func() {
			out, err := engine.Render(tmpl.ReceiptData{OrderNumber: "<b>1</b>"})
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("&lt;b&gt;1&lt;/b&gt;"))
		})
	})

	Describe("NewEngine", func() {
		It("should load templates from a directory", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "plain.html.tmpl"), []byte(`<html>{{ .OrderNumber }}</html>`), 0644)).To(Succeed())

			custom, err := tmpl.NewEngine(dir, "plain")
			Expect(err).ToNot(HaveOccurred())
			Expect(custom.ListTemplates()).To(Equal([]string{"plain", "receipt_default"}))

			out, err := custom.Render(tmpl.ReceiptData{OrderNumber: "9"})
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("<html>9</html>"))
		})

		It("should let a directory template override a built-in one", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "receipt_default.html.tmpl"), []byte(`<p>{{ .OrderNumber }}</p>`), 0644)).To(Succeed())

			custom, err := tmpl.NewEngine(dir, "receipt_default")
			Expect(err).ToNot(HaveOccurred())
			Expect(custom.ListTemplates()).To(Equal([]string{"receipt_default"}))

			out, err := custom.Render(tmpl.ReceiptData{OrderNumber: "5"})
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("<p>5</p>"))
		})

		It("should fail for an unknown default template", func() {
			_, err := tmpl.NewEngine("", "fancy")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("receipt_default"))
		})

		It("should fail for a broken template", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "broken.html.tmpl"), []byte(`{{ .Nope `), 0644)).To(Succeed())

			_, err := tmpl.NewEngine(dir, "receipt_default")
			Expect(err).To(HaveOccurred())
		})
	})
})
