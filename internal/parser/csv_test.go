package parser_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
	"github.com/fjglira/GoRPA-OrderBot/internal/parser"
)

var _ = Describe("CSVParser", func() {
	var p *parser.CSVParser

	BeforeEach(func() {
		p = parser.NewCSVParser(parser.Columns{
			Reference: "Order number",
			Head:      "Head",
			Body:      "Body",
			Legs:      "Legs",
			Address:   "Address",
		})
	})

	readFixture := func(name string) []byte {
		content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "orders", name))
		Expect(err).ToNot(HaveOccurred())
		return content
	}

	Describe("Parse two_orders.csv", func() {
		It("should return the records in file order", func() {
			records, err := p.Parse("two_orders.csv", readFixture("two_orders.csv"))
			Expect(err).ToNot(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0]).To(Equal(domain.OrderRecord{
				Row: 1, Reference: "1", Head: "1", Body: "2", Legs: "3", Address: "A St",
			}))
			Expect(records[1].Address).To(Equal("B St"))
			Expect(records[1].Row).To(Equal(2))
		})
	})

	It("should not depend on column order", func() {
		records, err := p.Parse("reordered_columns.csv", readFixture("reordered_columns.csv"))
		Expect(err).ToNot(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Head).To(Equal("3"))
		Expect(records[0].Body).To(Equal("6"))
		Expect(records[0].Legs).To(Equal("5"))
		Expect(records[0].Address).To(Equal("Address 123, Apt 4"))
		Expect(records[0].Reference).To(BeEmpty())
	})

	It("should fail when a required column is missing", func() {
		_, err := p.Parse("missing_column.csv", readFixture("missing_column.csv"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring(`"Legs"`))
		Expect(errors.Is(err, domain.ErrSource)).To(BeTrue())
	})

	It("should fail on an empty file", func() {
		_, err := p.Parse("empty.csv", nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("empty"))
	})

	It("should keep rows with an empty field for the form to judge", func() {
		records, err := p.Parse("blank.csv", []byte("Head,Body,Legs,Address\n1,2,,A St\n3,3,3,C St\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Legs).To(BeEmpty())
		Expect(records[1].Row).To(Equal(2))
	})

	It("should fail on a malformed row", func() {
		_, err := p.Parse("ragged.csv", []byte("Head,Body,Legs,Address\n1,2,3\n"))
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, domain.ErrSource)).To(BeTrue())
	})

	It("should accept a UTF-8 byte order mark", func() {
		records, err := p.Parse("bom.csv", []byte("\xef\xbb\xbfHead,Body,Legs,Address\n1,2,3,A St\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(records).To(HaveLen(1))
	})
})
