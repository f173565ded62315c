package parser_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/pagecheck/internal/parser"
)

var _ = Describe("PlaintextParser", func() {
	var p *parser.PlaintextParser

	BeforeEach(func() {
		var err error
		p, err = parser.NewPlaintextParser(`^\s*@begin\((\S+)(?:\s+(.*))?\)\s*$`, `^\s*@end\s*$`)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should reject invalid patterns", func() {
		_, err := parser.NewPlaintextParser(`(`, `@end`)
		Expect(err).To(MatchError(ContainSubstring("block_start")))
	})

	Describe("Parse sample.txt", func() {
		var content []byte

		BeforeEach(func() {
			content = readFixture("suites", "sample.txt")
		})

		It("should extract blocks between @begin and @end", func() {
			doc, err := p.Parse("sample.txt", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.FileType).To(Equal("plaintext"))
			Expect(doc.Blocks).To(HaveLen(2))
			Expect(doc.Blocks[0].Content).To(Equal("navigate /content/sample/en.html\nvisible .helloworld"))
			Expect(doc.Blocks[0].LineNumber).To(Equal(10))
		})

		It("should detect underlined headings", func() {
			doc, err := p.Parse("sample.txt", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Headings).To(HaveLen(3))
			Expect(doc.Headings[0].Level).To(Equal(1))
			Expect(doc.Blocks[0].Context).To(Equal("English page"))
			Expect(doc.Blocks[1].Context).To(Equal("French page"))
		})

		It("should read markers and attributes", func() {
			doc, err := p.Parse("sample.txt", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Metadata).To(HaveKeyWithValue(parser.MetaSuitePath, "/apps/sample/tests/PlaintextTests.js"))
			Expect(doc.Blocks[1].Attributes).To(HaveKeyWithValue("note", "second case"))
		})
	})
})
