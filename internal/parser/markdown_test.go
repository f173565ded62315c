package parser_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/pagecheck/internal/parser"
)

var _ = Describe("MarkdownParser", func() {
	var p *parser.MarkdownParser

	BeforeEach(func() {
		p = parser.NewMarkdownParser()
	})

	It("should support .md and .markdown", func() {
		Expect(p.SupportedExtensions()).To(ContainElements(".md", ".markdown"))
	})

	Describe("Parse sample.md", func() {
		var content []byte

		BeforeEach(func() {
			content = readFixture("suites", "sample.md")
		})

		It("should extract only the tagged blocks", func() {
			doc, err := p.Parse("sample.md", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.FileType).To(Equal("markdown"))
			Expect(doc.Blocks).To(HaveLen(3))
			for _, b := range doc.Blocks {
				Expect(b.Tag).To(Equal("pagecheck"))
			}
		})

		It("should keep block content and its first line", func() {
			doc, err := p.Parse("sample.md", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Blocks[0].Content).To(Equal("navigate /content/sample/en.html\nlocation /content/sample/en.html"))
			Expect(doc.Blocks[0].LineNumber).To(Equal(10))
		})

		It("should read the suite path marker", func() {
			doc, err := p.Parse("sample.md", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Metadata).To(HaveKeyWithValue(parser.MetaSuitePath, "/apps/sample/tests/MarkdownTests.js"))
		})

		It("should group blocks between test-start and test-end", func() {
			doc, err := p.Parse("sample.md", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Blocks[0].TestGroup).To(Equal("Hello World component on english page"))
			Expect(doc.Blocks[1].TestGroup).To(Equal("Hello World component on english page"))
			Expect(doc.Blocks[2].TestGroup).To(BeEmpty())
		})

		It("should set context from the nearest section heading", func() {
			doc, err := p.Parse("sample.md", content, tags)
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Blocks[0].Context).To(BeEmpty())
			Expect(doc.Blocks[2].Context).To(Equal("French page"))
			Expect(doc.Headings[0].Text).To(Equal("Markdown Tests"))
			Expect(doc.Headings[0].Level).To(Equal(1))
		})

		It("should not extract blocks with non-matching tags", func() {
			doc, err := p.Parse("sample.md", content, []string{"other-tag"})
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.Blocks).To(BeEmpty())
		})
	})

	It("should parse fence attributes", func() {
		content := []byte("# T\n\n```pagecheck register=false name=\"English page\"\nnavigate /\n```\n")
		doc, err := p.Parse("inline.md", content, tags)
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Blocks).To(HaveLen(1))
		Expect(doc.Blocks[0].Attributes).To(Equal(map[string]string{
			"register": "false",
			"name":     "English page",
		}))
	})

	It("should read suite-name and multi-line markers", func() {
		content := []byte("<!--\nsuite-name: Renamed\n-->\n\n```pagecheck\nnavigate /\n```\n")
		doc, err := p.Parse("inline.md", content, tags)
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Metadata).To(HaveKeyWithValue(parser.MetaSuiteName, "Renamed"))
	})
})
