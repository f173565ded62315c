package parser_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/pagecheck/internal/parser"
)

var _ = Describe("DefaultRegistry", func() {
	It("should find built-in parsers by extension regardless of case", func() {
		r := parser.NewDefaultRegistry(nil)
		p, err := r.ParserFor(".MD")
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&parser.MarkdownParser{}))

		p, err = r.ParserFor("json")
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&parser.YAMLParser{}))
	})

	It("should fail for unknown extensions without a fallback", func() {
		r := parser.NewDefaultRegistry(nil)
		_, err := r.ParserFor(".txt")
		Expect(err).To(MatchError(ContainSubstring(`".txt"`)))
	})

	It("should use the fallback parser", func() {
		plain, err := parser.NewPlaintextParser(`@begin\((\S+)\)`, `@end`)
		Expect(err).ToNot(HaveOccurred())
		r := parser.NewDefaultRegistry(plain)
		r.SetFallback(plain)

		p, err := r.ParserFor(".txt")
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(BeIdenticalTo(plain))

		p, err = r.ParserFor(".rst")
		Expect(err).ToNot(HaveOccurred())
		Expect(p).To(BeIdenticalTo(plain))
	})
})
