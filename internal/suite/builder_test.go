package suite_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/pagecheck/internal/domain"
	"github.com/frherrer/pagecheck/internal/suite"
)

func helloWorldCase(lang string) *suite.TestCase {
	url := "/content/sample/" + lang + ".html"
	return suite.NewTestCase("Hello World component on " + lang + " page").
		NavigateTo(url).
		Asserts.Location(url, true).
		Asserts.Visible(".helloworld", true)
}

var _ = Describe("TestSuite builder", func() {
	It("should build a suite with ordered steps", func() {
		s, err := suite.NewTestSuite("Sample Tests", suite.Options{Path: "/apps/sample/tests/SampleTests.js", Register: true}).
			AddTestCase(helloWorldCase("en")).
			AddTestCase(helloWorldCase("fr")).
			Build()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Name).To(Equal("Sample Tests"))
		Expect(s.Path).To(Equal("/apps/sample/tests/SampleTests.js"))
		Expect(s.Register).To(BeTrue())
		Expect(s.TestCases).To(HaveLen(2))
		Expect(s.TestCases[0].Steps).To(Equal([]domain.Step{
			{Kind: domain.StepNavigate, URL: "/content/sample/en.html"},
			{Kind: domain.StepAssertLocation, URL: "/content/sample/en.html", Expected: true},
			{Kind: domain.StepAssertVisible, Selector: ".helloworld", Expected: true},
		}))
	})

	It("should reject a duplicate case name", func() {
		b := suite.NewTestSuite("Sample Tests", suite.Options{Path: "/apps/sample"}).
			AddTestCase(helloWorldCase("en")).
			AddTestCase(helloWorldCase("en"))
		Expect(b.Err()).To(MatchError(domain.ErrDuplicateCaseName))

		_, err := b.Build()
		Expect(err).To(MatchError(domain.ErrDuplicateCaseName))
	})

	It("should ignore further cases once an error is recorded", func() {
		b := suite.NewTestSuite("Sample Tests", suite.Options{}).
			AddTestCase(helloWorldCase("en")).
			AddTestCase(helloWorldCase("en")).
			AddTestCase(helloWorldCase("fr"))
		Expect(b.Err()).To(MatchError(domain.ErrDuplicateCaseName))
	})

	It("should reject a suite without cases", func() {
		_, err := suite.NewTestSuite("Empty", suite.Options{Path: "/apps/empty"}).Build()
		Expect(err).To(MatchError(domain.ErrInvalidDefinition))
		Expect(err.Error()).To(ContainSubstring("no test cases"))
	})

	It("should reject a registered suite without a path", func() {
		_, err := suite.NewTestSuite("No path", suite.Options{Register: true}).
			AddTestCase(helloWorldCase("en")).
			Build()
		Expect(err).To(MatchError(domain.ErrInvalidDefinition))
		Expect(err.Error()).To(ContainSubstring("no path"))
	})

	It("should reject steps without a target", func() {
		_, err := suite.NewTestSuite("Broken", suite.Options{}).
			AddTestCase(suite.NewTestCase("blank").NavigateTo("").Asserts.Visible("", true)).
			Build()
		Expect(err).To(MatchError(domain.ErrInvalidDefinition))
		Expect(err.Error()).To(ContainSubstring("requires a url"))
	})

	It("should reject a case without steps", func() {
		_, err := suite.NewTestSuite("Stepless", suite.Options{}).
			AddTestCase(suite.NewTestCase("nothing")).
			Build()
		Expect(err).To(MatchError(domain.ErrInvalidDefinition))
	})

	It("should not let later appends leak into a built suite", func() {
		tc := helloWorldCase("en")
		s, err := suite.NewTestSuite("Sample", suite.Options{}).AddTestCase(tc).Build()
		Expect(err).ToNot(HaveOccurred())

		tc.Asserts.Visible(".footer", true)
		Expect(s.TestCases[0].Steps).To(HaveLen(3))
		Expect(tc.Steps()).To(HaveLen(4))
	})

	It("should record a negative location assertion", func() {
		tc := suite.NewTestCase("redirect").
			NavigateTo("/content/sample.html").
			Asserts.Location("/content/sample.html", false)
		Expect(tc.Steps()[1].Expected).To(BeFalse())
		Expect(tc.Steps()[1].String()).To(Equal(`asserts.location("/content/sample.html", false)`))
	})
})
