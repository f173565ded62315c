package scanner_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frherrer/pagecheck/internal/scanner"
)

var _ = Describe("Scanner", func() {
	var (
		s     *scanner.FileScanner
		pages = filepath.Join("..", "..", "testdata", "pages")
	)

	BeforeEach(func() {
		s = scanner.NewScanner(true)
	})

	It("should find html pages recursively", func() {
		files, err := s.Scan(pages, []string{"*.html"}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(files).To(HaveLen(3))
	})

	It("should return sorted file paths", func() {
		files, err := s.Scan(pages, []string{"*.html"}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(filepath.Base(files[0])).To(Equal("en.html"))
		Expect(filepath.Base(files[1])).To(Equal("fr.html"))
		Expect(filepath.Base(files[2])).To(Equal("hidden.html"))
	})

	It("should respect exclude patterns", func() {
		files, err := s.Scan(pages, []string{"*.html"}, []string{"hidden.html"})
		Expect(err).ToNot(HaveOccurred())
		Expect(files).To(HaveLen(2))
	})

	It("should exclude whole directories with **", func() {
		files, err := s.Scan(pages, []string{"*.html"}, []string{"content/**"})
		Expect(err).ToNot(HaveOccurred())
		Expect(files).To(BeEmpty())
	})

	It("should handle non-recursive mode", func() {
		s = scanner.NewScanner(false)
		files, err := s.Scan(pages, []string{"*.html"}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(files).To(BeEmpty())
	})

	It("should accept a single file as root", func() {
		file := filepath.Join("..", "..", "testdata", "suites", "sample.yaml")
		files, err := s.Scan(file, []string{"*.yaml"}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(files).To(Equal([]string{file}))
	})

	It("should merge roots without duplicates", func() {
		suites := filepath.Join("..", "..", "testdata", "suites")
		files, err := scanner.ScanAll(s, []string{suites, suites}, []string{"*.yaml"}, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(files).To(HaveLen(1))
	})

	It("should return error for nonexistent directory", func() {
		_, err := s.Scan("nonexistent_dir", []string{"*.html"}, nil)
		Expect(err).To(HaveOccurred())
	})
})
