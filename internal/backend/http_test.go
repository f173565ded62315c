package backend_test

import (
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/frherrer/pagecheck/internal/backend"
	"github.com/frherrer/pagecheck/internal/domain"
)

var _ = Describe("HTTP backend", func() {
	var (
		server  *ghttp.Server
		be      *backend.HTTP
		session backend.Session
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = ghttp.NewServer()
		server.SetAllowUnhandledRequests(true)
		server.SetUnhandledRequestStatusCode(http.StatusNotFound)

		var err error
		be, err = backend.NewHTTP(backend.HTTPOptions{
			BaseURL:   server.URL(),
			Username:  "admin",
			Password:  "admin",
			UserAgent: "pagecheck-test",
			Headers:   map[string]string{"X-Test": "1"},
		}, quietLogger())
		Expect(err).ToNot(HaveOccurred())

		session, err = be.NewSession(ctx)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(session.Close()).To(Succeed())
		server.Close()
	})

	It("should load a page with credentials and headers", func() {
		server.RouteToHandler(http.MethodGet, "/content/sample/en.html", ghttp.CombineHandlers(
			ghttp.VerifyBasicAuth("admin", "admin"),
			ghttp.VerifyHeaderKV("User-Agent", "pagecheck-test"),
			ghttp.VerifyHeaderKV("X-Test", "1"),
			ghttp.RespondWith(http.StatusOK, readPage("en.html")),
		))

		page, err := session.Navigate(ctx, "/content/sample/en.html")
		Expect(err).ToNot(HaveOccurred())

		loc, err := session.Location(ctx, page)
		Expect(err).ToNot(HaveOccurred())
		Expect(loc).To(Equal("/content/sample/en.html"))

		v, err := session.Visibility(ctx, page, ".helloworld")
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Visible).To(BeTrue())
	})

	It("should report the location after a redirect", func() {
		server.RouteToHandler(http.MethodGet, "/", ghttp.RespondWith(http.StatusFound, nil,
			http.Header{"Location": []string{"/content/sample/en.html"}}))
		server.RouteToHandler(http.MethodGet, "/content/sample/en.html",
			ghttp.RespondWith(http.StatusOK, readPage("en.html")))

		page, err := session.Navigate(ctx, "/")
		Expect(err).ToNot(HaveOccurred())
		Expect(page.Location).To(Equal("/content/sample/en.html"))
	})

	Describe("other origins", func() {
		var (
			other    *ghttp.Server
			received chan http.Header
		)

		BeforeEach(func() {
			received = make(chan http.Header, 1)
			other = ghttp.NewServer()
			DeferCleanup(other.Close)
			other.RouteToHandler(http.MethodGet, "/page.html", func(w http.ResponseWriter, r *http.Request) {
				received <- r.Header.Clone()
				_, _ = w.Write([]byte(readPage("en.html")))
			})
		})

		It("should not send credentials or configured headers to another host", func() {
			page, err := session.Navigate(ctx, other.URL()+"/page.html")
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Location).To(Equal(other.URL() + "/page.html"))

			var header http.Header
			Expect(received).To(Receive(&header))
			Expect(header.Get("Authorization")).To(BeEmpty())
			Expect(header.Get("X-Test")).To(BeEmpty())
			Expect(header.Get("User-Agent")).To(Equal("pagecheck-test"))
		})

		It("should drop credentials and configured headers when redirected to another host", func() {
			server.RouteToHandler(http.MethodGet, "/away.html", ghttp.CombineHandlers(
				ghttp.VerifyBasicAuth("admin", "admin"),
				ghttp.VerifyHeaderKV("X-Test", "1"),
				ghttp.RespondWith(http.StatusFound, nil,
					http.Header{"Location": []string{other.URL() + "/page.html"}}),
			))

			page, err := session.Navigate(ctx, "/away.html")
			Expect(err).ToNot(HaveOccurred())
			Expect(page.Location).To(Equal(other.URL() + "/page.html"))

			var header http.Header
			Expect(received).To(Receive(&header))
			Expect(header.Get("Authorization")).To(BeEmpty())
			Expect(header.Get("X-Test")).To(BeEmpty())
		})
	})

	It("should stop after too many redirects", func() {
		server.RouteToHandler(http.MethodGet, "/loop.html", ghttp.RespondWith(http.StatusFound, nil,
			http.Header{"Location": []string{"/loop.html"}}))

		_, err := session.Navigate(ctx, "/loop.html")
		Expect(err).To(MatchError(domain.ErrNavigation))
		Expect(err.Error()).To(ContainSubstring("redirects"))
	})

	Describe("Resolve", func() {
		It("should report same-origin urls the way Location does", func() {
			Expect(session.Resolve(server.URL() + "/content/x.html?a=1")).To(Equal("/content/x.html?a=1"))
			Expect(session.Resolve("/content/x.html")).To(Equal("/content/x.html"))
		})

		It("should keep urls on other origins absolute", func() {
			Expect(session.Resolve("https://example.com/content/x.html#top")).To(Equal("https://example.com/content/x.html"))
		})
	})

	It("should fail navigation on 404", func() {
		_, err := session.Navigate(ctx, "/content/sample/fr.html")
		Expect(err).To(MatchError(domain.ErrNavigation))
		Expect(err.Error()).To(ContainSubstring("404"))
	})

	It("should fail navigation when the server is unreachable", func() {
		unreachable, err := backend.NewHTTP(backend.HTTPOptions{BaseURL: "http://127.0.0.1:1"}, quietLogger())
		Expect(err).ToNot(HaveOccurred())
		s, err := unreachable.NewSession(ctx)
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		_, err = s.Navigate(ctx, "/content/sample/en.html")
		Expect(err).To(MatchError(domain.ErrNavigation))
	})

	It("should time out on slow responses", func() {
		server.RouteToHandler(http.MethodGet, "/slow.html", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
			w.WriteHeader(http.StatusOK)
		})

		tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := session.Navigate(tctx, "/slow.html")
		Expect(err).To(MatchError(domain.ErrTimeout))
	})

	It("should refuse work after the session is closed", func() {
		Expect(session.Close()).To(Succeed())
		_, err := session.Navigate(ctx, "/content/sample/en.html")
		Expect(err).To(MatchError(domain.ErrSessionLost))
	})

	It("should keep cookies within a session", func() {
		server.RouteToHandler(http.MethodGet, "/login", ghttp.RespondWith(http.StatusOK, "<p>ok</p>",
			http.Header{"Set-Cookie": []string{"login-token=abc; Path=/"}}))
		server.RouteToHandler(http.MethodGet, "/private.html", func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie("login-token"); err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(`<div class="secret">secret</div>`))
		})

		_, err := session.Navigate(ctx, "/login")
		Expect(err).ToNot(HaveOccurred())
		_, err = session.Navigate(ctx, "/private.html")
		Expect(err).ToNot(HaveOccurred())

		other, err := be.NewSession(ctx)
		Expect(err).ToNot(HaveOccurred())
		defer other.Close()
		_, err = other.Navigate(ctx, "/private.html")
		Expect(err).To(MatchError(domain.ErrNavigation))
	})

	It("should reject non-http base urls", func() {
		_, err := backend.NewHTTP(backend.HTTPOptions{BaseURL: "ftp://example.com"}, quietLogger())
		Expect(err).To(HaveOccurred())
	})
})
