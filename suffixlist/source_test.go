package suffixlist

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/john-kurkowski/tldextract/config"
	. "github.com/john-kurkowski/tldextract/helpertest"
)

func sourceConfig(urls []string, cacheDir string, fallback bool) *config.Config {
	return &config.Config{
		SuffixListURLs:     urls,
		CacheDir:           cacheDir,
		FallbackToSnapshot: fallback,
		CacheFetchTimeout:  config.Duration(time.Second),
		DownloadAttempts:   1,
	}
}

// countingServer serves the passed data and counts requests
func countingServer(data string) (*httptest.Server, *int32) {
	var requests int32

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = rw.Write([]byte(data))
	}))

	ginkgo.DeferCleanup(srv.Close)

	return srv, &requests
}

var _ = ginkgo.Describe("Source", func() {
	var tmpDir string

	ginkgo.BeforeEach(func() {
		tmpDir = TempDir()
	})

	ginkgo.Describe("Resolve", func() {
		ginkgo.When("the first source answers", func() {
			ginkgo.It("should not try the remaining sources", func() {
				first, firstCount := countingServer("com\nco.uk\n")
				second, secondCount := countingServer("net\n")

				sut := NewSource(sourceConfig([]string{first.URL, second.URL}, "", false))

				rules, err := sut.Resolve()
				Expect(err).Should(Succeed())
				Expect(rules.Len()).Should(Equal(2))
				Expect(atomic.LoadInt32(firstCount)).Should(BeEquivalentTo(1))
				Expect(atomic.LoadInt32(secondCount)).Should(BeZero())
			})
		})

		ginkgo.When("the first source fails", func() {
			ginkgo.It("should advance to the next source", func() {
				failing := FailingTestServer(http.StatusInternalServerError)
				fallback, fallbackCount := countingServer("com\n")

				sut := NewSource(sourceConfig([]string{failing.URL, fallback.URL}, "", false))

				rules, err := sut.Resolve()
				Expect(err).Should(Succeed())
				Expect(rules.Len()).Should(Equal(1))
				Expect(atomic.LoadInt32(fallbackCount)).Should(BeEquivalentTo(1))
			})
		})

		ginkgo.When("a local file is configured", func() {
			ginkgo.It("should read it directly", func() {
				path := TempFile(tmpDir, "psl.dat", "com\nco.uk\nnet\n")

				sut := NewSource(sourceConfig([]string{path}, "", false))

				rules, err := sut.Resolve()
				Expect(err).Should(Succeed())
				Expect(rules.Len()).Should(Equal(3))
			})

			ginkgo.It("should understand the file scheme", func() {
				path := TempFile(tmpDir, "psl.dat", "com\n")

				sut := NewSource(sourceConfig([]string{"file://" + path}, "", false))

				rules, err := sut.Resolve()
				Expect(err).Should(Succeed())
				Expect(rules.Len()).Should(Equal(1))
			})
		})

		ginkgo.When("the cache is warm", func() {
			ginkgo.It("should perform zero network requests", func() {
				server, count := countingServer("com\nco.uk\n")
				cfg := sourceConfig([]string{server.URL}, tmpDir, false)

				first, err := NewSource(cfg).Resolve()
				Expect(err).Should(Succeed())
				Expect(atomic.LoadInt32(count)).Should(BeEquivalentTo(1))

				second, err := NewSource(cfg).Resolve()
				Expect(err).Should(Succeed())
				Expect(atomic.LoadInt32(count)).Should(BeEquivalentTo(1))
				Expect(second.Len()).Should(Equal(first.Len()))
			})

			ginkgo.It("should fetch again for a different source list", func() {
				server, count := countingServer("com\n")

				_, err := NewSource(sourceConfig([]string{server.URL}, tmpDir, false)).Resolve()
				Expect(err).Should(Succeed())

				other, otherCount := countingServer("net\n")
				_, err = NewSource(sourceConfig([]string{other.URL}, tmpDir, false)).Resolve()
				Expect(err).Should(Succeed())

				Expect(atomic.LoadInt32(count)).Should(BeEquivalentTo(1))
				Expect(atomic.LoadInt32(otherCount)).Should(BeEquivalentTo(1))
			})
		})

		ginkgo.When("every source fails and fallback is enabled", func() {
			ginkgo.It("should return the parsed snapshot", func() {
				failing := FailingTestServer(http.StatusNotFound)

				sut := NewSource(sourceConfig([]string{failing.URL}, "", true))

				rules, err := sut.Resolve()
				Expect(err).Should(Succeed())

				snapshot, err := ParseRules(strings.NewReader(Snapshot()))
				Expect(err).Should(Succeed())
				Expect(rules.Len()).Should(Equal(snapshot.Len()))
			})

			ginkgo.It("should not write the snapshot to the cache", func() {
				failing := FailingTestServer(http.StatusNotFound)
				cfg := sourceConfig([]string{failing.URL}, tmpDir, true)

				sut := NewSource(cfg)

				_, err := sut.Resolve()
				Expect(err).Should(Succeed())

				_, err = NewDiskCache(tmpDir).Get(NewDiskCache(tmpDir).Key(cfg.SuffixListURLs))
				Expect(err).Should(MatchError(ErrCacheMiss))
			})
		})

		ginkgo.When("every source fails and fallback is disabled", func() {
			ginkgo.It("should fail with a data-unavailable error", func() {
				failing := FailingTestServer(http.StatusNotFound)

				sut := NewSource(sourceConfig([]string{failing.URL}, "", false))

				_, err := sut.Resolve()
				Expect(err).Should(HaveOccurred())

				var dataErr *DataUnavailableError
				Expect(errors.As(err, &dataErr)).Should(BeTrue())
			})
		})

		ginkgo.When("fetching is disabled", func() {
			ginkgo.It("should fall back to the snapshot", func() {
				sut := NewSource(sourceConfig(nil, "", true))

				rules, err := sut.Resolve()
				Expect(err).Should(Succeed())
				Expect(rules.Len()).Should(BeNumerically(">", 0))
			})
		})

		ginkgo.When("the cache dir is not writable", func() {
			ginkgo.It("should resolve anyway", func() {
				blocking := TempFile(tmpDir, "a-file", "not a dir")
				server, _ := countingServer("com\n")

				sut := NewSource(sourceConfig([]string{server.URL}, blocking, false))

				rules, err := sut.Resolve()
				Expect(err).Should(Succeed())
				Expect(rules.Len()).Should(Equal(1))
			})
		})

		ginkgo.When("extra suffixes are configured", func() {
			ginkgo.It("should merge them into the rule set", func() {
				server, _ := countingServer("com\n")
				cfg := sourceConfig([]string{server.URL}, "", false)
				cfg.ExtraSuffixes = []string{"mycompany.dev"}

				rules, err := NewSource(cfg).Resolve()
				Expect(err).Should(Succeed())
				Expect(rules.Suffixes(false)).Should(ContainElement("mycompany.dev"))
			})
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("should bypass the cache-hit shortcut and overwrite the entry", func() {
			server, count := countingServer("com\n")
			cfg := sourceConfig([]string{server.URL}, tmpDir, false)

			sut := NewSource(cfg)

			_, err := sut.Resolve()
			Expect(err).Should(Succeed())
			Expect(atomic.LoadInt32(count)).Should(BeEquivalentTo(1))

			rules, err := sut.Update()
			Expect(err).Should(Succeed())
			Expect(rules.Len()).Should(Equal(1))
			Expect(atomic.LoadInt32(count)).Should(BeEquivalentTo(2))

			// the refreshed entry keeps serving subsequent resolves
			_, err = sut.Resolve()
			Expect(err).Should(Succeed())
			Expect(atomic.LoadInt32(count)).Should(BeEquivalentTo(2))
		})
	})

	ginkgo.Describe("ClearCache", func() {
		ginkgo.It("should force a fetch on the next resolve", func() {
			server, count := countingServer("com\n")
			cfg := sourceConfig([]string{server.URL}, tmpDir, false)

			sut := NewSource(cfg)

			_, err := sut.Resolve()
			Expect(err).Should(Succeed())

			Expect(sut.ClearCache()).Should(Succeed())

			_, err = sut.Resolve()
			Expect(err).Should(Succeed())
			Expect(atomic.LoadInt32(count)).Should(BeEquivalentTo(2))
		})
	})
})
