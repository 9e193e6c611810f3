package helpertest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"

	"github.com/john-kurkowski/tldextract/log"
)

// TestServer creates a temporary http server serving the passed data
func TestServer(data string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		_, err := rw.Write([]byte(data))
		if err != nil {
			log.Log().Fatal("can't write to buffer:", err)
		}
	}))

	ginkgo.DeferCleanup(srv.Close)

	return srv
}

// FailingTestServer creates a temporary http server answering every
// request with the passed status code
func FailingTestServer(statusCode int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(statusCode)
	}))

	ginkgo.DeferCleanup(srv.Close)

	return srv
}

// TempDir creates a temp folder, removed after the current spec
func TempDir() string {
	dir, err := os.MkdirTemp("", "tldextract")
	if err != nil {
		log.Log().Fatal(err)
	}

	ginkgo.DeferCleanup(func() error {
		return os.RemoveAll(dir)
	})

	return dir
}

// TempFile creates a file with passed data inside dir
func TempFile(dir, name, data string) string {
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		log.Log().Fatal(err)
	}

	return path
}
