package suffixlist

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"

	"github.com/john-kurkowski/tldextract/evt"
	"github.com/john-kurkowski/tldextract/log"
)

const (
	defaultDownloadTimeout  = 10 * time.Second
	defaultDownloadAttempts = uint(1)
	defaultDownloadCooldown = 500 * time.Millisecond
)

// TransientError marks a failure worth retrying, like a timeout or a
// server-side error status.
type TransientError struct {
	inner error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("temporary error occurred: %v", e.inner)
}

func (e *TransientError) Unwrap() error {
	return e.inner
}

// Downloader fetches the raw suffix list text for a URL.
type Downloader interface {
	Download(link string) (string, error)
}

// HTTPDownloader fetches suffix list definitions over HTTP, retrying
// transient failures.
type HTTPDownloader struct {
	timeout   time.Duration
	attempts  uint
	cooldown  time.Duration
	transport *http.Transport
}

type DownloaderOption func(d *HTTPDownloader)

func NewDownloader(options ...DownloaderOption) *HTTPDownloader {
	d := &HTTPDownloader{
		timeout:   defaultDownloadTimeout,
		attempts:  defaultDownloadAttempts,
		cooldown:  defaultDownloadCooldown,
		transport: &http.Transport{},
	}

	for _, opt := range options {
		opt(d)
	}

	return d
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) DownloaderOption {
	return func(d *HTTPDownloader) {
		d.timeout = timeout
	}
}

// WithCooldown sets the pause between 2 download attempts
func WithCooldown(cooldown time.Duration) DownloaderOption {
	return func(d *HTTPDownloader) {
		d.cooldown = cooldown
	}
}

// WithAttempts sets the attempt number for retry
func WithAttempts(attempts uint) DownloaderOption {
	return func(d *HTTPDownloader) {
		d.attempts = attempts
	}
}

// WithTransport sets the HTTP transport
func WithTransport(transport *http.Transport) DownloaderOption {
	return func(d *HTTPDownloader) {
		d.transport = transport
	}
}

// Download fetches the link and returns the response text. Timeouts
// and retryable status codes are retried up to the configured attempt
// count, any other HTTP error status aborts immediately.
func (d *HTTPDownloader) Download(link string) (string, error) {
	client := http.Client{
		Timeout:   d.timeout,
		Transport: d.transport,
	}

	downloaderLogger().WithField("link", link).Info("fetching suffix list definitions")

	var text string

	err := retry.Do(
		func() error {
			resp, err := client.Get(link)
			if err != nil {
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					return &TransientError{inner: netErr}
				}

				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				statusErr := fmt.Errorf("got status code %d", resp.StatusCode)
				if !retryableStatus(resp.StatusCode) {
					return retry.Unrecoverable(statusErr)
				}

				return &TransientError{inner: statusErr}
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			text = string(data)

			return nil
		},
		retry.Attempts(d.attempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(d.cooldown),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			var transientErr *TransientError

			var dnsErr *net.DNSError

			logger := downloaderLogger().WithField("link", link).WithField("attempt",
				fmt.Sprintf("%d/%d", n+1, d.attempts))

			switch {
			case errors.As(err, &transientErr):
				logger.Warnf("Temporary network err / Timeout occurred: %s", transientErr)
			case errors.As(err, &dnsErr):
				logger.Warnf("Name resolution err: %s", dnsErr.Err)
			default:
				logger.Warnf("Can't fetch suffix list: %s", err)
			}

			evt.Bus().Publish(evt.SuffixListDownloadFailed, link)
		}))

	return text, err
}

// retryableStatus reports whether another attempt can succeed without
// changing the request.
func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func downloaderLogger() *logrus.Entry {
	return log.PrefixedLog("downloader")
}
