// Package fetch downloads data dump files over HTTP.
package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gocolly/colly/v2"
	"github.com/so-sentiment/analyzer/common"
)

const DefaultTimeout = 30 * time.Minute
const DefaultRetry = 3

var ErrMaxRetry = errors.New("max retry")

// result of a download for which neither response nor error callback ran
var errNoResponse = errors.New("no response received")

type Options struct {
	Proxy   string
	Timeout time.Duration
	// Number of retries after first failed attempt.
	Retry int
}

// RetryRequest reads `retryCnt` and `maxRetryCnt` from request context. If
// current retry count is less than max retry count, given request is retried,
// else `ErrMaxRetry` is returned.
// Returns retry count after operation.
func RetryRequest(req *colly.Request) (int, error) {
	ctx := req.Ctx

	maxRetryCnt, _ := ctx.GetAny("maxRetryCnt").(int)

	retryCnt, _ := ctx.GetAny("retryCnt").(int)
	if retryCnt >= maxRetryCnt {
		return retryCnt, ErrMaxRetry
	}

	retryCnt++
	ctx.Put("retryCnt", retryCnt)

	return retryCnt, req.Retry()
}

// DecompressResponseBody decodes response body according to its
// Content-Encoding header. Gzip bodies are already decoded by colly.
func DecompressResponseBody(r *colly.Response) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(r.Headers.Get("Content-Encoding")))
	if encoding == "gzip" {
		return r.Body, nil
	}

	data, err := common.DecompressBody(encoding, r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress response: %s", err)
	}

	return data, nil
}

func makeCollector(options Options) (*colly.Collector, error) {
	c := colly.NewCollector()
	// dump files are far larger than colly's default limit
	c.MaxBodySize = 0
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.SetRequestTimeout(timeout)

	if options.Proxy != "" {
		if err := c.SetProxy(options.Proxy); err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %s", options.Proxy, err)
		}
	}

	return c, nil
}

// Download fetches url and saves decoded response body to outputPath.
func Download(url, outputPath string, options Options) error {
	c, err := makeCollector(options)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %s", dir, err)
		}
	}

	result := errNoResponse

	c.OnResponse(func(r *colly.Response) {
		data, err := DecompressResponseBody(r)
		if err != nil {
			result = err
			return
		}
		r.Body = data

		if err := r.Save(outputPath); err != nil {
			result = fmt.Errorf("failed to save file %s: %s", outputPath, err)
			return
		}

		log.Infof("file downloaded: %s", outputPath)
		result = nil
	})

	c.OnError(func(r *colly.Response, err error) {
		// Retry runs the next attempt synchronously and returns its error,
		// callbacks of that attempt have already set result by then.
		retryCnt, retryErr := RetryRequest(r.Request)
		switch {
		case retryErr == nil:
		case errors.Is(retryErr, ErrMaxRetry):
			result = fmt.Errorf("%w: requesting %s failed after %d retries: %s", ErrMaxRetry, r.Request.URL, retryCnt, err)
		case errors.Is(result, errNoResponse):
			result = fmt.Errorf("failed to retry %s: %s", r.Request.URL, retryErr)
		}
	})

	ctx := colly.NewContext()
	ctx.Put("maxRetryCnt", max(options.Retry, 0))
	ctx.Put("retryCnt", 0)

	log.Infof("downloading %s", url)
	visitErr := c.Request("GET", url, nil, ctx, nil)

	if errors.Is(result, errNoResponse) && visitErr != nil {
		return fmt.Errorf("failed to request %s: %s", url, visitErr)
	}

	return result
}
