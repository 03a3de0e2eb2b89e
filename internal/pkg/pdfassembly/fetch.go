package pdfassembly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultMaxDocumentBytes caps the size of a fetched document
const DefaultMaxDocumentBytes = 20 << 20

const maxRedirects = 5

// ErrForeignURL is returned for documents outside the document store
var ErrForeignURL = errors.New("document is not hosted by the document store")

// Fetcher loads a document by URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches documents over HTTP(S).
// Only URLs under one of its base URLs are requested, redirects included.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
	bases    []*url.URL
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout and
// which only loads documents below the given base URLs
func NewHTTPFetcher(timeout time.Duration, maxBytes int64, allowedBases []string) (*HTTPFetcher, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}

	f := &HTTPFetcher{maxBytes: maxBytes}
	for _, raw := range allowedBases {
		base, err := parseBase(raw)
		if err != nil {
			return nil, err
		}
		f.bases = append(f.bases, base)
	}

	f.client = &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			if !f.Allowed(req.URL.String()) {
				return ErrForeignURL
			}
			return nil
		},
	}
	return f, nil
}

func parseBase(raw string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid document base url %q: %w", raw, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("invalid document base url %q: need an absolute http(s) url", raw)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base, nil
}

// Allowed reports whether raw points below one of the fetcher's base URLs
func (f *HTTPFetcher) Allowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.User != nil || u.Host == "" {
		return false
	}
	clean := path.Clean("/" + u.Path)
	for _, base := range f.bases {
		if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
			continue
		}
		if strings.HasPrefix(clean, base.Path) || clean+"/" == base.Path {
			return true
		}
	}
	return false
}

// Fetch downloads url and fails on foreign URLs, non-2xx responses and oversized bodies
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !f.Allowed(rawURL) {
		return nil, ErrForeignURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrForeignURL) {
			return nil, ErrForeignURL
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("document larger than %d bytes", f.maxBytes)
	}
	return data, nil
}
