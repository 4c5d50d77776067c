package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Provider fetches one tabular source by its locator. A locator is opaque
// to the loader: a file path, an export URL, whatever the provider
// understands.
type Provider interface {
	Fetch(ctx context.Context, locator string) (io.ReadCloser, error)
}

// FileProvider reads sources from the local filesystem. Used in
// development and in tests with checked-in fixture exports.
type FileProvider struct{}

func (FileProvider) Fetch(_ context.Context, locator string) (io.ReadCloser, error) {
	f, err := os.Open(locator)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", locator, err)
	}
	return f, nil
}

// HTTPProvider fetches sources over HTTP, typically spreadsheet export
// URLs. When an access token is configured the client attaches it as an
// OAuth2 bearer token, which is what private spreadsheet exports require.
type HTTPProvider struct {
	client *http.Client
}

// NewHTTPProvider builds an HTTP provider. accessToken may be empty for
// public export URLs.
func NewHTTPProvider(timeout time.Duration, accessToken string) *HTTPProvider {
	var client *http.Client
	if accessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
		client = oauth2.NewClient(context.Background(), src)
	} else {
		client = &http.Client{}
	}
	client.Timeout = timeout
	return &HTTPProvider{client: client}
}

func (p *HTTPProvider) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", locator, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", locator, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status %s", locator, resp.Status)
	}
	return resp.Body, nil
}

// AutoProvider dispatches on the locator: http(s) URLs go to the HTTP
// provider, everything else is treated as a file path.
type AutoProvider struct {
	HTTP *HTTPProvider
	File FileProvider
}

func (p AutoProvider) Fetch(ctx context.Context, locator string) (io.ReadCloser, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return p.HTTP.Fetch(ctx, locator)
	}
	return p.File.Fetch(ctx, locator)
}
