package popup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxPayloadBytes = 4 << 20

// Source yields the public payload for a space.
type Source interface {
	PublicData(ctx context.Context, spaceID string) (*PublicData, error)
}

// HTTPClient allows injecting a transport for tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SourceOption func(*HTTPSource)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) SourceOption {
	return func(s *HTTPSource) {
		s.httpClient = httpClient
	}
}

// WithBaseURL overrides the deployment the source reads from.
func WithBaseURL(baseURL string) SourceOption {
	return func(s *HTTPSource) {
		s.baseURL = baseURL
	}
}

// HTTPSource reads the public data endpoint of a remote deployment. The
// endpoint is unauthenticated.
type HTTPSource struct {
	httpClient HTTPClient
	baseURL    string
}

func NewHTTPSource(opts ...SourceOption) *HTTPSource {
	s := &HTTPSource{
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PublicDataURL builds {base}/api/spaces/{spaceId}/public-data.
func PublicDataURL(baseURL, spaceID string) string {
	return strings.TrimRight(baseURL, "/") + "/api/spaces/" + url.PathEscape(spaceID) + "/public-data"
}

func (s *HTTPSource) PublicData(ctx context.Context, spaceID string) (*PublicData, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("popup source: base url is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, PublicDataURL(s.baseURL, spaceID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("public data returned HTTP %d for space %s", resp.StatusCode, spaceID)
	}

	var data PublicData
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode public data: %w", err)
	}
	return &data, nil
}
