package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/verte-zerg/defuse/internal/quiz"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxDocumentBytes   = 4 << 20
)

// HTTP fetches a static JSON (or YAML, by URL suffix) question document.
type HTTP struct {
	URL    string
	Client *http.Client
}

// Questions implements quiz.Source.
func (h HTTP) Questions(ctx context.Context) ([]quiz.Question, error) {
	resp, err := h.get(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected question source status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read question document: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("question document exceeds %d bytes", maxDocumentBytes)
	}
	questions, err := Decode(data, FormatForPath(resp.Request.URL.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.URL, err)
	}
	return questions, nil
}

func (h HTTP) get(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (h HTTP) String() string {
	return h.URL
}
