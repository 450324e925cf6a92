package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRender wraps every renderer failure.
var ErrRender = errors.New("chart render failed")

// DefaultURL is the public QuickChart endpoint.
const DefaultURL = "https://quickchart.io/chart"

// Renderer posts chart configs and returns PNG bytes.
type Renderer struct {
	URL    string
	Width  int
	Height int
	Client *http.Client
}

// NewRenderer returns a renderer for url with the given image size.
func NewRenderer(url string, width, height int) *Renderer {
	if url == "" {
		url = DefaultURL
	}
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}
	return &Renderer{URL: url, Width: width, Height: height, Client: &http.Client{Timeout: 30 * time.Second}}
}

// Render blocks until the service answers or ctx ends; callers set the deadline.
func (r *Renderer) Render(ctx context.Context, s Spec) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"chart":           s.config(),
		"width":           r.Width,
		"height":          r.Height,
		"format":          "png",
		"backgroundColor": "white",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrRender, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRender, resp.StatusCode)
	}
	img, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrRender, err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrRender)
	}
	return img, nil
}
