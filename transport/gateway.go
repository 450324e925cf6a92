package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGateway wraps every failed delivery.
var ErrGateway = errors.New("gateway send failed")

// Gateway delivers replies through the chat gateway's HTTP API.
type Gateway struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewGateway returns a client posting to {url}/send.
func NewGateway(url, token string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		URL:    strings.TrimRight(url, "/"),
		Token:  token,
		Client: &http.Client{Timeout: timeout},
	}
}

type outbound struct {
	To       string `json:"to"`
	Text     string `json:"text,omitempty"`
	Image    string `json:"image,omitempty"`
	Document string `json:"document,omitempty"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

func (g *Gateway) SendText(ctx context.Context, to, text string) error {
	return g.send(ctx, outbound{To: to, Text: text})
}

func (g *Gateway) SendImage(ctx context.Context, to string, img []byte, caption string) error {
	return g.send(ctx, outbound{To: to, Image: base64.StdEncoding.EncodeToString(img), Caption: caption})
}

func (g *Gateway) SendDocument(ctx context.Context, to string, doc []byte, filename, caption string) error {
	return g.send(ctx, outbound{
		To:       to,
		Document: base64.StdEncoding.EncodeToString(doc),
		Filename: filename,
		Caption:  caption,
	})
}

func (g *Gateway) send(ctx context.Context, o outbound) error {
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrGateway, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrGateway, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
