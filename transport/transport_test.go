package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"keubot/bot"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("webhook-test-secret")

type recorder struct {
	mu   sync.Mutex
	msgs []bot.Message
}

func (r *recorder) Handle(_ context.Context, m bot.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

type activeSessions int

func (a activeSessions) CountActive() int { return int(a) }

func newTestRouter(t *testing.T) (*gin.Engine, *recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := &recorder{}
	return NewRouter(Options{Handler: rec, Secret: secret, Sessions: activeSessions(2)}), rec
}

func bearer(t *testing.T, key []byte, ttl time.Duration) string {
	t.Helper()
	tok, err := IssueToken(key, "wa-gateway", ttl)
	require.NoError(t, err)
	return "Bearer " + tok
}

func postJSON(r http.Handler, auth string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/webhook/messages", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":2}`, w.Body.String())
}

func TestWebhookRequiresToken(t *testing.T) {
	r, rec := newTestRouter(t)
	body := map[string]any{"sender": "62811@s.whatsapp.net", "text": "halo"}

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"wrong secret": bearer(t, []byte("other-secret"), time.Hour),
		"expired":      bearer(t, secret, -time.Minute),
		"garbage":      "Bearer not.a.jwt",
	}
	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			w := postJSON(r, auth, body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.Empty(t, rec.msgs)
}

func TestWebhookTextMessage(t *testing.T) {
	r, rec := newTestRouter(t)

	w := postJSON(r, bearer(t, secret, time.Hour), map[string]any{
		"id":        "ABC123",
		"sender":    "62811@s.whatsapp.net",
		"push_name": "Sri",
		"text":      "bayar makan 25000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, rec.msgs, 1)
	m := rec.msgs[0]
	assert.Equal(t, "ABC123", m.ID)
	assert.Equal(t, "62811@s.whatsapp.net", m.Chat)
	assert.Equal(t, "Sri", m.PushName)
	assert.Equal(t, "bayar makan 25000", m.Text)
	assert.Nil(t, m.Image)
	assert.Nil(t, m.Location)
}

func TestWebhookMediaMessages(t *testing.T) {
	r, rec := newTestRouter(t)
	auth := bearer(t, secret, 0)

	w := postJSON(r, auth, map[string]any{
		"sender": "62811@s.whatsapp.net",
		"chat":   "62811@s.whatsapp.net",
		"image":  map[string]any{"mime_type": "image/jpeg", "data": base64.StdEncoding.EncodeToString([]byte("jpeg"))},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = postJSON(r, auth, map[string]any{
		"sender":   "62811@s.whatsapp.net",
		"location": map[string]any{"latitude": -7.8771, "longitude": 111.4704},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, rec.msgs, 2)
	img := rec.msgs[0].Image
	require.NotNil(t, img)
	assert.Equal(t, []byte("jpeg"), img.Data)
	assert.NotEmpty(t, rec.msgs[0].ID)
	assert.Equal(t, rec.msgs[0].ID, img.MessageID)

	loc := rec.msgs[1].Location
	require.NotNil(t, loc)
	assert.InDelta(t, -7.8771, loc.Latitude, 1e-9)
	assert.InDelta(t, 111.4704, loc.Longitude, 1e-9)
}

func TestWebhookRejectsBadPayloads(t *testing.T) {
	r, rec := newTestRouter(t)
	auth := bearer(t, secret, time.Hour)

	bad := []map[string]any{
		{"text": "no sender"},
		{"sender": "62811@s.whatsapp.net", "location": map[string]any{"latitude": 1.5}},
		{"sender": "62811@s.whatsapp.net", "image": map[string]any{"data": "%%%"}},
		{"sender": "62811@s.whatsapp.net", "image": map[string]any{"url": "not a url"}},
	}
	for _, body := range bad {
		assert.Equal(t, http.StatusBadRequest, postJSON(r, auth, body).Code, body)
	}
	assert.Empty(t, rec.msgs)
}

func TestUploadEndpoint(t *testing.T) {
	r, rec := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("sender", "62811@s.whatsapp.net"))
	require.NoError(t, mw.WriteField("caption", "struk makan"))
	fw, err := mw.CreateFormFile("file", "struk.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/webhook/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, secret, time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, rec.msgs, 1)
	m := rec.msgs[0]
	assert.Equal(t, "struk makan", m.Text)
	require.NotNil(t, m.Image)
	assert.Equal(t, []byte("jpeg-bytes"), m.Image.Data)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, m.ID, m.Image.MessageID)
	assert.Equal(t, "62811@s.whatsapp.net", m.Chat)
}

func TestIssueTokenNeedsSecret(t *testing.T) {
	_, err := IssueToken(nil, "gw", time.Hour)
	assert.Error(t, err)
}

func TestGatewaySend(t *testing.T) {
	var got []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		assert.Equal(t, "Bearer gw-token", r.Header.Get("Authorization"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = append(got, body)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL+"/", "gw-token", time.Second)
	ctx := context.Background()
	require.NoError(t, g.SendText(ctx, "62811@s.whatsapp.net", "halo"))
	require.NoError(t, g.SendImage(ctx, "62811@s.whatsapp.net", []byte("png"), "grafik"))
	require.NoError(t, g.SendDocument(ctx, "62811@s.whatsapp.net", []byte("xlsx"), "a.xlsx", "export"))

	require.Len(t, got, 3)
	assert.Equal(t, map[string]string{"to": "62811@s.whatsapp.net", "text": "halo"}, got[0])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png")), got[1]["image"])
	assert.Equal(t, "grafik", got[1]["caption"])
	assert.Equal(t, "a.xlsx", got[2]["filename"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("xlsx")), got[2]["document"])
}

func TestGatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not connected", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewGateway(srv.URL, "", time.Second).SendText(context.Background(), "62811@s.whatsapp.net", "halo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGateway))
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "not connected")
}
