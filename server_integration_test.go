package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"keubot/bot"
	"keubot/config"
	"keubot/pkg/rbac"
	"keubot/store"
	"keubot/transport"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const testSecret = "integration-secret"

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// fakeGateway collects everything the bot sends.
type fakeGateway struct {
	mu   sync.Mutex
	sent []map[string]string
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || r.URL.Path != "/send" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	g.mu.Lock()
	g.sent = append(g.sent, body)
	g.mu.Unlock()
}

func (g *fakeGateway) last(to string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.sent) - 1; i >= 0; i-- {
		if g.sent[i]["to"] == to {
			return g.sent[i]["text"]
		}
	}
	return ""
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

type testServer struct {
	router  *gin.Engine
	gateway *fakeGateway
	store   *store.Store
	token   string
}

func setupTestServer(t *testing.T, db config.DatabaseConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	st, err := openStore(db, true, log)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if db.Driver == "sqlite" {
		sqlDB, _ := st.DB().DB()
		sqlDB.SetMaxOpenConns(1)
	}
	roles := rbac.NewResolver(st)
	if err := seed(context.Background(), st, roles, []string{"0811111"}, log); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gw := &fakeGateway{}
	gwSrv := httptest.NewServer(gw)
	t.Cleanup(gwSrv.Close)

	b := bot.New(bot.Config{
		Repo:   st,
		Roles:  roles,
		Sender: transport.NewGateway(gwSrv.URL, "", 5*time.Second),
		Log:    log,
	})
	token, err := transport.IssueToken([]byte(testSecret), "integration", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	r := transport.NewRouter(transport.Options{Handler: b, Secret: []byte(testSecret), Sessions: b.Sessions(), Log: log})
	return &testServer{router: r, gateway: gw, store: st, token: token}
}

// say posts a text message from phone and returns the reply it received.
func (s *testServer) say(t *testing.T, phone, text string) string {
	t.Helper()
	addr := phone + "@s.whatsapp.net"
	body, _ := json.Marshal(map[string]string{"sender": addr, "chat": addr, "text": text})
	resp := performRequest(s.router, http.MethodPost, "/webhook/messages", bytes.NewBuffer(body), s.token, "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("webhook failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	return s.gateway.last(addr)
}

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return config.DatabaseConfig{Driver: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"}
}

func TestFullFlow(t *testing.T) {
	s := setupTestServer(t, sqliteConfig(t))

	// 1. Health check is public
	resp := performRequest(s.router, http.MethodGet, "/healthz", nil, "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("healthz failed status=%d", resp.Code)
	}

	// 2. Bootstrap admin is normalized to 62 and can administer
	if got := s.say(t, "62811111", "/admin"); !strings.Contains(got, "PANDUAN ADMINISTRATOR") {
		t.Fatalf("admin help not sent: %q", got)
	}

	// 3. Unknown users are told to register
	if got := s.say(t, "62822", "bayar makan 25rb"); !strings.Contains(got, "Belum terdaftar") {
		t.Fatalf("expected unregistered notice, got %q", got)
	}

	// 4. Admin grants finance
	if got := s.say(t, "62811111", "/role assign 62822 finance"); !strings.Contains(got, "Role Berhasil Diberikan") {
		t.Fatalf("assign failed: %q", got)
	}
	if got := s.gateway.last("62822@s.whatsapp.net"); !strings.Contains(got, "Akses Baru") {
		t.Fatalf("user not notified: %q", got)
	}

	// 5. The user records a transaction
	if got := s.say(t, "62822", "bayar makan 25rb"); !strings.Contains(got, "Tunai: -Rp 25.000") {
		t.Fatalf("transaction reply unexpected: %q", got)
	}
	u, err := s.store.FindUserByPhone(context.Background(), "62822")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	bal, err := s.store.GetBalance(context.Background(), u.ID)
	if err != nil || bal.Cash != -25000 {
		t.Fatalf("unexpected balance %+v err=%v", bal, err)
	}

	// 6. Group traffic is ignored
	before := s.gateway.count()
	body, _ := json.Marshal(map[string]string{"sender": "62822@s.whatsapp.net", "chat": "1203630@g.us", "text": "/saldo"})
	resp = performRequest(s.router, http.MethodPost, "/webhook/messages", bytes.NewBuffer(body), s.token, "application/json")
	if resp.Code != http.StatusOK || s.gateway.count() != before {
		t.Fatalf("group message was answered status=%d", resp.Code)
	}

	// 7. Unauthorized webhook calls are rejected
	unauth := performRequest(s.router, http.MethodPost, "/webhook/messages", bytes.NewBuffer(body), "", "application/json")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated webhook got %d", unauth.Code)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s := setupTestServer(t, sqliteConfig(t))
	ctx := context.Background()
	roles := rbac.NewResolver(s.store)
	for i := 0; i < 2; i++ {
		if err := seed(ctx, s.store, roles, []string{"0811111", "not-a-number"}, zap.NewNop()); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}
	list, err := roles.ListRoles(ctx)
	if err != nil || len(list) != 4 {
		t.Fatalf("expected 4 roles got %d err=%v", len(list), err)
	}
	stats, err := roles.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, st := range stats {
		if st.Name == rbac.RoleAdmin && st.Users != 1 {
			t.Fatalf("expected a single admin assignment got %d", st.Users)
		}
	}
}

func TestMigrateCommand(t *testing.T) {
	// postgres integration is opt-in. Set DB_DSN_TEST=1 and DB_DSN to run it.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "postgres", DSN: os.Getenv("DB_DSN")}}
	if err := migrate(context.Background(), cfg, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}
