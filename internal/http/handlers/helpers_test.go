package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"nyumba/internal/config"
	"nyumba/internal/domain"
	"nyumba/internal/http/handlers"
	"nyumba/internal/repos"
)

const (
	adminEmail    = "admin@nyumba.test"
	adminPassword = "Adm1n!pass"
	staffEmail    = "staff@nyumba.test"
	staffPassword = "Staff!pass1"

	livingRoomID = "65f000000000000000000001"
	sofaID       = "65f100000000000000000001"
	tableID      = "65f100000000000000000002"
	diningID     = "65f100000000000000000004"
)

type server struct {
	app *fiber.App
	db  *sqlx.DB
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// newServer opens a seeded in-memory store with one admin and one plain
// user and builds the full app around it.
func newServer(t *testing.T, opts handlers.Options) *server {
	t.Helper()
	pool := repos.NewPool(":memory:")
	t.Cleanup(func() { _ = pool.Close() })
	deps, err := handlers.NewDeps(pool, config.Config{MediaDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db, err := pool.DB()
	if err != nil {
		t.Fatal(err)
	}

	if err := repos.SeedAdmin(context.Background(), db, adminEmail, "Admin", adminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(staffPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	db.MustExec(`INSERT INTO users(id,email,name,password_hash,role) VALUES(?,?,?,?,'USER')`,
		domain.NewID(), staffEmail, "Staff", string(h))

	if opts.RateLimit == 0 {
		opts.RateLimit = 10000
	}
	if opts.LoginLimit == 0 {
		opts.LoginLimit = 100
	}
	return &server{app: handlers.NewApp(deps, opts), db: db}
}

func (s *server) request(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// call performs the request and decodes the JSON envelope.
func (s *server) call(t *testing.T, method, path string, body any, cookies ...*http.Cookie) (int, envelope) {
	t.Helper()
	resp := s.request(t, method, path, body, cookies...)
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func (s *server) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	resp := s.request(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	c := cookie(resp, "sid")
	if c == nil {
		t.Fatal("sid cookie missing")
	}
	return c
}

func cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
	return v
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Role   string         `json:"role"`
	Status int            `json:"status"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

// captureLogs swaps the standard logger output for the duration of fn and
// returns the JSON lines it wrote.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
