package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
)

type testEnv struct {
	E    *echo.Echo
	DB   *gorm.DB
	Auth *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	pub := events.Nop{}
	authSvc := &service.AuthService{Repo: r, Secret: []byte("test-session-secret"), TTL: time.Hour, Events: pub}

	deps := &Deps{
		DB:             gdb,
		AuthHandler:    &AuthHTTP{Svc: authSvc},
		ProductHandler: &ProductHTTP{Svc: &service.ProductService{Repo: r, Events: pub}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: r, Events: pub}},
		SessionAuth:    authmw.NewSessionAuth(authSvc, false),
	}
	logger := logging.NewWithWriter(io.Discard, "error")

	for _, name := range []string{"alice", "bob"} {
		_, err := authSvc.CreateUser(ctx, name, name+"-pw")
		require.NoError(t, err)
	}

	return &testEnv{E: New(deps, logger, []string{"*"}), DB: gdb, Auth: authSvc}
}

func (env *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// login returns the session cookie of a successful login.
func (env *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/login", `{"username":"`+username+`","password":"`+username+`-pw"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in login response", session.CookieName)
	return nil
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// addProduct creates a product through the API and returns its id.
func (env *testEnv) addProduct(t *testing.T, ck *http.Cookie, body string) uint {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/products/add", body, ck)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	prod := decodeObject(t, rec)["product"].(map[string]any)
	return uint(prod["id"].(float64))
}
