package catalog

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/shopledger/shopledger/internal/auth"
	"github.com/shopledger/shopledger/internal/shared"
	_ "github.com/shopledger/shopledger/testing"
)

func newTestRouter(t *testing.T, repo Repository, role shared.Role) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo, nil), auth.Middleware{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			sess.SetUser("7")
			sess.Set("username", "tester")
			sess.Set("role", string(role))
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/products", handler.MountRoutes)
	return r
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestProductEndpoints(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(t, repo, shared.RoleShopkeeper)

	res := do(router, http.MethodPost, "/products", `{"name":"Sugar 1kg","cost_price":"4.50","price":"6.00","stock":40}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = do(router, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "Sugar 1kg")

	res = do(router, http.MethodGet, "/products/99", "")
	require.Equal(t, http.StatusNotFound, res.Code)

	res = do(router, http.MethodPost, "/products", `{"cost_price":"1.00","price":"2.00","stock":1}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestStockAdjustmentEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(t, repo, shared.RoleShopkeeper)

	res := do(router, http.MethodPost, "/products", `{"name":"Tea","price":"3.50","stock":10}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(router, http.MethodPost, "/products/1/stock", `{"delta":-4}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"stock":6`)

	res = do(router, http.MethodPost, "/products/1/stock", `{"delta":-7}`)
	require.Equal(t, http.StatusConflict, res.Code)

	res = do(router, http.MethodPost, "/products/1/stock", `{"delta":0}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"stock":6`)

	res = do(router, http.MethodPost, "/products/999/stock", `{"delta":1}`)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	repo := newMemoryRepo()

	keeper := newTestRouter(t, repo, shared.RoleShopkeeper)
	res := do(keeper, http.MethodPost, "/products", `{"name":"Oil","price":"8.75","stock":30}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(keeper, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusForbidden, res.Code)

	admin := newTestRouter(t, repo, shared.RoleAdmin)
	res = do(admin, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	res = do(admin, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusNotFound, res.Code)
}
