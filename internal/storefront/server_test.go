package storefront

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/catalogview"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/middleware"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

type stubProducts struct {
	products []models.Product
	err      error
}

func (s stubProducts) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products, s.err
}

// flakyProducts fails the first call and serves products afterwards
type flakyProducts struct {
	calls    atomic.Int32
	products []models.Product
}

func (f *flakyProducts) ListProducts(ctx context.Context) ([]models.Product, error) {
	if f.calls.Add(1) == 1 {
		return nil, errors.New("connection refused")
	}
	return f.products, nil
}

type recordingCart struct {
	mu       sync.Mutex
	requests []models.CartAddRequest
}

func (c *recordingCart) AddProduct(ctx context.Context, req models.CartAddRequest) (*models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	return &models.CartItem{CartItemID: "item-1"}, nil
}

func (c *recordingCart) Requests() []models.CartAddRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartAddRequest(nil), c.requests...)
}

var catalog = []models.Product{
	{ProductID: 1, ProductTitle: "Pen", Price: 2, Quantity: 10, ProductImage: "pen"},
	{ProductID: 2, ProductTitle: "Notebook", Price: 4.5, Quantity: 25, ProductImage: "notebook"},
}

func newTestServer(t *testing.T, cfg Config) (*Server, http.Handler) {
	t.Helper()

	if cfg.Cart == nil {
		cfg.Cart = &recordingCart{}
	}
	cfg.AutoHide = time.Minute
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return srv, srv.Handler()
}

// browser keeps the session cookie between requests
type browser struct {
	h          http.Handler
	shopCartID string
	session    *http.Cookie
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if b.shopCartID != "" {
		req.Header.Set(middleware.ShopCartHeader, b.shopCartID)
	}
	if b.session != nil {
		req.AddCookie(b.session)
	}

	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			b.session = c
		}
	}
	return rec
}

func (b *browser) body(target string) string {
	return b.do(http.MethodGet, target, nil).Body.String()
}

func (s *Server) pageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) sessionPage(id string) *catalogview.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess.page
	}
	return nil
}

func isDone(p *catalogview.Page) bool {
	select {
	case <-p.Done():
		return true
	default:
		return false
	}
}

func TestServer_CatalogRequiresShopCart(t *testing.T) {
	_, h := newTestServer(t, Config{Products: stubProducts{products: catalog}})

	b := &browser{h: h}
	assert.Equal(t, http.StatusUnauthorized, b.do(http.MethodGet, "/", nil).Code)
}

func TestServer_Catalog(t *testing.T) {
	_, h := newTestServer(t, Config{Products: stubProducts{products: catalog}})
	b := &browser{h: h, shopCartID: "cart-1"}

	rec := b.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, b.session)
	assert.True(t, b.session.HttpOnly)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Products Catalog</h1>")
	assert.Contains(t, body, `data-key="1"`)
	assert.Contains(t, body, `src="/images/pen.PNG"`)
	assert.Contains(t, body, "Price: $2")
	assert.Contains(t, body, "Quantity: 10")
	assert.Contains(t, body, "Price: $4.5")
	assert.NotContains(t, body, `role="alert"`)
	assert.NotContains(t, body, `http-equiv="refresh"`)
}

func TestServer_CatalogLoadFailureRendersEmpty(t *testing.T) {
	_, h := newTestServer(t, Config{Products: stubProducts{err: errors.New("unreachable")}})
	b := &browser{h: h, shopCartID: "cart-1"}

	rec := b.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Products Catalog")
	assert.NotContains(t, body, "data-key")
	assert.NotContains(t, body, `role="alert"`)
}

func TestServer_NavigationRefetches(t *testing.T) {
	products := &flakyProducts{products: catalog}
	_, h := newTestServer(t, Config{Products: products})
	b := &browser{h: h, shopCartID: "cart-1"}

	assert.NotContains(t, b.body("/"), "data-key", "first fetch failed")

	// A re-render keeps the mounted page
	assert.NotContains(t, b.body("/?poll=1"), "data-key")
	assert.Equal(t, int32(1), products.calls.Load())

	assert.Contains(t, b.body("/"), `data-key="1"`)
	assert.Equal(t, int32(2), products.calls.Load())
}

func TestServer_NavigationUnmountsPreviousPage(t *testing.T) {
	srv, h := newTestServer(t, Config{Products: stubProducts{products: catalog}})
	b := &browser{h: h, shopCartID: "cart-1"}

	b.do(http.MethodGet, "/", nil)
	first := srv.sessionPage(b.session.Value)
	require.NotNil(t, first)

	b.do(http.MethodGet, "/", nil)
	second := srv.sessionPage(b.session.Value)

	assert.NotSame(t, first, second)
	assert.True(t, isDone(first))
	assert.False(t, isDone(second))
	assert.Equal(t, 1, srv.pageCount())
}

func TestServer_CatalogMissingImage(t *testing.T) {
	products := stubProducts{products: []models.Product{{ProductID: 7, ProductTitle: "Lamp", ProductImage: "lamp"}}}
	_, h := newTestServer(t, Config{Products: products})
	b := &browser{h: h, shopCartID: "cart-1"}

	assert.Equal(t, http.StatusInternalServerError, b.do(http.MethodGet, "/", nil).Code)
}

func TestServer_AddToCart(t *testing.T) {
	cart := &recordingCart{}
	_, h := newTestServer(t, Config{Products: stubProducts{products: catalog}, Cart: cart})
	b := &browser{h: h, shopCartID: "cart-1"}

	b.do(http.MethodGet, "/", nil)
	rec := b.do(http.MethodPost, "/cart/1", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?poll=1", rec.Header().Get("Location"))

	require.Eventually(t, func() bool {
		return strings.Contains(b.body("/?poll=1"), catalogview.MsgAddedToCart)
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, b.body("/?poll=1"), `http-equiv="refresh"`)

	reqs := cart.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, models.CartAddRequest{ShopCartID: "cart-1", Price: 2, ProductName: "Pen", Quantity: 10}, reqs[0])

	// Another browser has its own page
	other := &browser{h: h, shopCartID: "cart-1"}
	assert.NotContains(t, other.body("/"), catalogview.MsgAddedToCart)
}

func TestServer_ShopCartChangesWithinSession(t *testing.T) {
	cart := &recordingCart{}
	srv, h := newTestServer(t, Config{Products: stubProducts{products: catalog}, Cart: cart})
	b := &browser{h: h, shopCartID: "cart-1"}

	b.do(http.MethodGet, "/", nil)

	b.shopCartID = "cart-2"
	require.Equal(t, http.StatusSeeOther, b.do(http.MethodPost, "/cart/2", url.Values{}).Code)

	require.Eventually(t, func() bool { return len(cart.Requests()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "cart-2", cart.Requests()[0].ShopCartID)
	assert.Equal(t, 1, srv.pageCount())
}

func TestServer_UnknownSessionCookieStartsNewSession(t *testing.T) {
	srv, h := newTestServer(t, Config{Products: stubProducts{products: catalog}})
	b := &browser{h: h, shopCartID: "cart-1", session: &http.Cookie{Name: SessionCookie, Value: "made-up"}}

	b.do(http.MethodGet, "/", nil)

	assert.NotEqual(t, "made-up", b.session.Value)
	assert.Nil(t, srv.sessionPage("made-up"))
	assert.NotNil(t, srv.sessionPage(b.session.Value))
}

func TestServer_IdlePagesAreEvicted(t *testing.T) {
	srv, h := newTestServer(t, Config{Products: stubProducts{products: catalog}, IdleTimeout: time.Minute})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }

	idle := &browser{h: h, shopCartID: "cart-1"}
	idle.do(http.MethodGet, "/", nil)
	idlePage := srv.sessionPage(idle.session.Value)
	require.NotNil(t, idlePage)

	now = now.Add(2 * time.Minute)

	active := &browser{h: h, shopCartID: "cart-2"}
	active.do(http.MethodGet, "/", nil)

	assert.Equal(t, 1, srv.pageCount())
	assert.Nil(t, srv.sessionPage(idle.session.Value))
	assert.True(t, isDone(idlePage))

	// The evicted browser gets a new session on its next visit
	oldID := idle.session.Value
	assert.Contains(t, idle.body("/"), `data-key="1"`)
	assert.NotEqual(t, oldID, idle.session.Value)
}

func TestServer_PageLimitEvictsLeastRecentlyUsed(t *testing.T) {
	srv, h := newTestServer(t, Config{Products: stubProducts{products: catalog}, MaxPages: 2})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }

	browsers := make([]*browser, 3)
	for i := range browsers {
		browsers[i] = &browser{h: h, shopCartID: "cart-" + strconv.Itoa(i)}
		browsers[i].do(http.MethodGet, "/", nil)
		now = now.Add(time.Second)
	}

	assert.Equal(t, 2, srv.pageCount())
	assert.Nil(t, srv.sessionPage(browsers[0].session.Value))
	assert.NotNil(t, srv.sessionPage(browsers[1].session.Value))
	assert.NotNil(t, srv.sessionPage(browsers[2].session.Value))
}

func TestServer_AddToCartBadProduct(t *testing.T) {
	_, h := newTestServer(t, Config{Products: stubProducts{products: catalog}})
	b := &browser{h: h, shopCartID: "cart-1"}

	assert.Equal(t, http.StatusNotFound, b.do(http.MethodPost, "/cart/99", url.Values{}).Code)
	assert.Equal(t, http.StatusBadRequest, b.do(http.MethodPost, "/cart/pen", url.Values{}).Code)
}

func TestServer_CloseNotification(t *testing.T) {
	_, h := newTestServer(t, Config{Products: stubProducts{products: catalog}})
	b := &browser{h: h, shopCartID: "cart-1"}

	b.do(http.MethodGet, "/", nil)
	b.do(http.MethodPost, "/cart/1", url.Values{})
	require.Eventually(t, func() bool {
		return strings.Contains(b.body("/?poll=1"), `role="alert"`)
	}, time.Second, 10*time.Millisecond)

	rec := b.do(http.MethodPost, "/notification/close", url.Values{"reason": {"clickaway"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?poll=1", rec.Header().Get("Location"))
	assert.Contains(t, b.body("/?poll=1"), `role="alert"`)

	b.do(http.MethodPost, "/notification/close", url.Values{"reason": {"close"}})
	assert.NotContains(t, b.body("/?poll=1"), `role="alert"`)
}

func TestServer_Images(t *testing.T) {
	_, h := newTestServer(t, Config{Products: stubProducts{}})
	b := &browser{h: h}

	rec := b.do(http.MethodGet, "/images/pen.PNG", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, b.do(http.MethodGet, "/images/lamp.PNG", nil).Code)
}

func TestServer_Close(t *testing.T) {
	srv, h := newTestServer(t, Config{Products: stubProducts{products: catalog}})
	b := &browser{h: h, shopCartID: "cart-1"}

	require.Equal(t, http.StatusOK, b.do(http.MethodGet, "/", nil).Code)
	page := srv.sessionPage(b.session.Value)

	srv.Close()

	assert.True(t, isDone(page))
	assert.Equal(t, http.StatusServiceUnavailable, b.do(http.MethodGet, "/", nil).Code)
}
