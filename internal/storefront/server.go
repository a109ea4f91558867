// Package storefront serves the catalog view as server-rendered HTML.
//
// Each browser session gets its own catalogview.Page. A plain GET / is a
// navigation and mounts a fresh page; GET /?poll=1 re-renders the current one.
// Clicks post back to the server, which runs them on the page and redirects
// to a re-render.
package storefront

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/assets"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/auth"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/catalogview"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/middleware"
)

const (
	// SessionCookie carries the server-issued browser session ID
	SessionCookie = "storefront_session"

	pollParam   = "poll"
	rerenderURL = "/?" + pollParam + "=1"
)

// Defaults for Config
const (
	DefaultIdleTimeout = 10 * time.Minute
	DefaultMaxPages    = 10000
)

//go:embed templates/*.html
var templates embed.FS

// Config holds the collaborators of the storefront
type Config struct {
	Products catalogview.ProductLister
	Cart     catalogview.CartAdder
	Images   *assets.Resolver
	AutoHide time.Duration
	Logger   *slog.Logger

	// IdleTimeout unmounts pages not requested for this long
	IdleTimeout time.Duration
	// MaxPages bounds the live pages; the least recently used one is unmounted first
	MaxPages int
}

// Server renders catalog pages for signed-in shop carts
type Server struct {
	cfg  Config
	tmpl *template.Template
	log  *slog.Logger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

type session struct {
	user     *auth.Session
	page     *catalogview.Page
	lastSeen time.Time
}

type catalogData struct {
	Cards        []catalogview.Card
	Loading      bool
	Notification catalogview.Notification
	Refresh      bool
}

// New creates a storefront server
func New(cfg Config) (*Server, error) {
	if cfg.Images == nil {
		cfg.Images = assets.Bundled()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AutoHide <= 0 {
		cfg.AutoHide = catalogview.DefaultAutoHide
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}

	tmpl, err := template.ParseFS(templates, "templates/catalog.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		log:      cfg.Logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}, nil
}

// Handler returns the storefront routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.log))
	r.Use(chimiddleware.Recoverer)

	images, err := fs.Sub(s.cfg.Images.FS(), "images")
	if err == nil {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.FS(images))))
	} else {
		s.log.Error("image assets unavailable", "error", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.ShopCartAuth)

		r.Get("/", s.catalog)
		r.Post("/cart/{productId}", s.addToCart)
		r.Post("/notification/close", s.closeNotification)
	})

	return r
}

func (s *Server) catalog(w http.ResponseWriter, r *http.Request) {
	navigation := r.URL.Query().Get(pollParam) == ""

	page, ok := s.pageFor(w, r, navigation)
	if !ok {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	page.Mount()

	cards, err := page.Cards()
	if err != nil {
		s.log.Error("failed to render catalog", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	st := page.State()
	data := catalogData{
		Cards:        cards,
		Loading:      st.Loading,
		Notification: st.Notification,
		Refresh:      st.Loading || st.Notification.Open,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "catalog.html", data); err != nil {
		s.log.Error("failed to execute catalog template", "error", err)
	}
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	page, ok := s.pageFor(w, r, false)
	if !ok {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	page.Mount()

	product, found := page.Product(id)
	if !found {
		http.NotFound(w, r)
		return
	}

	page.AddToCartAsync(product)
	http.Redirect(w, r, rerenderURL, http.StatusSeeOther)
}

func (s *Server) closeNotification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	page, ok := s.pageFor(w, r, false)
	if !ok {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	reason := catalogview.CloseReason(r.PostForm.Get("reason"))
	if reason == "" {
		reason = catalogview.ReasonClose
	}
	page.CloseNotification(reason)

	http.Redirect(w, r, rerenderURL, http.StatusSeeOther)
}

// pageFor returns the page of the request's browser session. An unknown or
// missing session cookie starts a new session. With remount set, the current
// page is unmounted and replaced. It reports false once the server is closed.
func (s *Server) pageFor(w http.ResponseWriter, r *http.Request, remount bool) (*catalogview.Page, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, false
	}

	now := s.now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false
	}

	stale := s.evictIdleLocked(now)

	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, found := s.sessions[id]
	switch {
	case !found:
		if len(s.sessions) >= s.cfg.MaxPages {
			stale = append(stale, s.evictOldestLocked())
		}

		id = uuid.NewString()
		sess = &session{user: auth.NewSession(user)}
		sess.page = s.newPage(id, sess.user)
		s.sessions[id] = sess

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	case remount:
		sess.user.SetUser(user)
		stale = append(stale, sess.page)
		sess.page = s.newPage(id, sess.user)
	default:
		// The signed-in cart may change within a browser session.
		sess.user.SetUser(user)
	}

	sess.lastSeen = now
	page := sess.page
	s.mu.Unlock()

	unmountAll(stale)
	return page, true
}

func (s *Server) newPage(sessionID string, user auth.Context) *catalogview.Page {
	return catalogview.NewPage(s.cfg.Products, s.cfg.Cart, user,
		catalogview.WithLogger(s.log.With("session_id", sessionID)),
		catalogview.WithImages(s.cfg.Images),
		catalogview.WithAutoHide(s.cfg.AutoHide),
	)
}

func (s *Server) evictIdleLocked(now time.Time) []*catalogview.Page {
	var stale []*catalogview.Page
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.cfg.IdleTimeout {
			stale = append(stale, sess.page)
			delete(s.sessions, id)
		}
	}
	if len(stale) > 0 {
		s.log.Debug("idle pages evicted", "count", len(stale))
	}
	return stale
}

func (s *Server) evictOldestLocked() *catalogview.Page {
	var (
		oldestID string
		oldest   *session
	)
	for id, sess := range s.sessions {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, sess
		}
	}
	delete(s.sessions, oldestID)
	s.log.Warn("page limit reached, evicting least recently used page", "max_pages", s.cfg.MaxPages)
	return oldest.page
}

// Close unmounts every page and waits for their in-flight requests
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	pages := make([]*catalogview.Page, 0, len(s.sessions))
	for _, sess := range s.sessions {
		pages = append(pages, sess.page)
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	unmountAll(pages)
	s.log.Info("storefront pages unmounted", "count", len(pages))
}

func unmountAll(pages []*catalogview.Page) {
	var wg sync.WaitGroup
	for _, p := range pages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Unmount()
		}()
	}
	wg.Wait()
}
