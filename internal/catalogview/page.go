// Package catalogview holds the state of the products catalog page: the
// product list fetched on mount, the add-to-cart activity indicator and the
// snackbar notification.
//
// A Page is safe for concurrent use. Every request it issues carries the
// page context, which Unmount cancels; results that arrive after Unmount are
// dropped.
package catalogview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/assets"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/auth"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/catalogclient"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

// Notification messages
const (
	MsgAddedToCart     = "Product added to cart"
	MsgAddToCartFailed = "Failed to add product to cart"
)

// ProductLister fetches the catalog
type ProductLister interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// CartAdder adds a product line to a shop cart
type CartAdder interface {
	AddProduct(ctx context.Context, req models.CartAddRequest) (*models.CartItem, error)
}

// State is a snapshot of the page
type State struct {
	Products     []models.Product
	Loading      bool
	Pending      int
	Notification Notification
	// LoadErr is the initial fetch failure, if any. It is not shown to the user.
	LoadErr error
}

// Page is the catalog view of one signed-in user
type Page struct {
	products ProductLister
	cart     CartAdder
	user     auth.Context
	images   *assets.Resolver
	snackbar *Snackbar
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mountOnce sync.Once
	tasks     sync.WaitGroup

	mu        sync.RWMutex
	items     []models.Product
	pending   int
	loadErr   error
	unmounted bool
}

type pageOptions struct {
	parent   context.Context
	logger   *slog.Logger
	images   *assets.Resolver
	autoHide time.Duration
}

// Option configures a Page
type Option func(*pageOptions)

// WithContext derives the page context from ctx instead of context.Background
func WithContext(ctx context.Context) Option {
	return func(o *pageOptions) {
		o.parent = ctx
	}
}

// WithLogger sets the logger; the page adds a component attribute
func WithLogger(logger *slog.Logger) Option {
	return func(o *pageOptions) {
		o.logger = logger
	}
}

// WithImages sets the resolver used by Cards
func WithImages(images *assets.Resolver) Option {
	return func(o *pageOptions) {
		o.images = images
	}
}

// WithAutoHide sets the snackbar auto-hide duration
func WithAutoHide(d time.Duration) Option {
	return func(o *pageOptions) {
		o.autoHide = d
	}
}

// NewPage creates an unmounted page
func NewPage(products ProductLister, cart CartAdder, user auth.Context, opts ...Option) *Page {
	o := pageOptions{
		parent:   context.Background(),
		logger:   slog.Default(),
		images:   assets.Bundled(),
		autoHide: DefaultAutoHide,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(o.parent)

	return &Page{
		products: products,
		cart:     cart,
		user:     user,
		images:   o.images,
		snackbar: NewSnackbar(o.autoHide),
		log:      o.logger.With("component", "catalogview"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Mount fetches the product list. Only the first call fetches; later and
// concurrent calls return once that fetch has finished.
func (p *Page) Mount() {
	p.mountOnce.Do(p.fetchProducts)
}

func (p *Page) fetchProducts() {
	products, err := p.products.ListProducts(p.ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unmounted {
		p.log.Debug("dropping product list received after unmount")
		return
	}

	if err != nil {
		// The catalog stays empty and the user is not told.
		p.log.Error("error fetching products", "error", err)
		p.loadErr = err
		return
	}

	p.items = products
	p.log.Debug("products loaded", "count", len(products))
}

// AddToCart sends the product to the current user's shop cart and reports the
// outcome in the snackbar. Loading stays true while any call is in flight.
func (p *Page) AddToCart(product models.Product) {
	p.begin()
	defer p.end()

	// Read at call time: the signed-in user may have changed since mount.
	shopCartID := p.user.CurrentUser().ShopCartID
	req := models.NewCartAddRequest(product, shopCartID)

	item, err := p.cart.AddProduct(p.ctx, req)
	switch {
	case err == nil:
		p.log.Info("product added to cart",
			"cart_item_id", item.CartItemID,
			"shop_cart_id", shopCartID,
			"product_id", product.ProductID,
		)
		p.notify(SeveritySuccess, MsgAddedToCart)
	case errors.Is(err, catalogclient.ErrMalformedResponse):
		p.log.Warn("product added to cart with unreadable response",
			"error", err,
			"shop_cart_id", shopCartID,
			"product_id", product.ProductID,
		)
		p.notify(SeveritySuccess, MsgAddedToCart)
	default:
		p.log.Error("error adding product to cart",
			"error", err,
			"shop_cart_id", shopCartID,
			"product_id", product.ProductID,
		)
		p.notify(SeverityError, MsgAddToCartFailed)
	}
}

// AddToCartAsync runs AddToCart in the background. Unmount waits for it.
// Calls after Unmount are ignored.
func (p *Page) AddToCartAsync(product models.Product) {
	p.mu.Lock()
	if p.unmounted {
		p.mu.Unlock()
		return
	}
	p.tasks.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.tasks.Done()
		p.AddToCart(product)
	}()
}

// CloseNotification closes the snackbar. A clickaway leaves it open.
func (p *Page) CloseNotification(reason CloseReason) bool {
	return p.snackbar.Close(reason)
}

// Unmount cancels in-flight requests, waits for background work and stops
// the snackbar timer. The page keeps its last state.
func (p *Page) Unmount() {
	p.mu.Lock()
	p.unmounted = true
	p.mu.Unlock()

	p.cancel()
	p.tasks.Wait()
	p.snackbar.Stop()
}

// Done is closed once the page is unmounted or its parent context ends
func (p *Page) Done() <-chan struct{} {
	return p.ctx.Done()
}

// State returns a snapshot of the page
func (p *Page) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	products := make([]models.Product, len(p.items))
	copy(products, p.items)

	return State{
		Products:     products,
		Loading:      p.pending > 0,
		Pending:      p.pending,
		Notification: p.snackbar.Current(),
		LoadErr:      p.loadErr,
	}
}

// Product looks up a product of the current list by ID
func (p *Page) Product(id int64) (models.Product, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, product := range p.items {
		if product.ProductID == id {
			return product, true
		}
	}
	return models.Product{}, false
}

// Cards renders the current product list
func (p *Page) Cards() ([]Card, error) {
	return BuildCards(p.State().Products, p.images)
}

func (p *Page) begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending++
}

func (p *Page) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending--
}

func (p *Page) notify(severity Severity, message string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.unmounted {
		return
	}
	p.snackbar.Show(severity, message)
}
