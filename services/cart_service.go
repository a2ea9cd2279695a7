package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/identity"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"go.uber.org/zap"
)

// CartDeps are the collaborators of a CartService. Notifier, Events and Logger
// are optional.
type CartDeps struct {
	Products ProductLookup
	Store    CartStore
	Device   LocalDurableStore
	Identity IdentitySource
	Notifier Notifier
	Events   CartEvents
	Logger   *zap.Logger
	Now      func() time.Time
}

// CartService owns the cart of one shopper device. It keeps the cart in the
// device store while the shopper is a guest and in the cart store once they
// sign in, folding the guest cart into the user cart on sign-in.
//
// Mutations and identity changes are serialised; the read accessors never
// wait on I/O.
type CartService struct {
	products ProductLookup
	store    CartStore
	identity IdentitySource
	notifier Notifier
	events   CartEvents
	logger   *zap.Logger
	guest    *guestBackend

	opMu sync.Mutex

	mu          sync.RWMutex
	backend     cartBackend
	lines       []models.CartLine
	loading     bool
	unsubscribe func()
	disposed    bool
}

func NewCartService(deps CartDeps) *CartService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	guest := &guestBackend{device: deps.Device, logger: logger, now: now}
	return &CartService{
		products: deps.Products,
		store:    deps.Store,
		identity: deps.Identity,
		notifier: notifier,
		events:   deps.Events,
		logger:   logger,
		guest:    guest,
		backend:  guest,
		loading:  true,
	}
}

// Initialize picks the mode from the current session, loads the matching cart
// and starts listening for identity changes. A failed user-cart fetch leaves
// the service authenticated with an empty cart and is returned.
func (s *CartService) Initialize(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.isDisposed() {
		return ErrDisposed
	}

	var backend cartBackend = s.guest
	if userID, ok := s.identity.CurrentSession(ctx); ok {
		backend = &userBackend{userID: userID, store: s.store}
	}

	lines, err := backend.load(ctx)

	s.mu.Lock()
	s.backend = backend
	s.lines = lines
	s.loading = false
	if s.unsubscribe == nil {
		s.unsubscribe = s.identity.Subscribe(s.handleIdentity)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Failed to fetch cart", zap.String("owner", backend.owner()), zap.Error(err))
		return &StoreError{Op: "fetch cart", Err: err}
	}
	s.logger.Debug("Cart initialized",
		zap.String("mode", string(backend.mode())),
		zap.Int("lines", len(lines)),
	)
	return nil
}

// Dispose stops listening for identity changes. Later mutations fail with
// ErrDisposed.
func (s *CartService) Dispose() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.disposed = true
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *CartService) handleIdentity(ctx context.Context, ev identity.Event) error {
	switch ev.Type {
	case identity.SignedIn:
		return s.OnSignIn(ctx, ev.UserID)
	case identity.SignedOut:
		return s.OnSignOut(ctx)
	}
	return nil
}

// AddItem adds quantity units of product. An existing line grows by quantity
// in both modes; a line never grows past models.MaxLineQuantity.
func (s *CartService) AddItem(ctx context.Context, product *models.Product, quantity int) error {
	if product == nil || product.ID == "" {
		return ErrInvalidProduct
	}
	if quantity < 1 || quantity > models.MaxLineQuantity {
		return ErrInvalidQuantity
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.isDisposed() {
		return ErrDisposed
	}

	backend, lines := s.snapshot()
	if quantityOf(lines, product.ID) > models.MaxLineQuantity-quantity {
		return ErrInvalidQuantity
	}
	next, err := backend.add(ctx, lines, product, quantity)
	if err != nil {
		return s.fail(backend, "add item", "Failed to add item to cart", err,
			zap.String("product_id", product.ID))
	}
	s.commit(next)
	s.notifier.Notify(models.NoticeSuccess, fmt.Sprintf("%s added to cart", product.Name))
	return nil
}

// RemoveItem deletes the line for productID. Removing an absent line succeeds.
func (s *CartService) RemoveItem(ctx context.Context, productID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.isDisposed() {
		return ErrDisposed
	}
	return s.removeLocked(ctx, productID)
}

func (s *CartService) removeLocked(ctx context.Context, productID string) error {
	backend, lines := s.snapshot()
	next, err := backend.remove(ctx, lines, productID)
	if err != nil {
		return s.fail(backend, "remove item", "Failed to remove item", err,
			zap.String("product_id", productID))
	}
	s.commit(next)
	s.notifier.Notify(models.NoticeSuccess, "Item removed from cart")
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity below 1
// removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if quantity > models.MaxLineQuantity {
		return ErrInvalidQuantity
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.isDisposed() {
		return ErrDisposed
	}

	if quantity < 1 {
		return s.removeLocked(ctx, productID)
	}

	backend, lines := s.snapshot()
	next, err := backend.setQuantity(ctx, lines, productID, quantity)
	if err != nil {
		return s.fail(backend, "update quantity", "Failed to update quantity", err,
			zap.String("product_id", productID), zap.Int("quantity", quantity))
	}
	s.commit(next)
	return nil
}

// Clear removes every line of the current owner. The outcome is always
// signalled through the notifier as well as the returned error.
func (s *CartService) Clear(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.isDisposed() {
		return ErrDisposed
	}

	backend, _ := s.snapshot()
	if err := backend.clear(ctx); err != nil {
		return s.fail(backend, "clear cart", "Failed to clear cart", err)
	}
	s.commit(nil)
	s.notifier.Notify(models.NoticeSuccess, "Cart cleared")

	if backend.mode() == ModeAuthenticated && s.events != nil {
		s.events.CartCleared(ctx, models.CartClearedEvent{
			EventType: "cart.cleared",
			UserID:    backend.owner(),
			Reason:    "cleared",
			Timestamp: time.Now().UTC(),
		})
	}
	return nil
}

// RemoveCheckedOut takes the quantities of a checked-out snapshot off the
// cart. Lines added or grown after the snapshot was taken keep the
// difference.
func (s *CartService) RemoveCheckedOut(ctx context.Context, checkedOut []models.CartLine) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.isDisposed() {
		return ErrDisposed
	}

	backend, lines := s.snapshot()
	for _, taken := range checkedOut {
		current := quantityOf(lines, taken.ProductID)
		if current == 0 {
			continue
		}
		var next []models.CartLine
		var err error
		if left := current - taken.Quantity; left > 0 {
			next, err = backend.setQuantity(ctx, lines, taken.ProductID, left)
		} else {
			next, err = backend.remove(ctx, lines, taken.ProductID)
		}
		if err != nil {
			s.commit(lines)
			return s.fail(backend, "remove checked out items", "Failed to update cart after checkout", err,
				zap.String("product_id", taken.ProductID))
		}
		lines = next
	}
	s.commit(lines)

	if len(lines) == 0 && backend.mode() == ModeAuthenticated && s.events != nil {
		s.events.CartCleared(ctx, models.CartClearedEvent{
			EventType: "cart.cleared",
			UserID:    backend.owner(),
			Reason:    "checkout",
			Timestamp: time.Now().UTC(),
		})
	}
	return nil
}

// OnSignIn folds the guest cart into userID's cart and switches to
// authenticated mode. Each guest line replaces the user's quantity for that
// product. Individual write failures are logged and skipped; the guest cart
// is erased once the loop is done either way.
func (s *CartService) OnSignIn(ctx context.Context, userID string) error {
	if userID == "" {
		return identity.ErrMissingUser
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.isDisposed() {
		return ErrDisposed
	}

	guestLines, _ := s.guest.load(ctx)
	merged, failed := 0, 0
	for _, line := range guestLines {
		if !s.resolvable(ctx, line) {
			s.logger.Info("Skipping guest line with unknown product", zap.String("product_id", line.ProductID))
			continue
		}
		if err := s.store.Upsert(ctx, userID, line.ProductID, line.Quantity); err != nil {
			failed++
			s.logger.Error("Failed to merge guest line",
				zap.String("user_id", userID),
				zap.String("product_id", line.ProductID),
				zap.Error(err),
			)
			continue
		}
		merged++
	}
	if err := s.guest.clear(ctx); err != nil {
		s.logger.Warn("Failed to erase guest cart after merge", zap.Error(err))
	}

	backend := &userBackend{userID: userID, store: s.store}
	lines, err := backend.load(ctx)

	s.mu.Lock()
	s.backend = backend
	s.lines = lines
	s.loading = false
	s.mu.Unlock()

	if len(guestLines) > 0 && s.events != nil {
		s.events.CartMerged(ctx, models.CartMergedEvent{
			EventType:   "cart.merged",
			UserID:      userID,
			GuestLines:  len(guestLines),
			MergedLines: merged,
			FailedLines: failed,
			Timestamp:   time.Now().UTC(),
		})
	}

	if err != nil {
		s.logger.Error("Failed to fetch cart after sign-in", zap.String("user_id", userID), zap.Error(err))
		s.notifier.Notify(models.NoticeError, "Failed to load your cart")
		return &StoreError{Op: "fetch cart", Err: err}
	}
	s.logger.Info("Signed in cart ready",
		zap.String("user_id", userID),
		zap.Int("guest_lines", len(guestLines)),
		zap.Int("merged", merged),
		zap.Int("failed", failed),
	)
	return nil
}

// OnSignOut drops the in-memory user cart and starts an empty guest cart.
// The cart store is not touched.
func (s *CartService) OnSignOut(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.isDisposed() {
		return ErrDisposed
	}

	if err := s.guest.clear(ctx); err != nil {
		s.logger.Warn("Failed to reset guest cart on sign-out", zap.Error(err))
	}

	s.mu.Lock()
	s.backend = s.guest
	s.lines = nil
	s.loading = false
	s.mu.Unlock()
	return nil
}

// resolvable reports whether a guest line points at a product that can be
// priced: either it carries a snapshot or the catalog still knows it.
func (s *CartService) resolvable(ctx context.Context, line models.CartLine) bool {
	if line.Product != nil {
		return true
	}
	if s.products == nil {
		return false
	}
	p, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		s.logger.Warn("Product lookup failed during merge", zap.String("product_id", line.ProductID), zap.Error(err))
		return false
	}
	return p != nil
}

func (s *CartService) fail(backend cartBackend, op, message string, err error, fields ...zap.Field) error {
	fields = append(fields,
		zap.String("mode", string(backend.mode())),
		zap.String("owner", backend.owner()),
		zap.Error(err),
	)
	s.logger.Error("Cart operation failed: "+op, fields...)
	s.notifier.Notify(models.NoticeError, message)
	return &StoreError{Op: op, Err: err}
}

func (s *CartService) snapshot() (cartBackend, []models.CartLine) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend, s.lines
}

func (s *CartService) commit(lines []models.CartLine) {
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

func (s *CartService) isDisposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// Items returns a copy of the current lines.
func (s *CartService) Items() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.lines)
}

func (s *CartService) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend.mode()
}

// OwnerID is "guest" or the signed-in user id.
func (s *CartService) OwnerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend.owner()
}

// Loading is true until Initialize has finished.
func (s *CartService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *CartService) TotalItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalItemCount(s.lines)
}

func (s *CartService) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalPrice(s.lines)
}

// View returns the cart as one consistent read model.
func (s *CartService) View() models.CartView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := cloneLines(s.lines)
	return models.CartView{
		Mode:       string(s.backend.mode()),
		OwnerID:    s.backend.owner(),
		Items:      items,
		TotalItems: TotalItemCount(items),
		TotalPrice: TotalPrice(items),
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(models.NoticeLevel, string) {}
