package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"go.uber.org/zap"
)

// GuestCartKey is the device-store key holding the guest cart.
const GuestCartKey = "guest_cart"

// Mode says where the cart of a session lives.
type Mode string

const (
	ModeGuest         Mode = "guest"
	ModeAuthenticated Mode = "authenticated"
)

// cartBackend is one place a cart can live. Mutations take the current lines
// and return the lines to show afterwards; on error the caller keeps the old
// lines.
type cartBackend interface {
	mode() Mode
	owner() string
	load(ctx context.Context) ([]models.CartLine, error)
	add(ctx context.Context, lines []models.CartLine, product *models.Product, quantity int) ([]models.CartLine, error)
	remove(ctx context.Context, lines []models.CartLine, productID string) ([]models.CartLine, error)
	setQuantity(ctx context.Context, lines []models.CartLine, productID string, quantity int) ([]models.CartLine, error)
	clear(ctx context.Context) error
}

// guestBackend keeps the cart as a JSON array under GuestCartKey.
type guestBackend struct {
	device LocalDurableStore
	logger *zap.Logger
	now    func() time.Time
}

func (g *guestBackend) mode() Mode    { return ModeGuest }
func (g *guestBackend) owner() string { return models.GuestOwner }

// load never fails: a missing, unreadable or corrupt entry is an empty cart.
func (g *guestBackend) load(ctx context.Context) ([]models.CartLine, error) {
	data, ok, err := g.device.Get(ctx, GuestCartKey)
	if err != nil {
		g.logger.Warn("Guest cart unreadable, starting empty", zap.Error(err))
		return nil, nil
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		g.logger.Warn("Guest cart corrupt, starting empty", zap.Error(err))
		return nil, nil
	}
	return normalizeLines(lines), nil
}

func (g *guestBackend) add(ctx context.Context, lines []models.CartLine, product *models.Product, quantity int) ([]models.CartLine, error) {
	now := g.now()
	next := cloneLines(lines)
	snapshot := *product

	found := false
	for i := range next {
		if next[i].ProductID == product.ID {
			next[i].Quantity += quantity
			next[i].UpdatedAt = now
			next[i].Product = &snapshot
			found = true
			break
		}
	}
	if !found {
		next = append(next, models.CartLine{
			ID:        uuid.NewString(),
			UserID:    models.GuestOwner,
			ProductID: product.ID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
			Product:   &snapshot,
		})
	}
	return next, g.save(ctx, next)
}

func (g *guestBackend) remove(ctx context.Context, lines []models.CartLine, productID string) ([]models.CartLine, error) {
	next := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID != productID {
			next = append(next, l)
		}
	}
	return next, g.save(ctx, next)
}

func (g *guestBackend) setQuantity(ctx context.Context, lines []models.CartLine, productID string, quantity int) ([]models.CartLine, error) {
	next := cloneLines(lines)
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity = quantity
			next[i].UpdatedAt = g.now()
		}
	}
	return next, g.save(ctx, next)
}

func (g *guestBackend) clear(ctx context.Context) error {
	return g.device.Remove(ctx, GuestCartKey)
}

func (g *guestBackend) save(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return g.device.Set(ctx, GuestCartKey, data)
}

// userBackend writes through the cart store and re-reads the cart so the
// shown lines always match the server.
type userBackend struct {
	userID string
	store  CartStore
}

func (u *userBackend) mode() Mode    { return ModeAuthenticated }
func (u *userBackend) owner() string { return u.userID }

func (u *userBackend) load(ctx context.Context) ([]models.CartLine, error) {
	lines, err := u.store.FetchByOwner(ctx, u.userID)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (u *userBackend) add(ctx context.Context, _ []models.CartLine, product *models.Product, quantity int) ([]models.CartLine, error) {
	if err := u.store.Increment(ctx, u.userID, product.ID, quantity); err != nil {
		return nil, err
	}
	return u.load(ctx)
}

func (u *userBackend) remove(ctx context.Context, _ []models.CartLine, productID string) ([]models.CartLine, error) {
	if err := u.store.DeleteLine(ctx, u.userID, productID); err != nil {
		return nil, err
	}
	return u.load(ctx)
}

func (u *userBackend) setQuantity(ctx context.Context, _ []models.CartLine, productID string, quantity int) ([]models.CartLine, error) {
	if err := u.store.UpdateQuantity(ctx, u.userID, productID, quantity); err != nil {
		return nil, err
	}
	return u.load(ctx)
}

func (u *userBackend) clear(ctx context.Context) error {
	return u.store.DeleteAllByOwner(ctx, u.userID)
}

// normalizeLines drops lines with no product or a quantity below 1, caps
// quantities at models.MaxLineQuantity and folds duplicate products into the
// first line, so stored data cannot break the one-line-per-product rule.
func normalizeLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		l.Quantity = min(l.Quantity, models.MaxLineQuantity)
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity = min(out[i].Quantity+l.Quantity, models.MaxLineQuantity)
			continue
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		l.UserID = models.GuestOwner
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

func quantityOf(lines []models.CartLine, productID string) int {
	for _, l := range lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}
