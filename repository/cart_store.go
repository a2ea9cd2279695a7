package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var cartConflictColumns = []clause.Column{{Name: "user_id"}, {Name: "product_id"}}

// GormCartStore keeps authenticated carts in the cart_items table. The unique
// (user_id, product_id) index is what keeps concurrent writers to one line per
// product.
type GormCartStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormCartStore(db *gorm.DB) *GormCartStore {
	return &GormCartStore{db: db, now: time.Now}
}

// FetchByOwner returns the owner's lines, oldest first, with the current
// product row attached.
func (r *GormCartStore) FetchByOwner(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("fetch cart lines: %w", err)
	}
	return lines, nil
}

// Upsert replaces the quantity of an existing line.
func (r *GormCartStore) Upsert(ctx context.Context, ownerID, productID string, quantity int) error {
	return r.write(ctx, ownerID, productID, quantity, clause.AssignmentColumns([]string{"quantity", "updated_at"}))
}

// Increment adds quantity to an existing line.
func (r *GormCartStore) Increment(ctx context.Context, ownerID, productID string, quantity int) error {
	return r.write(ctx, ownerID, productID, quantity, clause.Set{
		{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + EXCLUDED.quantity")},
		{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("EXCLUDED.updated_at")},
	})
}

func (r *GormCartStore) write(ctx context.Context, ownerID, productID string, quantity int, onConflict clause.Set) error {
	if quantity < 1 {
		return fmt.Errorf("upsert cart line: quantity %d below 1", quantity)
	}
	now := r.now()
	line := models.CartLine{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).
		Omit("Product").
		Clauses(clause.OnConflict{Columns: cartConflictColumns, DoUpdates: onConflict}).
		Create(&line).Error
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A missing line is not
// an error.
func (r *GormCartStore) UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("update cart line: quantity %d below 1", quantity)
	}
	if !validProductID(productID) {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("user_id = ? AND product_id = ?", ownerID, productID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": r.now()}).Error
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	return nil
}

// DeleteLine removes one line. A missing line, including one whose product id
// cannot exist in the uuid column, is not an error.
func (r *GormCartStore) DeleteLine(ctx context.Context, ownerID, productID string) error {
	if !validProductID(productID) {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", ownerID, productID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *GormCartStore) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func validProductID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
