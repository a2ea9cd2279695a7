package models

import "time"

// GuestOwner is the owner id carried by every line of a guest cart.
const GuestOwner = "guest"

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

// CartLine is one product in a cart. Quantity is always at least 1; lines are
// removed rather than zeroed.
type CartLine struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(128);not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Product   *Product  `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
}

// TableName keeps the table name shared with the storefront database.
func (CartLine) TableName() string {
	return "cart_items"
}

// CartView is the read model returned to clients.
type CartView struct {
	Mode       string     `json:"mode"`
	OwnerID    string     `json:"owner_id"`
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
	Notices    []Notice   `json:"notices,omitempty"`
}

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message shown to the shopper, e.g. "RTX 4070 added to cart".
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}
