package models

import "time"

// CartMergedEvent records the outcome of folding a guest cart into a user cart.
type CartMergedEvent struct {
	EventType   string    `json:"event_type"`
	UserID      string    `json:"user_id"`
	GuestLines  int       `json:"guest_lines"`
	MergedLines int       `json:"merged_lines"`
	FailedLines int       `json:"failed_lines"`
	Timestamp   time.Time `json:"timestamp"`
}

// CartClearedEvent is published when an authenticated cart is emptied.
type CartClearedEvent struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// IdentityEvent is the auth-service payload delivered through SNS -> SQS.
type IdentityEvent struct {
	EventType string `json:"event_type"` // user.signed_in | user.signed_out
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	Email     string `json:"email,omitempty"`
}
