package models

import "time"

// CartItem is one line of a user's server-side cart or favorites list,
// keyed by the product's uniqueID.
type CartItem struct {
	UniqueID string    `json:"uniqueID" firestore:"uniqueID"`
	Qty      int       `json:"qty" firestore:"qty"`
	AddedAt  time.Time `json:"addedAt" firestore:"addedAt,serverTimestamp"`
}

// LocalCartItem is an entry of the device-local cart sent by the client on login.
type LocalCartItem struct {
	UniqueID string `json:"uniqueID" binding:"required"`
	Qty      int    `json:"qty"`
}

// CartLine is a cart item resolved against the current catalog.
type CartLine struct {
	Product   ProductSummary `json:"product"`
	Qty       int            `json:"qty"`
	LineTotal float64        `json:"lineTotal"`
}

// CartView is the resolved cart returned to clients.
type CartView struct {
	Lines  []CartLine `json:"lines"`
	Totals Totals     `json:"totals"`
}

// MergeResult reports the outcome of replaying a local cart against the server.
type MergeResult struct {
	Merged []string          `json:"merged"`
	Failed map[string]string `json:"failed,omitempty"`
}
