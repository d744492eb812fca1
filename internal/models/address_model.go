package models

import "time"

// Address is an entry of a user's address book (Mexican postal format).
type Address struct {
	ID             string    `json:"id" firestore:"-"`
	FullName       string    `json:"fullName" firestore:"fullName"`
	Phone          string    `json:"phone" firestore:"phone"`
	Street         string    `json:"street" firestore:"street"`
	ExteriorNumber string    `json:"exteriorNumber" firestore:"exteriorNumber"`
	InteriorNumber string    `json:"interiorNumber,omitempty" firestore:"interiorNumber,omitempty"`
	Neighborhood   string    `json:"neighborhood" firestore:"neighborhood"`
	City           string    `json:"city" firestore:"city"`
	State          string    `json:"state" firestore:"state"`
	PostalCode     string    `json:"postalCode" firestore:"postalCode"`
	References     string    `json:"references,omitempty" firestore:"references,omitempty"`
	IsDefault      bool      `json:"isDefault" firestore:"isDefault"`
	OwnerID        string    `json:"ownerId" firestore:"ownerId"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
