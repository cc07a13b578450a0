package stores

import (
	"time"

	"github.com/google/uuid"
)

// Store is one connected Shopify store with its messaging credentials.
// The dispatch core treats this as read-only input.
type Store struct {
	ID            uuid.UUID
	ShopDomain    string
	BrandName     string
	OnlineShopURL string
	PhoneNumber   string
	CountryCode   string
	APIKey        string
	CompanyID     string
	PhoneNumberID string
	WebhookSecret string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Credentials is the subset of store fields needed to authenticate and
// address an outbound send.
type Credentials struct {
	APIKey        string
	CompanyID     string
	PhoneNumberID string
}

// Credentials returns the provider credentials for this store.
func (s Store) Credentials() Credentials {
	return Credentials{
		APIKey:        s.APIKey,
		CompanyID:     s.CompanyID,
		PhoneNumberID: s.PhoneNumberID,
	}
}
