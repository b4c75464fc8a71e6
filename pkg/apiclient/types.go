package apiclient

import (
	"github.com/shopspring/decimal"

	"github.com/craftorigin/storefront/pkg/session"
)

// CartLine is one artwork entry in a cart, joined with its display fields.
type CartLine struct {
	ID         string          `json:"id"`
	CartID     string          `json:"cart_id"`
	ArtworkID  string          `json:"artwork_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Title      string          `json:"title"`
	ImageURL   string          `json:"image_url,omitempty"`
	ArtistName string          `json:"artist_name"`
}

type Cart struct {
	ID          string          `json:"id"`
	BuyerID     string          `json:"buyer_id"`
	Items       []CartLine      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type Order struct {
	ID          string          `json:"id"`
	BuyerID     string          `json:"buyer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

type Artwork struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	ArtistName  string          `json:"artist_name"`
}

// Credentials is the auth endpoints' response.
type Credentials struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}
