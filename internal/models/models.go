package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleBuyer  = "BUYER"
	RoleArtist = "ARTIST"
	RoleAdmin  = "ADMIN"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:BUYER"   json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Artwork struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"not null"             json:"title"`
	Description string          `gorm:"not null"             json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	ArtistID    uuid.UUID       `gorm:"type:uuid;index"      json:"artist_id"`
	ArtistName  string          `gorm:"not null"             json:"artist_name"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (a *Artwork) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Cart belongs to exactly one buyer; the row is created lazily on first
// access.
type Cart struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	BuyerID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"buyer_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem is one artwork line; at most one row per (cart, artwork).
type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_cart_artwork;not null" json:"cart_id"`
	ArtworkID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_cart_artwork;not null" json:"artwork_id"`
	Quantity  int             `gorm:"not null;check:quantity>0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"buyer_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	Status      string          `gorm:"not null;default:PENDING" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ArtworkID uuid.UUID       `gorm:"type:uuid;not null"   json:"artwork_id"`
	Quantity  int             `gorm:"not null"             json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
