package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/craftorigin/storefront/internal/events"
	"github.com/craftorigin/storefront/internal/logging"
	"github.com/craftorigin/storefront/internal/models"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

type CartLineDetail struct {
	ID         uuid.UUID       `json:"id"`
	CartID     uuid.UUID       `json:"cart_id"`
	ArtworkID  uuid.UUID       `json:"artwork_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Title      string          `json:"title"`
	ImageURL   string          `json:"image_url,omitempty"`
	ArtistName string          `json:"artist_name"`
}

type CartResponse struct {
	ID          uuid.UUID        `json:"id"`
	BuyerID     uuid.UUID        `json:"buyer_id"`
	Items       []CartLineDetail `json:"items"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

// getOrCreateCart returns the buyer's cart row, creating it on first access.
func (h *CartHandler) getOrCreateCart(c echo.Context, buyerID uuid.UUID) (*models.Cart, error) {
	ctx := c.Request().Context()
	var cart models.Cart
	err := h.DB.WithContext(ctx).Where("buyer_id = ?", buyerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{BuyerID: buyerID}
		err = h.DB.WithContext(ctx).Create(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// snapshot builds the full cart response: lines joined with artwork display
// fields plus the server-computed total.
func (h *CartHandler) snapshot(c echo.Context, cart *models.Cart) (*CartResponse, error) {
	ctx := c.Request().Context()

	var items []models.CartItem
	if err := h.DB.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	resp := &CartResponse{
		ID:          cart.ID,
		BuyerID:     cart.BuyerID,
		Items:       make([]CartLineDetail, 0, len(items)),
		TotalAmount: decimal.Zero,
	}

	for _, item := range items {
		var artwork models.Artwork
		if err := h.DB.WithContext(ctx).First(&artwork, "id = ?", item.ArtworkID).Error; err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, CartLineDetail{
			ID:         item.ID,
			CartID:     item.CartID,
			ArtworkID:  item.ArtworkID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Title:      artwork.Title,
			ImageURL:   artwork.ImageURL,
			ArtistName: artwork.ArtistName,
		})
		resp.TotalAmount = resp.TotalAmount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return resp, nil
}

func (h *CartHandler) respondSnapshot(c echo.Context, cart *models.Cart) error {
	resp, err := h.snapshot(c, cart)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("cart_snapshot_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	buyerID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	cart, err := h.getOrCreateCart(c, buyerID)
	if err != nil {
		l.Error("get_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}
	return h.respondSnapshot(c, cart)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	buyerID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	var req struct {
		ArtworkID uuid.UUID `json:"artwork_id"`
		Quantity  int       `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("invalid body"))
	}
	if req.ArtworkID == uuid.Nil || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, msg("artwork_id and quantity >= 1 are required"))
	}

	var artwork models.Artwork
	if err := h.DB.WithContext(ctx).First(&artwork, "id = ?", req.ArtworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, msg("Artwork not found"))
		}
		l.Error("add_to_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	cart, err := h.getOrCreateCart(c, buyerID)
	if err != nil {
		l.Error("add_to_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	// Increment the existing line or create it; the unit price is
	// re-snapshotted from the artwork on every add.
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND artwork_id = ?", cart.ID, req.ArtworkID).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", req.Quantity),
				"unit_price": artwork.Price,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&models.CartItem{
			CartID:    cart.ID,
			ArtworkID: req.ArtworkID,
			Quantity:  req.Quantity,
			UnitPrice: artwork.Price,
		}).Error
	})
	if err != nil {
		l.Error("add_to_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	event := map[string]any{
		"type":       "cart_item_added",
		"buyer_id":   buyerID,
		"artwork_id": req.ArtworkID,
		"quantity":   req.Quantity,
	}
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, buyerID.String(), event); err != nil {
		l.Error("kafka_publish_error", "error", err)
	}

	l.Info("item added to cart", "artwork_id", req.ArtworkID)
	return h.respondSnapshot(c, cart)
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	buyerID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	artworkID, err := uuid.Parse(c.Param("artworkId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, msg("invalid artwork id"))
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("invalid body"))
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, msg("Quantity must be at least 1"))
	}

	cart, err := h.getOrCreateCart(c, buyerID)
	if err != nil {
		l.Error("update_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	res := h.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND artwork_id = ?", cart.ID, artworkID).
		Update("quantity", req.Quantity)
	if res.Error != nil {
		l.Error("update_cart_error", "error", res.Error)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, msg("Item not found in cart"))
	}

	return h.respondSnapshot(c, cart)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	buyerID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	artworkID, err := uuid.Parse(c.Param("artworkId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, msg("invalid artwork id"))
	}

	cart, err := h.getOrCreateCart(c, buyerID)
	if err != nil {
		l.Error("remove_from_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	if err := h.DB.WithContext(ctx).
		Where("cart_id = ? AND artwork_id = ?", cart.ID, artworkID).
		Delete(&models.CartItem{}).Error; err != nil {
		l.Error("remove_from_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	return h.respondSnapshot(c, cart)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	buyerID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	cart, err := h.getOrCreateCart(c, buyerID)
	if err != nil {
		l.Error("clear_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	if err := h.DB.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Delete(&models.CartItem{}).Error; err != nil {
		l.Error("clear_cart_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	l.Info("cart cleared", "buyer_id", buyerID)
	return c.JSON(http.StatusOK, msg("Cart cleared"))
}
