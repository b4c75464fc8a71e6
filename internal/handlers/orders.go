package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/craftorigin/storefront/internal/events"
	"github.com/craftorigin/storefront/internal/logging"
	"github.com/craftorigin/storefront/internal/models"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

var errEmptyCart = errors.New("empty cart")

// Checkout turns the buyer's cart into an order in one transaction and
// clears the cart.
func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.checkout")

	buyerID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	var order models.Order
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("buyer_id = ?", buyerID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errEmptyCart
			}
			return err
		}

		var items []models.CartItem
		if err := tx.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return errEmptyCart
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		order = models.Order{
			BuyerID:     buyerID,
			TotalAmount: total,
			Status:      "PENDING",
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				ArtworkID: item.ArtworkID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		if errors.Is(err, errEmptyCart) {
			return c.JSON(http.StatusBadRequest, msg("Cart is empty"))
		}
		l.Error("checkout_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	event := map[string]any{
		"type":         "order_created",
		"order_id":     order.ID,
		"buyer_id":     buyerID,
		"total_amount": order.TotalAmount,
	}
	if err := h.Producer.PublishEvent(ctx, events.TopicOrderEvents, order.ID.String(), event); err != nil {
		l.Error("kafka_publish_error", "error", err)
	}

	l.Info("order created", "order_id", order.ID, "total", order.TotalAmount)
	return c.JSON(http.StatusCreated, order)
}

// ListOrders returns the buyer's order history, newest first.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	buyerID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	var orders []models.Order
	if err := h.DB.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		l.Error("list_orders_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}
	return c.JSON(http.StatusOK, orders)
}
