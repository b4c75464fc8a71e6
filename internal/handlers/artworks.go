package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/craftorigin/storefront/internal/logging"
	"github.com/craftorigin/storefront/internal/models"
	"github.com/craftorigin/storefront/internal/search"
)

type ArtworkHandler struct {
	DB       *gorm.DB
	Searcher *search.Searcher
}

// ListArtworks returns the catalog, filtered by the search query when given.
func (h *ArtworkHandler) ListArtworks(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "artworks.list")

	query := c.QueryParam("search")
	artworks, err := h.Searcher.Search(ctx, query)
	if err != nil {
		l.Error("list_artworks_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}
	return c.JSON(http.StatusOK, artworks)
}

// CreateArtwork adds a catalog entry; only artists and admins may publish.
func (h *ArtworkHandler) CreateArtwork(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "artworks.create")

	role := Role(c)
	if role != models.RoleArtist && role != models.RoleAdmin {
		return c.JSON(http.StatusForbidden, msg("Only artists can publish artworks"))
	}
	artistID, err := BuyerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, msg("unauthorized"))
	}

	var req struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		ImageURL    string          `json:"image_url"`
		ArtistName  string          `json:"artist_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, msg("invalid body"))
	}
	if req.Title == "" || req.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, msg("Title and a non-negative price are required"))
	}

	artwork := models.Artwork{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		ArtistID:    artistID,
		ArtistName:  req.ArtistName,
	}
	if err := h.DB.WithContext(ctx).Create(&artwork).Error; err != nil {
		l.Error("create_artwork_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}

	h.Searcher.IndexArtwork(ctx, &artwork)

	l.Info("artwork published", "artwork_id", artwork.ID)
	return c.JSON(http.StatusCreated, artwork)
}

// GetArtwork returns one catalog entry.
func (h *ArtworkHandler) GetArtwork(c echo.Context) error {
	ctx := c.Request().Context()

	var artwork models.Artwork
	if err := h.DB.WithContext(ctx).First(&artwork, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, msg("Artwork not found"))
		}
		logging.FromContext(ctx).Error("get_artwork_error", "error", err)
		return c.JSON(http.StatusInternalServerError, msg("internal error"))
	}
	return c.JSON(http.StatusOK, artwork)
}
