package httpserver

import (
	"log/slog"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/craftorigin/storefront/internal/handlers"
	"github.com/craftorigin/storefront/internal/logging"
)

type Deps struct {
	Logger         *slog.Logger
	JWTSecret      []byte
	AuthHandler    *handlers.AuthHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	ArtworkHandler *handlers.ArtworkHandler
}

// New builds the full API router.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	if d.Logger != nil {
		e.Use(logging.RequestLogger(d.Logger))
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	api.GET("/artworks", d.ArtworkHandler.ListArtworks)
	api.GET("/artworks/:id", d.ArtworkHandler.GetArtwork)

	jwtMW := echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		SigningKey:    d.JWTSecret,
		ContextKey:    "user",
	})

	api.POST("/artworks", d.ArtworkHandler.CreateArtwork, jwtMW)

	cart := api.Group("/cart", jwtMW)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.PUT("/:artworkId", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:artworkId", d.CartHandler.RemoveFromCart)

	orders := api.Group("/orders", jwtMW)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.Checkout)

	return e
}
