package httpserver

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/craftorigin/storefront/internal/handlers"
	"github.com/craftorigin/storefront/internal/models"
	"github.com/craftorigin/storefront/internal/search"
	"github.com/craftorigin/storefront/pkg/apiclient"
	"github.com/craftorigin/storefront/pkg/cart"
	"github.com/craftorigin/storefront/pkg/notify"
	"github.com/craftorigin/storefront/pkg/session"
	"github.com/craftorigin/storefront/pkg/storage"
)

func startServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Artwork{}, &models.Cart{},
		&models.CartItem{}, &models.Order{}, &models.OrderItem{},
	))

	secret := []byte("e2e-secret")
	e := New(&Deps{
		JWTSecret:      secret,
		AuthHandler:    &handlers.AuthHandler{DB: db, JWTSecret: secret},
		CartHandler:    &handlers.CartHandler{DB: db},
		OrderHandler:   &handlers.OrderHandler{DB: db},
		ArtworkHandler: &handlers.ArtworkHandler{DB: db, Searcher: &search.Searcher{DB: db}},
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, db
}

func seedArtwork(t *testing.T, db *gorm.DB, title, price string) *models.Artwork {
	t.Helper()
	artwork := models.Artwork{
		Title:      title,
		Price:      decimal.RequireFromString(price),
		ArtistName: "Nia",
	}
	require.NoError(t, db.Create(&artwork).Error)
	return &artwork
}

// TestStorefrontAgainstServer runs the whole client stack against the real
// router: register, browse, fill the cart, adjust it, and check out.
func TestStorefrontAgainstServer(t *testing.T) {
	srv, db := startServer(t)
	mask := seedArtwork(t, db, "Beaded Mask", "40.00")
	basket := seedArtwork(t, db, "Woven Basket", "25.00")

	sess := session.New(storage.NewMemoryStore())
	api := apiclient.New(srv.URL, sess.Token)
	toasts := notify.NewChannel(0)
	defer toasts.Close()
	engine := cart.NewEngine(api, sess, toasts)

	ctx := context.Background()

	// Anonymous cart access is rejected by the middleware.
	_, err := api.GetCart(ctx)
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, apiclient.KindAuth, apiErr.Kind)

	creds, err := api.Register(ctx, "Imani", "imani@example.com", "password")
	require.NoError(t, err)
	require.NotEmpty(t, creds.Token)
	require.Equal(t, session.RoleBuyer, creds.User.Role)

	// Login fires the engine's load hook; the fresh cart is empty.
	sess.Login(creds.Token, creds.User)
	require.Zero(t, engine.Count().Get())

	found, err := api.SearchArtworks(ctx, "mask")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, mask.ID.String(), found[0].ID)

	engine.Add(ctx, mask.ID.String(), 2)
	engine.Add(ctx, basket.ID.String(), 1)
	require.Equal(t, 3, engine.Count().Get())
	require.True(t, engine.Total().Get().Equal(decimal.RequireFromString("105.00")))
	require.True(t, engine.Opened().Get())

	engine.UpdateQuantity(ctx, mask.ID.String(), 1)
	require.Equal(t, 2, engine.Count().Get())
	require.True(t, engine.Total().Get().Equal(decimal.RequireFromString("65.00")))

	engine.Remove(ctx, basket.ID.String())
	require.Equal(t, 1, engine.Count().Get())

	order, err := engine.Checkout(ctx)
	require.NoError(t, err)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("40.00")))

	// Checkout drained the server-side cart.
	engine.Load(ctx)
	require.Zero(t, engine.Count().Get())
	require.Empty(t, engine.Items().Get())

	orders, err := api.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)

	sess.Logout()
	require.False(t, sess.IsAuthenticated())
	require.Zero(t, engine.Count().Get())
}

// TestSessionRestoreAcrossClients verifies a persisted token keeps working in
// a new client stack without logging in again.
func TestSessionRestoreAcrossClients(t *testing.T) {
	srv, db := startServer(t)
	mask := seedArtwork(t, db, "Beaded Mask", "40.00")

	kv := storage.NewMemoryStore()
	ctx := context.Background()

	first := session.New(kv)
	api := apiclient.New(srv.URL, first.Token)
	creds, err := api.Register(ctx, "Imani", "imani@example.com", "password")
	require.NoError(t, err)
	first.Login(creds.Token, creds.User)

	_, err = api.AddToCart(ctx, mask.ID.String(), 1)
	require.NoError(t, err)

	// A second stack over the same storage picks the session straight up.
	restored := session.New(kv)
	require.True(t, restored.IsAuthenticated())
	require.Equal(t, "imani@example.com", restored.GetUser().Email)

	api2 := apiclient.New(srv.URL, restored.Token)
	snapshot, err := api2.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)
	require.Equal(t, mask.ID.String(), snapshot.Items[0].ArtworkID)
}
