package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/craftorigin/storefront/pkg/apiclient"
	"github.com/craftorigin/storefront/pkg/notify"
	"github.com/craftorigin/storefront/pkg/session"
	"github.com/craftorigin/storefront/pkg/storage"
)

// stubAPI is an in-memory rendition of the cart endpoints, instrumented for
// the tests: request counters, forced failures and a gate for holding one
// load in flight.
type stubAPI struct {
	mu      sync.Mutex
	lines   map[string]apiclient.CartLine
	gets    int
	adds    int
	puts    int
	deletes int
	clears  int
	orders  int

	failGet   bool
	failAdd   bool
	failPut   bool
	gate      chan struct{}
	entered   chan struct{}
}

func newStubAPI() *stubAPI {
	return &stubAPI{lines: make(map[string]apiclient.CartLine)}
}

func (s *stubAPI) setLine(artworkID string, quantity int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[artworkID] = apiclient.CartLine{
		ArtworkID: artworkID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(price),
		Title:     "artwork " + artworkID,
	}
}

func (s *stubAPI) snapshotLocked() apiclient.Cart {
	cart := apiclient.Cart{ID: "cart-1", BuyerID: "u1", TotalAmount: decimal.Zero}
	for _, line := range s.lines {
		cart.Items = append(cart.Items, line)
		cart.TotalAmount = cart.TotalAmount.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return cart
}

func (s *stubAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/api/cart" && r.Method == http.MethodGet:
		s.mu.Lock()
		s.gets++
		fail := s.failGet
		snap := s.snapshotLocked()
		gate, entered := s.gate, s.entered
		s.gate, s.entered = nil, nil
		s.mu.Unlock()

		if entered != nil {
			close(entered)
		}
		if gate != nil {
			<-gate
		}
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(snap)

	case r.URL.Path == "/api/cart" && r.Method == http.MethodPost:
		var req struct {
			ArtworkID string `json:"artwork_id"`
			Quantity  int    `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		s.mu.Lock()
		s.adds++
		if s.failAdd {
			s.mu.Unlock()
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "Artwork is out of stock"})
			return
		}
		line, ok := s.lines[req.ArtworkID]
		if ok {
			line.Quantity += req.Quantity
		} else {
			line = apiclient.CartLine{
				ArtworkID: req.ArtworkID,
				Quantity:  req.Quantity,
				UnitPrice: decimal.RequireFromString("50.00"),
			}
		}
		s.lines[req.ArtworkID] = line
		snap := s.snapshotLocked()
		s.mu.Unlock()
		json.NewEncoder(w).Encode(snap)

	case strings.HasPrefix(r.URL.Path, "/api/cart/") && r.Method == http.MethodPut:
		artworkID := strings.TrimPrefix(r.URL.Path, "/api/cart/")
		var req struct {
			Quantity int `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		s.mu.Lock()
		s.puts++
		if s.failPut {
			s.mu.Unlock()
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "Quantity no longer available"})
			return
		}
		line := s.lines[artworkID]
		line.Quantity = req.Quantity
		s.lines[artworkID] = line
		snap := s.snapshotLocked()
		s.mu.Unlock()
		json.NewEncoder(w).Encode(snap)

	case strings.HasPrefix(r.URL.Path, "/api/cart/") && r.Method == http.MethodDelete:
		artworkID := strings.TrimPrefix(r.URL.Path, "/api/cart/")
		s.mu.Lock()
		s.deletes++
		delete(s.lines, artworkID)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		json.NewEncoder(w).Encode(snap)

	case r.URL.Path == "/api/cart" && r.Method == http.MethodDelete:
		s.mu.Lock()
		s.clears++
		s.lines = make(map[string]apiclient.CartLine)
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"message": "Cart cleared"})

	case r.URL.Path == "/api/orders" && r.Method == http.MethodPost:
		s.mu.Lock()
		s.orders++
		empty := len(s.lines) == 0
		s.mu.Unlock()
		if empty {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "Cart is empty"})
			return
		}
		json.NewEncoder(w).Encode(apiclient.Order{ID: "order-1", Status: "PENDING"})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type engineEnv struct {
	stub     *stubAPI
	sess     *session.Store
	notifier *notify.Channel
	engine   *Engine
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()

	stub := newStubAPI()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	sess := session.New(storage.NewMemoryStore())
	api := apiclient.New(srv.URL, sess.Token)
	notifier := notify.NewChannel(notify.DefaultTTL)
	t.Cleanup(notifier.Close)

	return &engineEnv{
		stub:     stub,
		sess:     sess,
		notifier: notifier,
		engine:   NewEngine(api, sess, notifier),
	}
}

func (env *engineEnv) login() {
	env.sess.Login("tok", session.User{ID: "u1", Role: session.RoleBuyer})
}

func TestAnonymousLoadIsSilentNoOp(t *testing.T) {
	env := newEngineEnv(t)

	env.engine.Load(context.Background())

	require.Zero(t, env.stub.gets)
	require.Empty(t, env.engine.Items().Get())
	require.Zero(t, env.engine.Count().Get())
	require.True(t, env.engine.Total().Get().IsZero())
}

func TestLoginTriggersExactlyOneLoad(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 2, "10.00")

	env.login()

	require.Equal(t, 1, env.stub.gets)
	require.Equal(t, 2, env.engine.Count().Get())
}

func TestAddConfirmsThenReloadsAndOpens(t *testing.T) {
	env := newEngineEnv(t)
	env.login()

	var counts []int
	cancel := env.engine.Count().Subscribe(func(n int) { counts = append(counts, n) })
	defer cancel()

	env.engine.Add(context.Background(), "art-1", 1)

	require.Equal(t, 1, env.stub.adds)
	items := env.engine.Items().Get()
	require.Len(t, items, 1)
	require.Equal(t, "art-1", items[0].ArtworkID)
	require.Equal(t, 1, items[0].Quantity)
	require.Equal(t, 1, env.engine.Count().Get())
	require.True(t, env.engine.Total().Get().Equal(decimal.RequireFromString("50.00")))
	require.True(t, env.engine.Opened().Get())
	require.Contains(t, counts, 1)
}

func TestAddFailureLeavesStateAndNotifies(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 1, "10.00")
	env.login()

	env.stub.failAdd = true
	env.engine.Add(context.Background(), "art-2", 1)

	// Previously confirmed state is intact and the panel stays closed.
	require.Equal(t, 1, env.engine.Count().Get())
	require.False(t, env.engine.Opened().Get())

	toasts := env.notifier.Toasts().Get()
	require.Len(t, toasts, 1)
	require.Equal(t, notify.KindError, toasts[0].Kind)
	require.Equal(t, "Artwork is out of stock", toasts[0].Message)
}

func TestUpdateQuantityBelowOneNeverHitsNetwork(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 2, "10.00")
	env.login()

	env.engine.UpdateQuantity(context.Background(), "art-1", 0)
	env.engine.UpdateQuantity(context.Background(), "art-1", -1)

	require.Zero(t, env.stub.puts)
	require.Equal(t, 2, env.engine.Count().Get())
	require.Empty(t, env.notifier.Toasts().Get())
}

func TestUpdateThenRemoveEndsEmpty(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 1, "25.00")
	env.login()

	ctx := context.Background()
	env.engine.UpdateQuantity(ctx, "art-1", 3)
	require.Equal(t, 3, env.engine.Count().Get())
	require.True(t, env.engine.Total().Get().Equal(decimal.RequireFromString("75.00")))

	env.engine.Remove(ctx, "art-1")
	require.Empty(t, env.engine.Items().Get())
	require.Zero(t, env.engine.Count().Get())
	require.True(t, env.engine.Total().Get().IsZero())
}

func TestLoadFailureResetsToEmpty(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 2, "10.00")
	env.login()
	require.Equal(t, 2, env.engine.Count().Get())

	env.stub.failGet = true
	env.engine.Load(context.Background())

	require.Empty(t, env.engine.Items().Get())
	require.Zero(t, env.engine.Count().Get())
	require.True(t, env.engine.Total().Get().IsZero())
}

func TestClearResetsLocallyWithoutReload(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 2, "10.00")
	env.login()
	gets := env.stub.gets

	env.engine.Clear(context.Background())

	require.Equal(t, 1, env.stub.clears)
	require.Equal(t, gets, env.stub.gets)
	require.Zero(t, env.engine.Count().Get())
}

func TestLogoutResetsCart(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 2, "10.00")
	env.login()
	require.Equal(t, 2, env.engine.Count().Get())

	env.sess.Logout()

	require.Empty(t, env.engine.Items().Get())
	require.Zero(t, env.engine.Count().Get())
	require.True(t, env.engine.Total().Get().IsZero())
}

func TestLoadInFlightAtLogoutIsDiscarded(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 2, "10.00")
	env.login()
	require.Equal(t, 2, env.engine.Count().Get())

	// Hold a load in flight across the logout.
	gate := make(chan struct{})
	entered := make(chan struct{})
	env.stub.mu.Lock()
	env.stub.gate = gate
	env.stub.entered = entered
	env.stub.mu.Unlock()

	done := make(chan struct{})
	go func() {
		env.engine.Load(context.Background())
		close(done)
	}()
	<-entered

	env.sess.Logout()
	require.Zero(t, env.engine.Count().Get())

	// The response from before the logout arrives now; the logged-out cart
	// must stay empty.
	close(gate)
	<-done
	require.Zero(t, env.engine.Count().Get())
	require.Empty(t, env.engine.Items().Get())
	require.True(t, env.engine.Total().Get().IsZero())
}

func TestCheckoutDoesNotTouchLocalState(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 2, "10.00")
	env.login()

	order, err := env.engine.Checkout(context.Background())
	require.NoError(t, err)
	require.Equal(t, "order-1", order.ID)

	// Cart state is left for the confirmation flow's reload.
	require.Equal(t, 2, env.engine.Count().Get())
}

func TestOverlappingLoadsLastIssuedWins(t *testing.T) {
	env := newEngineEnv(t)
	env.stub.setLine("art-1", 1, "10.00")
	env.login()

	// Hold the next load in flight with the old snapshot.
	gate := make(chan struct{})
	entered := make(chan struct{})
	env.stub.mu.Lock()
	env.stub.gate = gate
	env.stub.entered = entered
	env.stub.mu.Unlock()

	done := make(chan struct{})
	go func() {
		env.engine.Load(context.Background())
		close(done)
	}()
	<-entered

	// The cart changes server-side, and a later load observes it.
	env.stub.setLine("art-1", 5, "10.00")
	env.engine.Load(context.Background())
	require.Equal(t, 5, env.engine.Count().Get())

	// The stale response completes afterwards and must be discarded.
	close(gate)
	<-done
	require.Equal(t, 5, env.engine.Count().Get())
}

func TestCountMatchesServerAfterMutationSequence(t *testing.T) {
	env := newEngineEnv(t)
	env.login()

	ctx := context.Background()
	env.engine.Add(ctx, "art-1", 1)
	env.engine.Add(ctx, "art-1", 1)
	env.engine.Add(ctx, "art-2", 3)
	env.engine.UpdateQuantity(ctx, "art-2", 2)
	env.engine.Load(ctx)

	total := 0
	for _, line := range env.engine.Items().Get() {
		total += line.Quantity
	}
	require.Equal(t, total, env.engine.Count().Get())
	require.Equal(t, 4, env.engine.Count().Get())
}
