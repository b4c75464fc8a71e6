// Package cart owns the authoritative in-memory cart for one storefront
// session, reconciled with the marketplace API. Mutations are confirmed
// server-side first and followed by a full reload; the last successful
// server response is always the source of truth.
package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/craftorigin/storefront/pkg/apiclient"
	"github.com/craftorigin/storefront/pkg/notify"
	"github.com/craftorigin/storefront/pkg/session"
	"github.com/craftorigin/storefront/pkg/stream"
)

// Gateway is the slice of the API the engine drives. *apiclient.Client
// satisfies it.
type Gateway interface {
	GetCart(ctx context.Context) (*apiclient.Cart, error)
	AddToCart(ctx context.Context, artworkID string, quantity int) (*apiclient.Cart, error)
	UpdateCartItem(ctx context.Context, artworkID string, quantity int) (*apiclient.Cart, error)
	RemoveFromCart(ctx context.Context, artworkID string) (*apiclient.Cart, error)
	ClearCart(ctx context.Context) error
	Checkout(ctx context.Context) (*apiclient.Order, error)
}

type Engine struct {
	gw       Gateway
	sess     *session.Store
	notifier *notify.Channel

	items *stream.Value[[]apiclient.CartLine]
	count *stream.Value[int]
	total *stream.Value[decimal.Decimal]
	open  *stream.Value[bool]

	// loadGen tags each Load so a slow response that was superseded by a
	// later one is discarded instead of overwriting newer state.
	loadGen atomic.Uint64
	applyMu sync.Mutex
}

// NewEngine wires the engine into the session lifecycle: login triggers a
// load, logout resets to the empty cart.
func NewEngine(gw Gateway, sess *session.Store, notifier *notify.Channel) *Engine {
	e := &Engine{
		gw:       gw,
		sess:     sess,
		notifier: notifier,
		items:    stream.NewValue([]apiclient.CartLine(nil)),
		count:    stream.NewValue(0),
		total:    stream.NewValue(decimal.Zero),
		open:     stream.NewValue(false),
	}
	sess.OnLogin(func() { e.Load(context.Background()) })
	sess.OnLogout(func() { e.reset() })
	return e
}

// Items is the stream of confirmed cart lines.
func (e *Engine) Items() *stream.Value[[]apiclient.CartLine] { return e.items }

// Count is the stream of the summed line quantities.
func (e *Engine) Count() *stream.Value[int] { return e.count }

// Total is the stream of the cart total amount.
func (e *Engine) Total() *stream.Value[decimal.Decimal] { return e.total }

// Opened is the stream of the panel's visibility, independent of server state.
func (e *Engine) Opened() *stream.Value[bool] { return e.open }

// Load replaces the local state with the server's snapshot. Anonymous
// sessions have no server-side cart, so Load is a silent no-op for them.
// A failed load resets to empty rather than keeping possibly-stale lines.
func (e *Engine) Load(ctx context.Context) {
	if !e.sess.IsAuthenticated() {
		return
	}
	gen := e.loadGen.Add(1)

	snapshot, err := e.gw.GetCart(ctx)

	e.applyMu.Lock()
	defer e.applyMu.Unlock()
	if gen != e.loadGen.Load() {
		// A newer load was issued while this one was in flight.
		return
	}
	if err != nil {
		e.applyEmpty()
		return
	}
	e.apply(snapshot)
}

// Add posts an add-line intent. Nothing is shown locally until the server
// confirms; on success the cart is reloaded and the panel opens.
func (e *Engine) Add(ctx context.Context, artworkID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if _, err := e.gw.AddToCart(ctx, artworkID, quantity); err != nil {
		e.notifyError(err)
		return
	}
	e.Load(ctx)
	e.open.Set(true)
}

// UpdateQuantity sets an absolute quantity. Quantities below 1 are rejected
// locally: no request, no state change, no notification.
func (e *Engine) UpdateQuantity(ctx context.Context, artworkID string, quantity int) {
	if quantity < 1 {
		return
	}
	if _, err := e.gw.UpdateCartItem(ctx, artworkID, quantity); err != nil {
		e.notifyError(err)
		return
	}
	e.Load(ctx)
}

// Remove deletes one line server-side, then reloads.
func (e *Engine) Remove(ctx context.Context, artworkID string) {
	if _, err := e.gw.RemoveFromCart(ctx, artworkID); err != nil {
		e.notifyError(err)
		return
	}
	e.Load(ctx)
}

// Clear empties the cart server-side. The explicit empty state is
// authoritative, so no reload round-trip follows.
func (e *Engine) Clear(ctx context.Context) {
	if err := e.gw.ClearCart(ctx); err != nil {
		e.notifyError(err)
		return
	}
	e.reset()
}

// Checkout submits the order. Local cart state is left to the caller, which
// navigates away and relies on a later Load or the confirmation flow.
func (e *Engine) Checkout(ctx context.Context) (*apiclient.Order, error) {
	return e.gw.Checkout(ctx)
}

func (e *Engine) Open()   { e.open.Set(true) }
func (e *Engine) Close()  { e.open.Set(false) }
func (e *Engine) Toggle() { e.open.Set(!e.open.Get()) }

func (e *Engine) reset() {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()
	// Invalidate any load still in flight; its response belongs to the
	// previous session and must not overwrite the empty state.
	e.loadGen.Add(1)
	e.applyEmpty()
}

func (e *Engine) applyEmpty() {
	e.items.Set(nil)
	e.count.Set(0)
	e.total.Set(decimal.Zero)
}

func (e *Engine) apply(snapshot *apiclient.Cart) {
	count := 0
	derived := decimal.Zero
	for _, line := range snapshot.Items {
		count += line.Quantity
		derived = derived.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	total := snapshot.TotalAmount
	if total.IsZero() && !derived.IsZero() {
		// No server-confirmed total yet; fall back to the line sum.
		total = derived
	}

	e.items.Set(snapshot.Items)
	e.count.Set(count)
	e.total.Set(total)
}

func (e *Engine) notifyError(err error) {
	if e.notifier == nil {
		return
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case apiclient.KindAuth:
			e.notifier.Error("Please log in or register to continue")
			return
		case apiclient.KindConnectivity:
			e.notifier.Error("Could not reach the server. Check your connection and try again.")
			return
		case apiclient.KindValidation:
			if apiErr.Message != "" {
				e.notifier.Error(apiErr.Message)
				return
			}
		}
	}
	e.notifier.Error("Something went wrong. Please try again.")
}
