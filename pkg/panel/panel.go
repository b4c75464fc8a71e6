// Package panel is the slide-over cart surface: a pure view-layer
// controller over the cart engine's streams. It holds no authoritative
// cart data of its own.
package panel

import (
	"context"
	"sync"
	"time"

	"github.com/craftorigin/storefront/pkg/apiclient"
	"github.com/craftorigin/storefront/pkg/cart"
	"github.com/craftorigin/storefront/pkg/notify"
)

// Navigator performs route changes on behalf of the panel.
type Navigator interface {
	NavigateTo(route string)
}

// ScrollLocker freezes background scrolling while the panel is open.
type ScrollLocker interface {
	Lock()
	Unlock()
}

const (
	// Minimum spacing between dispatched add-to-cart intents. Rapid repeat
	// clicks inside the window are dropped, not queued.
	DefaultAddInterval = time.Second

	ConfirmationRoute = "/orders/confirmation"
)

type Panel struct {
	engine   *cart.Engine
	notifier *notify.Channel
	nav      Navigator
	scroll   ScrollLocker

	// AddInterval overrides the add-to-cart throttle window. Leave zero for
	// the default.
	AddInterval time.Duration

	mu      sync.Mutex
	lastAdd time.Time
	cancel  func()
}

func New(engine *cart.Engine, notifier *notify.Channel, nav Navigator, scroll ScrollLocker) *Panel {
	return &Panel{engine: engine, notifier: notifier, nav: nav, scroll: scroll}
}

// Attach subscribes the panel to the engine's visibility stream, locking
// and unlocking background scroll as it opens and closes.
func (p *Panel) Attach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	p.cancel = p.engine.Opened().Subscribe(func(open bool) {
		if p.scroll == nil {
			return
		}
		if open {
			p.scroll.Lock()
		} else {
			p.scroll.Unlock()
		}
	})
}

// Detach unsubscribes from further updates. In-flight requests are not
// cancelled; this is resource cleanup only.
func (p *Panel) Detach() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if p.scroll != nil {
		p.scroll.Unlock()
	}
}

// AddToCart dispatches an add intent for one unit. Calls within the
// throttle window of the previous dispatch are dropped.
func (p *Panel) AddToCart(ctx context.Context, artworkID string) {
	interval := p.AddInterval
	if interval <= 0 {
		interval = DefaultAddInterval
	}

	p.mu.Lock()
	now := time.Now()
	if !p.lastAdd.IsZero() && now.Sub(p.lastAdd) < interval {
		p.mu.Unlock()
		return
	}
	p.lastAdd = now
	p.mu.Unlock()

	p.engine.Add(ctx, artworkID, 1)
}

// Increment raises a line's quantity by one.
func (p *Panel) Increment(ctx context.Context, line apiclient.CartLine) {
	p.engine.UpdateQuantity(ctx, line.ArtworkID, line.Quantity+1)
}

// Decrement lowers a line's quantity by one. At quantity 1 the decrement is
// a no-op rather than a remove.
func (p *Panel) Decrement(ctx context.Context, line apiclient.CartLine) {
	if line.Quantity-1 < 1 {
		return
	}
	p.engine.UpdateQuantity(ctx, line.ArtworkID, line.Quantity-1)
}

func (p *Panel) Remove(ctx context.Context, line apiclient.CartLine) {
	p.engine.Remove(ctx, line.ArtworkID)
}

// Checkout submits the order, then closes the panel and navigates to the
// confirmation route. Failures surface as an error toast naming the reason
// when the server provided one.
func (p *Panel) Checkout(ctx context.Context) {
	order, err := p.engine.Checkout(ctx)
	if err != nil {
		if p.notifier != nil {
			p.notifier.Error("Checkout failed: " + err.Error())
		}
		return
	}

	p.engine.Close()
	if p.notifier != nil {
		p.notifier.Success("Order placed successfully")
	}
	if p.nav != nil {
		p.nav.NavigateTo(ConfirmationRoute + "/" + order.ID)
	}
}

func (p *Panel) Open()   { p.engine.Open() }
func (p *Panel) Close()  { p.engine.Close() }
func (p *Panel) Toggle() { p.engine.Toggle() }
