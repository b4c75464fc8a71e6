package panel

import (
	"sync"
	"time"
)

// SearchDebounce is the quiet period applied to search-style input before a
// filtering request is dispatched.
const SearchDebounce = 350 * time.Millisecond

// Debounce returns a wrapper that forwards only the last call after d of
// quiet. Earlier pending calls are replaced, never queued.
func Debounce(d time.Duration, fn func(string)) func(string) {
	var mu sync.Mutex
	var timer *time.Timer

	return func(input string) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() { fn(input) })
	}
}
