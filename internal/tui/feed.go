package tui

import (
	"sync"

	"github.com/kapu/cantina-go/internal/people"
)

// StateFeed subscribes to controller and exposes its states as a channel
// holding at most the newest undelivered state.
func StateFeed(controller Controller) (<-chan people.ViewState, func()) {
	ch := make(chan people.ViewState, 1)

	var (
		mu     sync.Mutex
		latest uint64
		seen   bool
	)
	unsubscribe := controller.Subscribe(func(state people.ViewState) {
		mu.Lock()
		defer mu.Unlock()
		if seen && state.Version <= latest {
			return
		}
		seen = true
		latest = state.Version

		select {
		case <-ch:
		default:
		}
		ch <- state
	})

	return ch, unsubscribe
}
