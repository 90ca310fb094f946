package repository

import "sync"

// Unsubscribe tears down a live subscription. Calling it more than once is
// harmless.
type Unsubscribe func()

// Once wraps fn so repeated calls run it a single time.
func Once(fn func()) Unsubscribe {
	var once sync.Once
	return func() { once.Do(fn) }
}
