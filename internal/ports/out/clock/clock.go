package clock

import "time"

// Clock provides time to the application.
// The subscription access computation depends on it, so an interface keeps
// those code paths deterministic under test.
type Clock interface {
	Now() time.Time
}
