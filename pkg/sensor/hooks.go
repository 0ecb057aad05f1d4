package sensor

import (
	"context"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
)

// Bus serializes transactions of the sensors sharing one physical bus.
type Bus struct {
	slot chan struct{}
}

func NewBus() *Bus {
	return &Bus{slot: make(chan struct{}, 1)}
}

// PreHook takes the bus, giving up when ctx ends.
func (b *Bus) PreHook(ctx context.Context, _ *Descriptor) bool {
	select {
	case b.slot <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// PostHook releases the bus whatever the outcome of the read.
func (b *Bus) PostHook(_ context.Context, _ *Descriptor, _ *entities.Reading) bool {
	select {
	case <-b.slot:
	default:
	}
	return true
}

// Held reports whether a transaction currently owns the bus.
func (b *Bus) Held() bool {
	return len(b.slot) == 1
}

// ChainPost runs hooks in order on the same reading and fails if any fails.
// Every hook runs even after a failure.
func ChainPost(hooks ...PostHook) PostHook {
	return func(ctx context.Context, d *Descriptor, reading *entities.Reading) bool {
		ok := true
		for _, hook := range hooks {
			if hook != nil && !hook(ctx, d, reading) {
				ok = false
			}
		}
		return ok
	}
}

// Scale returns a post hook multiplying successful readings by factor. A
// scaled value that no longer fits a reading fails the hook.
func Scale(factor float64) PostHook {
	return func(_ context.Context, _ *Descriptor, reading *entities.Reading) bool {
		if reading == nil {
			return true
		}
		scaled := reading.Float() * factor
		if !entities.ReadingInRange(scaled) {
			return false
		}
		*reading = entities.ReadingFromFloat(scaled)
		return true
	}
}
