// Package driver maps sensor kinds to the init and read capabilities that
// talk to the hardware.
package driver

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
)

// ErrFailToAccess is returned by drivers when the bus transaction fails.
var ErrFailToAccess = errors.New("fail to access sensor")

type InitFunc func(ctx context.Context, cfg *entities.SensorConfig) error
type ReadFunc func(ctx context.Context, cfg *entities.SensorConfig) (entities.Reading, error)

// Capability is one entry of the driver table.
type Capability struct {
	Kind entities.Kind
	Init InitFunc
	Read ReadFunc
}

// builtin is filled by the driver files compiled into this build.
var builtin []Capability

// Registry is a fixed table scanned once per descriptor at start-up.
type Registry struct {
	capabilities []Capability
}

func NewRegistry(capabilities ...Capability) *Registry {
	r := &Registry{}
	for _, c := range capabilities {
		r.Register(c)
	}
	return r
}

// Builtin returns a registry holding the drivers selected by build tags.
func Builtin() *Registry {
	return NewRegistry(builtin...)
}

// Register appends c, or replaces the entry with the same kind.
func (r *Registry) Register(c Capability) {
	for i := range r.capabilities {
		if r.capabilities[i].Kind == c.Kind {
			r.capabilities[i] = c
			return
		}
	}
	r.capabilities = append(r.capabilities, c)
}

func (r *Registry) Lookup(kind entities.Kind) (Capability, bool) {
	for _, c := range r.capabilities {
		if c.Kind == kind {
			return c, true
		}
	}
	return Capability{}, false
}

func (r *Registry) Kinds() []entities.Kind {
	kinds := make([]entities.Kind, 0, len(r.capabilities))
	for _, c := range r.capabilities {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

// StatusError lets a driver report a specific cache status.
type StatusError struct {
	Status entities.Status
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusOf maps a driver error to the status committed after retries run out.
func StatusOf(err error) entities.Status {
	var statusErr *StatusError
	switch {
	case err == nil:
		return entities.ReadSuccess
	case stderrors.As(err, &statusErr):
		return statusErr.Status
	case stderrors.Is(err, ErrFailToAccess):
		return entities.FailToAccess
	default:
		return entities.UnspecifiedError
	}
}
