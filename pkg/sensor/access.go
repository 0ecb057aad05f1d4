package sensor

import (
	"sync/atomic"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/pkg/errors"
)

// PowerStatus exposes the platform power state the access predicates depend on.
type PowerStatus interface {
	DCOn() bool
	PostComplete() bool
	MENormal() bool
	VRMonitor() bool
}

// PowerState is a PowerStatus updated by the platform event handlers.
type PowerState struct {
	dcOn         atomic.Bool
	postComplete atomic.Bool
	meNormal     atomic.Bool
	vrMonitor    atomic.Bool
}

func NewPowerState(cfg entities.PowerConfig) *PowerState {
	p := &PowerState{}
	p.dcOn.Store(cfg.DCOn)
	p.postComplete.Store(cfg.PostComplete)
	p.meNormal.Store(cfg.MENormal)
	p.vrMonitor.Store(cfg.VRMonitor)
	return p
}

func (p *PowerState) DCOn() bool         { return p.dcOn.Load() }
func (p *PowerState) PostComplete() bool { return p.postComplete.Load() }
func (p *PowerState) MENormal() bool     { return p.meNormal.Load() }
func (p *PowerState) VRMonitor() bool    { return p.vrMonitor.Load() }

func (p *PowerState) SetDCOn(on bool)         { p.dcOn.Store(on) }
func (p *PowerState) SetPostComplete(on bool) { p.postComplete.Store(on) }
func (p *PowerState) SetMENormal(on bool)     { p.meNormal.Store(on) }
func (p *PowerState) SetVRMonitor(on bool)    { p.vrMonitor.Store(on) }

// Always is the standby-domain predicate.
func Always() bool {
	return true
}

// AccessByName resolves a configured predicate name.
func AccessByName(name string, power PowerStatus) (AccessFunc, error) {
	switch name {
	case "", "always", "stby":
		return Always, nil
	}
	if power == nil {
		return nil, errors.Errorf("access %q needs a power status provider", name)
	}
	switch name {
	case "dc":
		return power.DCOn, nil
	case "post":
		return power.PostComplete, nil
	case "me":
		return func() bool { return power.MENormal() && power.PostComplete() }, nil
	case "vr":
		return func() bool { return power.DCOn() && power.VRMonitor() }, nil
	default:
		return nil, errors.Errorf("unknown access predicate %q", name)
	}
}
