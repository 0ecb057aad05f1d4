package telemetry

import (
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/gateways/telemetry/network"
	"github.com/pkg/errors"
)

const (
	boundHigh = "high"
	boundLow  = "low"
)

var (
	ErrUnknownRoutingKey = errors.New("unknown routing key")
	ErrInvalidBound      = errors.New("threshold bound must be high or low")
	ErrNoThresholds      = errors.New("no threshold store")
)

// HandleMessage dispatches a control message on its routing key.
func (i *Integration) HandleMessage(msg network.InMsg) error {
	action, ok := i.actions[msg.RoutingKey]
	if !ok {
		return errors.Wrap(ErrUnknownRoutingKey, msg.RoutingKey)
	}
	return action(msg)
}

func (i *Integration) handlePollingSet(msg network.InMsg) error {
	var request network.PollingSetRequest
	if err := network.CodecForContentType(msg.ContentType).Unmarshal(msg.Body, &request); err != nil {
		return errors.Wrap(err, "decode polling request")
	}
	if err := i.engine.EnablePolling(entities.SensorID(request.SensorID), request.Enabled); err != nil {
		return err
	}
	i.log.Infof("sensor 0x%02x polling set to %t", request.SensorID, request.Enabled)
	return nil
}

func (i *Integration) handleThresholdSet(msg network.InMsg) error {
	var request network.ThresholdSetRequest
	if err := network.CodecForContentType(msg.ContentType).Unmarshal(msg.Body, &request); err != nil {
		return errors.Wrap(err, "decode threshold request")
	}
	if i.thresholds == nil {
		return ErrNoThresholds
	}
	switch request.Bound {
	case boundHigh:
		return i.thresholds.SetCriticalHigh(request.SensorID, request.Value)
	case boundLow:
		return i.thresholds.SetCriticalLow(request.SensorID, request.Value)
	default:
		return errors.Wrapf(ErrInvalidBound, "got %q", request.Bound)
	}
}
