package network

import (
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
)

const (
	ExchangeTelemetry     = "bic.telemetry"
	routingKeySamples     = "sensor.samples"
	defaultExpirationTime = "60000"
)

type Publisher interface {
	PublishSamples(source string, samples []entities.Sample) error
}

type msgPublisher struct {
	amqp     Messaging
	token    string
	exchange string
}

func NewMsgPublisher(amqp Messaging, token, exchange string) Publisher {
	if exchange == "" {
		exchange = ExchangeTelemetry
	}
	return &msgPublisher{amqp: amqp, token: token, exchange: exchange}
}

func (mp *msgPublisher) PublishSamples(source string, samples []entities.Sample) error {
	options := MessageOptions{
		Authorization: mp.token,
		Expiration:    defaultExpirationTime,
	}

	message := SamplesSent{
		Source:  source,
		Samples: samples,
	}

	return mp.amqp.PublishPersistentMessage(mp.exchange, exchangeTypeTopic, routingKeySamples+"."+source, message, &options)
}
