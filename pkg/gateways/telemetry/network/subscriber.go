package network

const (
	queueName              = "bic-sensor-control"
	ExchangeControl        = "bic.control"
	BindingKeyPollingSet   = "sensor.polling.set"
	BindingKeyThresholdSet = "sensor.threshold.set"
)

type Subscriber interface {
	SubscribeToControlMessages(msgChan chan InMsg) error
}

type msgSubscriber struct {
	amqp Messaging
}

func NewMsgSubscriber(amqp Messaging) Subscriber {
	return &msgSubscriber{amqp}
}

func (ms *msgSubscriber) SubscribeToControlMessages(msgChan chan InMsg) error {
	var err error
	subscribe := func(msgChan chan InMsg, queue, exchange, kind, key string) {
		if err != nil {
			return
		}
		err = ms.amqp.OnMessage(msgChan, queue, exchange, kind, key)
	}

	subscribe(msgChan, queueName, ExchangeControl, exchangeTypeDirect, BindingKeyPollingSet)
	subscribe(msgChan, queueName, ExchangeControl, exchangeTypeDirect, BindingKeyThresholdSet)

	return err
}
