package network

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	exchangeTypeDirect = "direct"
	exchangeTypeTopic  = "topic"

	durable          = true
	deleteWhenUnused = false
	exclusive        = false
	noWait           = false
	internal         = false
	noAck            = true
	noLocal          = false
	consumerTag      = ""
)

// Messaging is the broker side used by the publisher and the subscriber.
type Messaging interface {
	Start() error
	Stop()
	OnMessage(msgChan chan InMsg, queueName, exchangeName, exchangeType, key string) error
	PublishPersistentMessage(exchange, exchangeType, key string, data interface{}, options *MessageOptions) error
}

type InMsg struct {
	Exchange      string
	RoutingKey    string
	ReplyTo       string
	CorrelationID string
	ContentType   string
	Headers       map[string]interface{}
	Body          []byte
}

// MessageOptions represents the message publishing options
type MessageOptions struct {
	Authorization string
	CorrelationID string
	ReplyTo       string
	Expiration    string
}

type AMQP struct {
	conn  connection
	codec Codec
	log   *logrus.Entry

	connectBackOff   func() backoff.BackOff
	reconnectBackOff func() backoff.BackOff

	exchangeLock      sync.Mutex
	declaredExchanges map[string]struct{}
}

func NewAMQPHandler(conn connection, codec Codec, log *logrus.Entry) *AMQP {
	return &AMQP{
		conn:              conn,
		codec:             codec,
		log:               log,
		connectBackOff:    func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		reconnectBackOff:  newReconnectionBackOff,
		declaredExchanges: map[string]struct{}{},
	}
}

//randomized interval = RetryInterval * (random value in range [1 - RandomizationFactor, 1 + RandomizationFactor])
func newReconnectionBackOff() backoff.BackOff {
	reconnectionBackOff := backoff.NewExponentialBackOff()
	reconnectionBackOff.InitialInterval = 30 * time.Second
	reconnectionBackOff.MaxInterval = 5 * time.Minute
	reconnectionBackOff.Multiplier = 1.7
	reconnectionBackOff.MaxElapsedTime = 0 // never stop
	return reconnectionBackOff
}

func (a *AMQP) Start() error {
	err := backoff.Retry(a.conn.open, a.connectBackOff())
	if err != nil {
		return errors.Wrap(err, "connect to broker")
	}
	go a.notifyWhenClosed()
	return nil
}

func (a *AMQP) Stop() {
	if err := a.conn.shutdown(); err != nil {
		a.log.WithError(err).Warn("close broker connection")
	}
}

func (a *AMQP) OnMessage(msgChan chan InMsg, queueName, exchangeName, exchangeType, key string) error {
	if err := a.declareExchange(exchangeName, exchangeType); err != nil {
		return err
	}
	deliveries, err := a.conn.subscribe(queueName, exchangeName, key)
	if err != nil {
		return errors.Wrapf(err, "subscribe %s", queueName)
	}

	go convertDeliveryToInMsg(deliveries, msgChan)
	return nil
}

func (a *AMQP) PublishPersistentMessage(exchange, exchangeType, key string, data interface{}, options *MessageOptions) error {
	var headers amqp.Table
	var corrID, expTime, replyTo string

	if options != nil {
		headers = amqp.Table{
			"Authorization": options.Authorization,
		}
		corrID = options.CorrelationID
		replyTo = options.ReplyTo
		expTime = options.Expiration
	}

	body, err := a.codec.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode message")
	}

	//Reduces communication with the AMQP server by avoiding redeclaring an exchage of the same type.
	if !a.exchangeAlreadyDeclared(exchange) {
		if err := a.declareExchange(exchange, exchangeType); err != nil {
			return err
		}
		a.exchangeLock.Lock()
		a.declaredExchanges[exchange] = struct{}{}
		a.exchangeLock.Unlock()
	}

	err = a.conn.publish(exchange, key, amqp.Publishing{
		Headers:       headers,
		ContentType:   a.codec.ContentType(),
		DeliveryMode:  amqp.Persistent,
		CorrelationId: corrID,
		ReplyTo:       replyTo,
		Body:          body,
		Expiration:    expTime,
	})
	if err != nil {
		return errors.Wrap(err, "publish message in channel")
	}
	return nil
}

func (a *AMQP) exchangeAlreadyDeclared(exchangeName string) bool {
	a.exchangeLock.Lock()
	defer a.exchangeLock.Unlock()
	_, ok := a.declaredExchanges[exchangeName]
	return ok
}

func (a *AMQP) notifyWhenClosed() {
	errReason := <-a.conn.closed()
	if errReason == nil {
		return
	}
	a.log.WithError(errReason).Warn("broker connection closed")

	reconnectionBackOff := a.reconnectBackOff()
	reconnection := func() error {
		if err := a.conn.open(); err != nil {
			a.log.WithError(err).Warnf("cannot reconnect to broker, will retry after %s", reconnectionBackOff.NextBackOff())
			return err
		}
		a.log.Info("reconnection to broker was successful")
		return nil
	}
	if err := backoff.Retry(reconnection, reconnectionBackOff); err != nil {
		return
	}
	a.exchangeLock.Lock()
	a.declaredExchanges = map[string]struct{}{}
	a.exchangeLock.Unlock()
	go a.notifyWhenClosed()
}

func (a *AMQP) declareExchange(name, exchangeType string) error {
	if err := a.conn.declareExchange(name, exchangeType); err != nil {
		return errors.Wrapf(err, "declare exchange %s", name)
	}
	return nil
}

func convertDeliveryToInMsg(deliveries <-chan amqp.Delivery, outMsg chan InMsg) {
	for d := range deliveries {
		outMsg <- InMsg{d.Exchange, d.RoutingKey, d.ReplyTo, d.CorrelationId, d.ContentType, d.Headers, d.Body}
	}
}
