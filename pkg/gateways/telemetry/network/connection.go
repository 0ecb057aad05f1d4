package network

import (
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// connection is one broker session: a connection and the single channel the
// handler works on.
type connection interface {
	open() error
	declareExchange(name, exchangeType string) error
	subscribe(queue, exchange, key string) (<-chan amqp.Delivery, error)
	publish(exchange, key string, msg amqp.Publishing) error
	closed() <-chan *amqp.Error
	shutdown() error
}

type AmqpConnection struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAmqpConnection(url string) *AmqpConnection {
	return &AmqpConnection{url: url}
}

// open dials the broker and opens the channel. A channel failure closes the
// fresh connection again.
func (a *AmqpConnection) open() error {
	conn, err := amqp.Dial(a.url)
	if err != nil {
		return err
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "open channel")
	}
	a.conn, a.channel = conn, channel
	return nil
}

func (a *AmqpConnection) declareExchange(name, exchangeType string) error {
	return a.channel.ExchangeDeclare(name, exchangeType, durable, deleteWhenUnused, internal, noWait, nil)
}

// subscribe declares the queue, binds it to key on exchange and starts
// consuming it.
func (a *AmqpConnection) subscribe(queue, exchange, key string) (<-chan amqp.Delivery, error) {
	if _, err := a.channel.QueueDeclare(queue, durable, deleteWhenUnused, exclusive, noWait, nil); err != nil {
		return nil, errors.Wrapf(err, "declare queue %s", queue)
	}
	if err := a.channel.QueueBind(queue, key, exchange, noWait, nil); err != nil {
		return nil, errors.Wrapf(err, "bind %s to %s", queue, key)
	}
	return a.channel.Consume(queue, consumerTag, noAck, exclusive, noLocal, noWait, nil)
}

func (a *AmqpConnection) publish(exchange, key string, msg amqp.Publishing) error {
	return a.channel.Publish(exchange, key, false, false, msg)
}

func (a *AmqpConnection) closed() <-chan *amqp.Error {
	return a.conn.NotifyClose(make(chan *amqp.Error, 1))
}

// shutdown closes the channel and the connection, reporting the first error.
func (a *AmqpConnection) shutdown() error {
	var err error
	if a.channel != nil {
		err = a.channel.Close()
	}
	if a.conn != nil && !a.conn.IsClosed() {
		if closeErr := a.conn.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
