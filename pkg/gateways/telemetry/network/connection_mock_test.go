package network

import (
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

type connectionMock struct {
	mock.Mock
	opens atomic.Int32
}

func (m *connectionMock) open() error {
	m.opens.Add(1)
	args := m.Called()
	return args.Error(0)
}

func (m *connectionMock) declareExchange(name, exchangeType string) error {
	args := m.Called(name, exchangeType)
	return args.Error(0)
}

func (m *connectionMock) subscribe(queue, exchange, key string) (<-chan amqp.Delivery, error) {
	args := m.Called(queue, exchange, key)
	return args.Get(0).(chan amqp.Delivery), args.Error(1)
}

func (m *connectionMock) publish(exchange, key string, msg amqp.Publishing) error {
	args := m.Called(exchange, key, msg)
	return args.Error(0)
}

func (m *connectionMock) closed() <-chan *amqp.Error {
	args := m.Called()
	return args.Get(0).(chan *amqp.Error)
}

func (m *connectionMock) shutdown() error {
	args := m.Called()
	return args.Error(0)
}
