package mocks

import (
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/gateways/telemetry/network"
	"github.com/stretchr/testify/mock"
)

type SubscriberMock struct {
	mock.Mock
}

func (s *SubscriberMock) SubscribeToControlMessages(msgChan chan network.InMsg) error {
	args := s.Called(msgChan)
	return args.Error(0)
}
