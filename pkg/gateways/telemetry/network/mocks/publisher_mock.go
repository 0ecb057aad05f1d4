package mocks

import (
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/stretchr/testify/mock"
)

type PublisherMock struct {
	mock.Mock
}

func (p *PublisherMock) PublishSamples(source string, samples []entities.Sample) error {
	args := p.Called(source, samples)
	return args.Error(0)
}
