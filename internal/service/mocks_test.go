package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Skotchmaster/shopfront/internal/events"
	"github.com/Skotchmaster/shopfront/internal/models"
)

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishEvent(ctx context.Context, topic, key string, event any) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

func (m *publisherMock) Close() error { return nil }

func acceptAllEvents() *publisherMock {
	m := &publisherMock{}
	m.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

func eventOfType(typ string) any {
	return mock.MatchedBy(func(ev events.Event) bool { return ev.Type == typ })
}

type indexerMock struct{ mock.Mock }

func (m *indexerMock) IndexProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *indexerMock) DeleteProduct(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}
