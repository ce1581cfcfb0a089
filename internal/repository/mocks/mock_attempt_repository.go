package mocks

import (
	"context"

	"docverify/internal/model"
	"docverify/internal/repository"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Save(ctx context.Context, a *model.SubmissionAttempt) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttemptRepository) FindByID(ctx context.Context, id string) (*model.SubmissionAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByAccount(ctx context.Context, account common.Address, pq repository.PageQuery) (*repository.PageResult[model.SubmissionAttempt], error) {
	args := m.Called(ctx, account, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.SubmissionAttempt]), args.Error(1)
}

func (m *MockAttemptRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
