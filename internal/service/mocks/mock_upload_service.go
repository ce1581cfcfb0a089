package mocks

import (
	"context"

	"docverify/internal/model"
	"docverify/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Submit(ctx context.Context, in service.UploadInput) (*model.SubmissionAttempt, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionAttempt), args.Error(1)
}

func (m *MockUploadService) Retry(ctx context.Context, id string) (*model.SubmissionAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionAttempt), args.Error(1)
}

func (m *MockUploadService) Get(ctx context.Context, id string) (*model.SubmissionAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubmissionAttempt), args.Error(1)
}

func (m *MockUploadService) List(ctx context.Context, account common.Address, limit, offset int) (*service.AttemptListResult, error) {
	args := m.Called(ctx, account, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttemptListResult), args.Error(1)
}

func (m *MockUploadService) Discard(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
