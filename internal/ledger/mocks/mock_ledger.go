package mocks

import (
	"context"

	"docverify/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) FetchDocumentCount(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockLedger) FetchDocument(ctx context.Context, account common.Address, index uint64) (*model.DocumentRecord, error) {
	args := m.Called(ctx, account, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockLedger) CheckIsVerifier(ctx context.Context, account common.Address) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) Owner(ctx context.Context) (common.Address, error) {
	args := m.Called(ctx)
	return args.Get(0).(common.Address), args.Error(1)
}

func (m *MockLedger) ListSubmitters(ctx context.Context) ([]common.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]common.Address), args.Error(1)
}

func (m *MockLedger) SubmitDocument(ctx context.Context, from common.Address, contentID, documentType string) (*model.Receipt, error) {
	args := m.Called(ctx, from, contentID, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockLedger) SubmitVerification(ctx context.Context, from, subject common.Address, index uint64, decision model.Status, notes string) (*model.Receipt, error) {
	args := m.Called(ctx, from, subject, index, decision, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receipt), args.Error(1)
}

func (m *MockLedger) InFlight(account common.Address) bool {
	args := m.Called(account)
	return args.Bool(0)
}

func (m *MockLedger) FetchNetworkInfo(ctx context.Context) model.NetworkInfo {
	args := m.Called(ctx)
	return args.Get(0).(model.NetworkInfo)
}

func (m *MockLedger) CheckContract(ctx context.Context) (*model.ContractInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContractInfo), args.Error(1)
}
