package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/skout-hq/skout/internal/supabase"
)

// MockRowsClient is a mock implementation of RowsClient
type MockRowsClient struct {
	mock.Mock
}

func (m *MockRowsClient) SelectSingle(ctx context.Context, token, table string, out interface{}, filters ...supabase.Filter) error {
	args := m.Called(ctx, token, table, out, filters)
	return args.Error(0)
}

func (m *MockRowsClient) Insert(ctx context.Context, token, table string, row interface{}, out interface{}) error {
	args := m.Called(ctx, token, table, row, out)
	return args.Error(0)
}

func (m *MockRowsClient) Update(ctx context.Context, token, table string, values map[string]interface{}, filters ...supabase.Filter) error {
	args := m.Called(ctx, token, table, values, filters)
	return args.Error(0)
}

var noRows = &supabase.APIError{Status: 406, Code: "PGRST116", Message: "JSON object requested, multiple (or no) rows returned"}
