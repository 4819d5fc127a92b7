package testhelpers

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInvalidator is a mock implementation of service.RecommendationInvalidator
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

func (m *MockInvalidator) InvalidateCatalog(ctx context.Context) {
	m.Called(ctx)
}

// NewPermissiveInvalidator returns a MockInvalidator accepting any call.
func NewPermissiveInvalidator() *MockInvalidator {
	m := &MockInvalidator{}
	m.On("InvalidateUser", mock.Anything, mock.Anything).Maybe()
	m.On("InvalidateCatalog", mock.Anything).Maybe()
	return m
}

// MockObjectUploader is a mock implementation of service.ObjectUploader
type MockObjectUploader struct {
	mock.Mock
}

func (m *MockObjectUploader) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

// CountingInvalidator records invalidations without asserting on them.
type CountingInvalidator struct {
	mu      sync.Mutex
	Users   map[uuid.UUID]int
	Catalog int
}

func NewCountingInvalidator() *CountingInvalidator {
	return &CountingInvalidator{Users: map[uuid.UUID]int{}}
}

func (c *CountingInvalidator) InvalidateUser(_ context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Users[userID]++
}

func (c *CountingInvalidator) InvalidateCatalog(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Catalog++
}

func (c *CountingInvalidator) UserCount(userID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Users[userID]
}

func (c *CountingInvalidator) CatalogCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Catalog
}
