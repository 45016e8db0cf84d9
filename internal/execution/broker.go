package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alphaframe/alphaframe/internal/contracts"
)

// Broker is the execution collaborator contract. Implementations are
// paper-trading endpoints; live routing is out of scope.
type Broker interface {
	// GetAccount retrieves the current account state
	GetAccount(ctx context.Context) (*Account, error)

	// SubmitOrder submits an order. Callers must never pass a
	// request with DryRun set.
	SubmitOrder(ctx context.Context, req *contracts.OrderRequest) (*contracts.OrderResult, error)
}

// Account represents the trading account state
type Account struct {
	PortfolioValue float64
	Cash           float64
	BuyingPower    float64
	Currency       string
}

// MockBroker implements Broker for tests and offline runs
type MockBroker struct {
	mu        sync.Mutex
	account   Account
	submitted []contracts.OrderRequest
	failNext  error
	seq       int
}

// NewMockBroker creates a mock broker with a 100k paper account
func NewMockBroker() *MockBroker {
	return &MockBroker{
		account: Account{
			PortfolioValue: 100_000,
			Cash:           100_000,
			BuyingPower:    100_000,
			Currency:       "USD",
		},
	}
}

// SetAccount overrides the mock account state
func (b *MockBroker) SetAccount(account Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.account = account
}

// FailNext makes the next SubmitOrder call return err
func (b *MockBroker) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

// GetAccount retrieves the mock account
func (b *MockBroker) GetAccount(ctx context.Context) (*Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	account := b.account
	return &account, nil
}

// SubmitOrder records the order and returns a synthetic result
func (b *MockBroker) SubmitOrder(ctx context.Context, req *contracts.OrderRequest) (*contracts.OrderResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failNext != nil {
		err := b.failNext
		b.failNext = nil
		return nil, err
	}
	if req.DryRun {
		return nil, fmt.Errorf("dry-run order for %s reached the broker", req.Ticker)
	}

	b.seq++
	b.submitted = append(b.submitted, *req)

	return &contracts.OrderResult{
		OrderID:     fmt.Sprintf("MOCK-%d", b.seq),
		Status:      contracts.OrderStatusSubmitted,
		SubmittedAt: time.Now(),
	}, nil
}

// Submitted returns a copy of all orders the mock has accepted
func (b *MockBroker) Submitted() []contracts.OrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]contracts.OrderRequest, len(b.submitted))
	copy(out, b.submitted)
	return out
}
