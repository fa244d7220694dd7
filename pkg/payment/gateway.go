package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// VADetails is what a gateway issues for one virtual-account invoice.
type VADetails struct {
	Bank          string
	AccountNumber string
	ExpiresAt     time.Time
}

// Gateway defines the interface for virtual-account payment providers.
type Gateway interface {
	// IssueVA allocates virtual-account details for an invoice.
	IssueVA(userID, transactionID string, amount int64) (*VADetails, error)
}

// Banks offered by the mock VA gateway.
var vaBanks = []string{"Permata VA", "CIMB VA", "BNI VA", "BRI VA"}

// MockGateway simulates a VA aggregator (Midtrans/Xendit style). VA numbers
// are random 16-digit strings and invoices are payable for 24 hours.
type MockGateway struct {
	TTL time.Duration
}

// NewMockGateway creates a MockGateway with the default 24h invoice TTL.
func NewMockGateway() *MockGateway {
	return &MockGateway{TTL: 24 * time.Hour}
}

// IssueVA implements Gateway.
func (g *MockGateway) IssueVA(userID, transactionID string, amount int64) (*VADetails, error) {
	bankIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(vaBanks))))
	if err != nil {
		return nil, fmt.Errorf("failed to pick VA bank: %w", err)
	}

	number, err := randomDigits(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate VA number: %w", err)
	}

	return &VADetails{
		Bank:          vaBanks[bankIdx.Int64()],
		AccountNumber: number,
		ExpiresAt:     time.Now().Add(g.TTL),
	}, nil
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
