package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderAndVerify(t *testing.T) {
	p := NewGatewayProvider("s3cret")
	ctx := context.Background()

	orderID, err := p.CreateOrder(ctx, "BMS000001ABCDEF", 52950)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(orderID, "order_"))

	sig := p.Sign(orderID, "pay_1")
	ok, err := p.VerifyPayment(ctx, orderID, "pay_1", sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	p := NewGatewayProvider("s3cret")
	ctx := context.Background()

	orderID, err := p.CreateOrder(ctx, "BMS000001ABCDEF", 100)
	require.NoError(t, err)

	ok, err := p.VerifyPayment(ctx, orderID, "pay_1", "deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)

	// A signature for a different payment id must not verify.
	ok, err = p.VerifyPayment(ctx, orderID, "pay_2", p.Sign(orderID, "pay_1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	p := NewGatewayProvider("s3cret")
	ok, err := p.VerifyPayment(context.Background(), "order_missing", "pay_1", p.Sign("order_missing", "pay_1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignDependsOnSecret(t *testing.T) {
	a := NewGatewayProvider("one")
	b := NewGatewayProvider("two")
	assert.NotEqual(t, a.Sign("order_x", "pay_1"), b.Sign("order_x", "pay_1"))
}
