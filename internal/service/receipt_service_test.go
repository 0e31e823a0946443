package service

import (
	"context"
	"testing"

	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmailSender struct {
	to      []string
	subject string
	body    string
	err     error
}

func (f *fakeEmailSender) Send(ctx context.Context, to []string, subject, bodyText string) error {
	f.to = to
	f.subject = subject
	f.body = bodyText
	return f.err
}

func receiptTestOrder(t *testing.T) *entity.Order {
	t.Helper()
	line, err := entity.NewOrderLine("p1", "Keyboard", 10000, 2)
	require.NoError(t, err)
	order, err := entity.NewOrder("user1", []entity.OrderLine{*line})
	require.NoError(t, err)
	return order
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", formatMoney(0))
	assert.Equal(t, "0.05", formatMoney(5))
	assert.Equal(t, "100.00", formatMoney(10000))
	assert.Equal(t, "249.99", formatMoney(24999))
}

func TestReceiptService_SendOrderReceipt(t *testing.T) {
	sender := &fakeEmailSender{}
	receipts := NewReceiptService(sender, logger.NoOp())
	order := receiptTestOrder(t)

	err := receipts.SendOrderReceipt(context.Background(), order, "askhat@example.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"askhat@example.com"}, sender.to)
	assert.Contains(t, sender.subject, order.ID)
	assert.Contains(t, sender.body, "Keyboard (x2) @ 100.00 = 200.00")
	assert.Contains(t, sender.body, "Subtotal: 200.00")
	assert.Contains(t, sender.body, "Shipping: 50.00")
	assert.Contains(t, sender.body, "Total:    250.00")
}

func TestReceiptService_RequiresRecipient(t *testing.T) {
	sender := &fakeEmailSender{}
	receipts := NewReceiptService(sender, logger.NoOp())

	err := receipts.SendOrderReceipt(context.Background(), receiptTestOrder(t), "")
	assert.Error(t, err)
	assert.Empty(t, sender.to)
}
