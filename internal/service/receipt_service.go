package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/askhat-dev/storefront/internal/adapter/email"
	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
)

type ReceiptService interface {
	SendOrderReceipt(ctx context.Context, order *entity.Order, toEmail string) error
}

type receiptService struct {
	sender email.EmailSender
	log    logger.Logger
}

func NewReceiptService(sender email.EmailSender, log logger.Logger) ReceiptService {
	return &receiptService{sender: sender, log: log}
}

func formatMoney(minorUnits int64) string {
	return fmt.Sprintf("%d.%02d", minorUnits/100, minorUnits%100)
}

func renderOrderReceipt(order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", order.ID)
	fmt.Fprintf(&b, "Placed: %s\n", order.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Status: %s\n\nItems:\n", order.Status)
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "- %s (x%d) @ %s = %s\n",
			line.Name, line.Quantity, formatMoney(line.UnitPrice), formatMoney(line.Subtotal))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", formatMoney(order.Subtotal))
	fmt.Fprintf(&b, "Shipping: %s\n", formatMoney(order.Shipping))
	fmt.Fprintf(&b, "Total:    %s\n", formatMoney(order.Total))
	return b.String()
}

func (s *receiptService) SendOrderReceipt(ctx context.Context, order *entity.Order, toEmail string) error {
	if toEmail == "" {
		return fmt.Errorf("no recipient email for order %s receipt", order.ID)
	}

	subject := fmt.Sprintf("Your order %s is confirmed", order.ID)
	body := renderOrderReceipt(order)

	if err := s.sender.Send(ctx, []string{toEmail}, subject, body); err != nil {
		return fmt.Errorf("failed to send receipt for order %s: %w", order.ID, err)
	}
	s.log.Infof("Receipt for order %s sent to %s", order.ID, toEmail)
	return nil
}
