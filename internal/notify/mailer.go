package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"github.com/applitech/orders-service/internal/domain"
)

const confirmationSubject = "Order Confirmation"

// Mailer sends plain-text order confirmations through an SMTP relay. Sends
// are best-effort: callers log failures and never fail the request on them.
type Mailer struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

func NewMailer(host string, port int, username, password, fromName, fromEmail string) *Mailer {
	return &Mailer{
		dialer:    gomail.NewDialer(host, port, username, password),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// SendOrderConfirmation mails the confirmation for the given order to the
// purchasing user's address. products supplies catalog records for the items;
// items whose product could not be re-resolved fall back to the unit price
// captured on the item.
func (m *Mailer) SendOrderConfirmation(to string, order *domain.Order, products map[string]domain.Product) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", confirmationSubject)
	msg.SetBody("text/plain", ConfirmationBody(order, products))

	return m.dialer.DialAndSend(msg)
}

// ConfirmationBody renders the confirmation text: one name/price/quantity/
// line-total block per item.
func ConfirmationBody(order *domain.Order, products map[string]domain.Product) string {
	var b strings.Builder
	b.WriteString("Dear Customer,\n\nThank you for your purchase. We appreciate your business!\n\nYour order details:\n")

	for _, item := range order.Items {
		name := item.ProductID
		price := item.Price
		if product, ok := products[item.ProductID]; ok {
			name = product.Name
			price = product.Price
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fmt.Fprintf(&b, "\nProduct: %s\nPrice: %s\nQuantity: %d\nTotal: %s\n", name, price, item.Quantity, lineTotal)
	}

	b.WriteString("\nIf you have any questions or concerns, please feel free to contact us.\n\nRegards,\nApplitech")
	return b.String()
}
