package notify

import (
	"fmt"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
)

const defaultCustomerName = "Cliente"

var templates = map[order.Status]string{
	order.StatusPicked:    "📦 Olá %s! Seu pedido #%s está sendo separado e logo estará pronto para entrega!",
	order.StatusDelivered: "🚚 Boa notícia %s! Seu pedido #%s saiu para entrega! Aguarde nosso entregador.",
}

// Message renders the customer message for an order entering status. The
// second result is false for statuses that do not notify.
func Message(o order.Order, status order.Status) (string, bool) {
	tmpl, ok := templates[status]
	if !ok {
		return "", false
	}

	name := o.CustomerName
	if name == "" {
		name = defaultCustomerName
	}
	return fmt.Sprintf(tmpl, name, o.DisplayNumber()), true
}
