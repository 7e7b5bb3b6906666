package order

import (
	"fmt"
	"strings"
)

// Status is the fulfillment workflow state. Values are the order store's wire
// values.
type Status string

const (
	StatusPending   Status = "pendente"
	StatusPicked    Status = "separado"
	StatusDelivered Status = "entregue"
	StatusInvoiced  Status = "faturado"
)

// statusRank orders the workflow. Moves only go to a higher rank.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusPicked:    1,
	StatusDelivered: 2,
	StatusInvoiced:  3,
}

var statusAliases = map[string]Status{
	"pendente":  StatusPending,
	"pending":   StatusPending,
	"separado":  StatusPicked,
	"picked":    StatusPicked,
	"entregue":  StatusDelivered,
	"delivered": StatusDelivered,
	"faturado":  StatusInvoiced,
	"invoiced":  StatusInvoiced,
}

// ParseStatus accepts the store's Portuguese values and their English names.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsTerminal reports whether change highlighting no longer applies.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusInvoiced
}

// IsCompleted reports whether the order belongs in the completed column.
func (s Status) IsCompleted() bool {
	return s.IsTerminal()
}

func (s Status) String() string {
	return string(s)
}

// ValidateTransition allows any forward move, e.g. sending a pending order
// straight to invoicing. Backward and same-status moves are rejected.
func ValidateTransition(from, to Status) error {
	fromRank, okFrom := statusRank[from]
	toRank, okTo := statusRank[to]
	if okFrom && okTo && toRank > fromRank {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
