package sourcing

import (
	"github.com/shopspring/decimal"

	"partsource/internal/domain/part"
)

// Event is anything the engine announces to dashboards and notification
// consumers. Subject doubles as the broker routing key.
type Event interface {
	Subject() string
}

type RequirementStatusChanged struct {
	RequirementID string      `json:"requirementId"`
	From          part.Status `json:"from"`
	To            part.Status `json:"to"`
}

func (RequirementStatusChanged) Subject() string { return "sourcing.requirement.status" }

type PurchaseOrderCreated struct {
	PONumber    string          `json:"poNumber"`
	VendorID    string          `json:"vendorId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (PurchaseOrderCreated) Subject() string { return "sourcing.po.created" }

type SourcingRequestResolved struct {
	RequestID string `json:"requestId"`
	State     State  `json:"state"`
}

func (SourcingRequestResolved) Subject() string { return "sourcing.request.resolved" }
