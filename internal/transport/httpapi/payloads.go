package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
)

type createRequestPayload struct {
	RepairOrderID string               `json:"repairOrderId" validate:"required"`
	Deadline      *time.Time           `json:"deadline,omitempty"`
	Requirements  []requirementPayload `json:"requirements" validate:"required,min=1,dive"`
}

type requirementPayload struct {
	RequirementID   string  `json:"requirementId" validate:"required"`
	PartDescription string  `json:"partDescription" validate:"required"`
	OEMPartNumber   string  `json:"oemPartNumber,omitempty"`
	Quantity        int     `json:"quantity" validate:"required,min=1"`
	TargetPrice     *string `json:"targetPrice,omitempty"`
	Category        string  `json:"category" validate:"required,oneof=body mechanical glass paint electrical"`
	BrandPreference string  `json:"brandPreference,omitempty"`
}

type quotePayload struct {
	QuoteID           string     `json:"quoteId" validate:"required"`
	RequirementID     string     `json:"requirementId" validate:"required"`
	VendorID          string     `json:"vendorId" validate:"required"`
	BrandType         string     `json:"brandType" validate:"required"`
	Condition         string     `json:"condition,omitempty"`
	UnitPrice         string     `json:"unitPrice" validate:"required"`
	ShippingCost      string     `json:"shippingCost,omitempty"`
	CoreCharge        *string    `json:"coreCharge,omitempty"`
	Availability      string     `json:"availabilityStatus" validate:"required"`
	QuantityAvailable int        `json:"quantityAvailable"`
	LeadTimeDaysMin   *int       `json:"leadTimeDaysMin,omitempty"`
	LeadTimeDaysMax   *int       `json:"leadTimeDaysMax,omitempty"`
	WarrantyMonths    int        `json:"warrantyMonths,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
}

func (p requirementPayload) toDomain(repairOrderID string) (part.Requirement, error) {
	req := part.Requirement{
		RequirementID:   p.RequirementID,
		RepairOrderID:   repairOrderID,
		PartDescription: p.PartDescription,
		OEMPartNumber:   p.OEMPartNumber,
		Quantity:        p.Quantity,
		Category:        part.Category(p.Category),
		CurrentStatus:   part.StatusNeeded,
	}
	if p.TargetPrice != nil {
		target, err := decimal.NewFromString(*p.TargetPrice)
		if err != nil {
			return part.Requirement{}, err
		}
		req.TargetPrice = &target
	}
	if p.BrandPreference != "" {
		brand, err := quote.ParseBrandType(p.BrandPreference)
		if err != nil {
			return part.Requirement{}, err
		}
		req.BrandPreference = brand
	}
	return req, nil
}

func (p quotePayload) toDomain() (quote.VendorQuote, error) {
	brand, err := quote.ParseBrandType(p.BrandType)
	if err != nil {
		return quote.VendorQuote{}, err
	}
	availability, err := quote.ParseAvailability(p.Availability)
	if err != nil {
		return quote.VendorQuote{}, err
	}

	q := quote.VendorQuote{
		QuoteID:           p.QuoteID,
		RequirementID:     p.RequirementID,
		VendorID:          p.VendorID,
		BrandType:         brand,
		Condition:         p.Condition,
		Availability:      availability,
		QuantityAvailable: p.QuantityAvailable,
		LeadTimeDaysMin:   p.LeadTimeDaysMin,
		LeadTimeDaysMax:   p.LeadTimeDaysMax,
		WarrantyMonths:    p.WarrantyMonths,
		ExpiresAt:         p.ExpiresAt,
	}

	unitPrice, err := decimal.NewFromString(p.UnitPrice)
	if err != nil {
		return quote.VendorQuote{}, err
	}
	q.UnitPrice = unitPrice

	if p.ShippingCost != "" {
		shipping, err := decimal.NewFromString(p.ShippingCost)
		if err != nil {
			return quote.VendorQuote{}, err
		}
		q.ShippingCost = shipping
	}
	if p.CoreCharge != nil {
		core, err := decimal.NewFromString(*p.CoreCharge)
		if err != nil {
			return quote.VendorQuote{}, err
		}
		q.CoreCharge = &core
	}
	return q, nil
}
