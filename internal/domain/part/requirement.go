package part

import (
	"github.com/shopspring/decimal"

	"partsource/internal/domain/quote"
)

// Category groups requirements for vendor routing. The set is open ended;
// shops add their own labels, so no strict parse is enforced.
type Category string

const (
	CategoryBody       Category = "body"
	CategoryMechanical Category = "mechanical"
	CategoryGlass      Category = "glass"
	CategoryPaint      Category = "paint"
	CategoryElectrical Category = "electrical"
)

// Requirement is one part needed for one repair order, produced upstream by
// estimate normalization. Only CurrentStatus and SelectedQuoteID change
// after creation.
type Requirement struct {
	RequirementID   string
	RepairOrderID   string
	PartDescription string
	OEMPartNumber   string
	Quantity        int
	TargetPrice     *decimal.Decimal
	Category        Category
	// BrandPreference is the provenance the estimate or insurer mandates,
	// e.g. OEM on a late-model vehicle. Empty accepts any brand.
	BrandPreference quote.BrandType
	CurrentStatus   Status
	SelectedQuoteID string
}
