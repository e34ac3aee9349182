package model

// All lists every table for auto-migration.
func All() []any {
	return []any{
		&Requirement{},
		&Quote{},
		&SourcingRequest{},
		&RequestRequirement{},
		&PurchaseOrder{},
		&PurchaseOrderLine{},
		&POSequence{},
	}
}
