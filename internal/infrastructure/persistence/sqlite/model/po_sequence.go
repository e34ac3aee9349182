package model

// POSequence is one keyed purchase order counter. LastSeq is advanced with
// an optimistic guard so concurrent claims surface as conflicts instead of
// duplicate numbers.
type POSequence struct {
	RepairOrderID string `gorm:"column:repair_order_id;type:text;primaryKey"`
	VendorID      string `gorm:"column:vendor_id;type:text;primaryKey"`
	YearMonth     string `gorm:"column:year_month;type:text;primaryKey"`
	LastSeq       int    `gorm:"column:last_seq;not null;default:0"`
}

func (POSequence) TableName() string {
	return "po_sequences"
}
