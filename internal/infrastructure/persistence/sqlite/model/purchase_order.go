package model

type PurchaseOrder struct {
	PONumber      string `gorm:"column:po_number;type:text;primaryKey"`
	VendorID      string `gorm:"column:vendor_id;type:text;not null;index"`
	RepairOrderID string `gorm:"column:repair_order_id;type:text;not null;index"`
	Subtotal      string `gorm:"column:subtotal;type:text;not null"`
	ShippingTotal string `gorm:"column:shipping_total;type:text;not null"`
	TaxTotal      string `gorm:"column:tax_total;type:text;not null"`
	DiscountTotal string `gorm:"column:discount_total;type:text;not null"`
	TotalAmount   string `gorm:"column:total_amount;type:text;not null"`
	Status        string `gorm:"column:status;type:text;not null"`
	CreatedAt     string `gorm:"column:created_at;type:text;not null"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

type PurchaseOrderLine struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	PONumber      string `gorm:"column:po_number;type:text;not null;index"`
	RequirementID string `gorm:"column:requirement_id;type:text;not null"`
	QuoteID       string `gorm:"column:quote_id;type:text;not null"`
	Quantity      int    `gorm:"column:quantity;not null"`
	UnitPrice     string `gorm:"column:unit_price;type:text;not null"`
	LineTotal     string `gorm:"column:line_total;type:text;not null"`
}

func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}
