package model

type Quote struct {
	QuoteID           string  `gorm:"column:quote_id;type:text;primaryKey"`
	RequirementID     string  `gorm:"column:requirement_id;type:text;not null;index"`
	VendorID          string  `gorm:"column:vendor_id;type:text;not null;index"`
	BrandType         string  `gorm:"column:brand_type;type:text;not null"`
	Condition         string  `gorm:"column:condition;type:text"`
	UnitPrice         string  `gorm:"column:unit_price;type:text;not null"`
	ShippingCost      string  `gorm:"column:shipping_cost;type:text;not null"`
	CoreCharge        *string `gorm:"column:core_charge;type:text"`
	Availability      string  `gorm:"column:availability;type:text;not null"`
	QuantityAvailable int     `gorm:"column:quantity_available;not null"`
	LeadTimeDaysMin   *int    `gorm:"column:lead_time_days_min"`
	LeadTimeDaysMax   *int    `gorm:"column:lead_time_days_max"`
	WarrantyMonths    int     `gorm:"column:warranty_months;not null;default:0"`
	ReceivedAt        string  `gorm:"column:received_at;type:text;not null"`
	ExpiresAt         *string `gorm:"column:expires_at;type:text"`
	Disposition       string  `gorm:"column:disposition;type:text;not null"`
	RejectionCode     *string `gorm:"column:rejection_code;type:text"`
}

func (Quote) TableName() string {
	return "quotes"
}
