package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"partsource/internal/domain/po"
	"partsource/internal/errs"
	"partsource/internal/infrastructure/persistence/sqlite/model"
	"partsource/internal/ports"
)

type PurchaseOrderRepository struct {
	base
}

var _ ports.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{base{db: db}}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, order po.PurchaseOrder) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.PurchaseOrder{
		PONumber:      order.PONumber,
		VendorID:      order.VendorID,
		RepairOrderID: order.RepairOrderID,
		Subtotal:      formatDecimal(order.Subtotal),
		ShippingTotal: formatDecimal(order.ShippingTotal),
		TaxTotal:      formatDecimal(order.TaxTotal),
		DiscountTotal: formatDecimal(order.DiscountTotal),
		TotalAmount:   formatDecimal(order.TotalAmount),
		Status:        string(order.Status),
		CreatedAt:     formatTime(order.CreatedAt),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert purchase order")
	}

	for _, item := range order.LineItems {
		line := model.PurchaseOrderLine{
			PONumber:      order.PONumber,
			RequirementID: item.RequirementID,
			QuoteID:       item.QuoteID,
			Quantity:      item.Quantity,
			UnitPrice:     formatDecimal(item.UnitPrice),
			LineTotal:     formatDecimal(item.LineTotal),
		}
		if err := db.Create(&line).Error; err != nil {
			return errs.Wrap(err, "insert purchase order line")
		}
	}
	return nil
}

func (r *PurchaseOrderRepository) Get(ctx context.Context, poNumber string) (po.PurchaseOrder, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return po.PurchaseOrder{}, err
	}

	var row model.PurchaseOrder
	if err := db.Where("po_number = ?", poNumber).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return po.PurchaseOrder{}, fmt.Errorf("%w: purchase order %q", ports.ErrNotFound, poNumber)
		}
		return po.PurchaseOrder{}, errs.Wrap(err, "query purchase order")
	}

	order, err := r.loadOrder(db, row)
	if err != nil {
		return po.PurchaseOrder{}, err
	}
	return order, nil
}

func (r *PurchaseOrderRepository) ListByRepairOrder(ctx context.Context, repairOrderID string) ([]po.PurchaseOrder, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.PurchaseOrder
	if err := db.Where("repair_order_id = ?", repairOrderID).
		Order("po_number asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query purchase orders by repair order")
	}

	orders := make([]po.PurchaseOrder, 0, len(rows))
	for _, row := range rows {
		order, err := r.loadOrder(db, row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *PurchaseOrderRepository) loadOrder(db *gorm.DB, row model.PurchaseOrder) (po.PurchaseOrder, error) {
	var lines []model.PurchaseOrderLine
	if err := db.Where("po_number = ?", row.PONumber).
		Order("requirement_id asc").
		Find(&lines).Error; err != nil {
		return po.PurchaseOrder{}, errs.Wrap(err, "query purchase order lines")
	}

	order := po.PurchaseOrder{
		PONumber:      row.PONumber,
		VendorID:      row.VendorID,
		RepairOrderID: row.RepairOrderID,
		Subtotal:      parseDecimal(row.Subtotal),
		ShippingTotal: parseDecimal(row.ShippingTotal),
		TaxTotal:      parseDecimal(row.TaxTotal),
		DiscountTotal: parseDecimal(row.DiscountTotal),
		TotalAmount:   parseDecimal(row.TotalAmount),
		Status:        po.Status(row.Status),
		CreatedAt:     parseTime(row.CreatedAt),
	}
	for _, line := range lines {
		order.LineItems = append(order.LineItems, po.LineItem{
			RequirementID: line.RequirementID,
			QuoteID:       line.QuoteID,
			Quantity:      line.Quantity,
			UnitPrice:     parseDecimal(line.UnitPrice),
			LineTotal:     parseDecimal(line.LineTotal),
		})
	}
	return order, nil
}
