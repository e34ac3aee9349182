package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"partsource/internal/domain/sourcing"
	"partsource/internal/errs"
	"partsource/internal/infrastructure/persistence/sqlite/model"
	"partsource/internal/ports"
)

type SequenceRepository struct {
	base
}

var _ ports.SequenceRepository = (*SequenceRepository)(nil)

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{base{db: db}}
}

// Next claims the next counter value for the key. The advance is guarded on
// the value just read, so a concurrent claim surfaces as
// sourcing.ErrSequenceConflict instead of a duplicated number.
func (r *SequenceRepository) Next(ctx context.Context, key ports.SequenceKey) (int, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	seed := model.POSequence{
		RepairOrderID: key.RepairOrderID,
		VendorID:      key.VendorID,
		YearMonth:     key.YearMonth,
		LastSeq:       0,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, errs.Wrap(err, "seed po sequence")
	}

	var row model.POSequence
	if err := db.Where("repair_order_id = ? AND vendor_id = ? AND year_month = ?",
		key.RepairOrderID, key.VendorID, key.YearMonth).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: po sequence %v", ports.ErrNotFound, key)
		}
		return 0, errs.Wrap(err, "query po sequence")
	}

	next := row.LastSeq + 1
	result := db.Model(&model.POSequence{}).
		Where("repair_order_id = ? AND vendor_id = ? AND year_month = ? AND last_seq = ?",
			key.RepairOrderID, key.VendorID, key.YearMonth, row.LastSeq).
		Update("last_seq", next)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "advance po sequence")
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: %s/%s/%s", sourcing.ErrSequenceConflict,
			key.RepairOrderID, key.VendorID, key.YearMonth)
	}
	return next, nil
}
