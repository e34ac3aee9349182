package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
	"partsource/internal/errs"
	"partsource/internal/infrastructure/persistence/sqlite/model"
	"partsource/internal/ports"
)

type RequirementRepository struct {
	base
}

var _ ports.RequirementRepository = (*RequirementRepository)(nil)

func NewRequirementRepository(db *gorm.DB) *RequirementRepository {
	return &RequirementRepository{base{db: db}}
}

func (r *RequirementRepository) Create(ctx context.Context, req part.Requirement) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	now := formatTime(nowUTC())
	row := model.Requirement{
		RequirementID:   req.RequirementID,
		RepairOrderID:   req.RepairOrderID,
		PartDescription: req.PartDescription,
		OEMPartNumber:   req.OEMPartNumber,
		Quantity:        req.Quantity,
		TargetPrice:     formatDecimalPtr(req.TargetPrice),
		Category:        string(req.Category),
		BrandPreference: string(req.BrandPreference),
		Status:          string(req.CurrentStatus),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.SelectedQuoteID != "" {
		row.SelectedQuoteID = &req.SelectedQuoteID
	}

	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert requirement")
	}
	return nil
}

func (r *RequirementRepository) Get(ctx context.Context, requirementID string) (part.Requirement, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return part.Requirement{}, err
	}

	var row model.Requirement
	if err := db.Where("requirement_id = ?", requirementID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return part.Requirement{}, fmt.Errorf("%w: requirement %q", ports.ErrNotFound, requirementID)
		}
		return part.Requirement{}, errs.Wrap(err, "query requirement")
	}

	return mapRequirement(row), nil
}

func (r *RequirementRepository) ListByIDs(ctx context.Context, requirementIDs []string) ([]part.Requirement, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(requirementIDs) == 0 {
		return nil, nil
	}

	var rows []model.Requirement
	if err := db.Where("requirement_id IN ?", requirementIDs).
		Order("requirement_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query requirements")
	}

	items := make([]part.Requirement, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRequirement(row))
	}
	return items, nil
}

// UpdateStatus is guarded: the row must still hold the expected from
// status, otherwise nothing changes and the conflict is reported.
func (r *RequirementRepository) UpdateStatus(ctx context.Context, requirementID string, from, to part.Status) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Requirement{}).
		Where("requirement_id = ? AND status = ?", requirementID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": formatTime(nowUTC()),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update requirement status")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("requirement %q is no longer in status %q", requirementID, from)
	}
	return nil
}

func (r *RequirementRepository) SetSelectedQuote(ctx context.Context, requirementID, quoteID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Requirement{}).
		Where("requirement_id = ?", requirementID).
		Updates(map[string]any{
			"selected_quote_id": quoteID,
			"updated_at":        formatTime(nowUTC()),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "set selected quote")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: requirement %q", ports.ErrNotFound, requirementID)
	}
	return nil
}

func mapRequirement(row model.Requirement) part.Requirement {
	req := part.Requirement{
		RequirementID:   row.RequirementID,
		RepairOrderID:   row.RepairOrderID,
		PartDescription: row.PartDescription,
		OEMPartNumber:   row.OEMPartNumber,
		Quantity:        row.Quantity,
		TargetPrice:     parseDecimalPtr(row.TargetPrice),
		Category:        part.Category(row.Category),
		BrandPreference: quote.BrandType(row.BrandPreference),
		CurrentStatus:   part.Status(row.Status),
	}
	if row.SelectedQuoteID != nil {
		req.SelectedQuoteID = *row.SelectedQuoteID
	}
	return req
}
