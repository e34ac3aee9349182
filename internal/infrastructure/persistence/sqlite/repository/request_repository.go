package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"partsource/internal/domain/sourcing"
	"partsource/internal/errs"
	"partsource/internal/infrastructure/persistence/sqlite/model"
	"partsource/internal/ports"
)

type SourcingRequestRepository struct {
	base
}

var _ ports.SourcingRequestRepository = (*SourcingRequestRepository)(nil)

func NewSourcingRequestRepository(db *gorm.DB) *SourcingRequestRepository {
	return &SourcingRequestRepository{base{db: db}}
}

func (r *SourcingRequestRepository) Create(ctx context.Context, req sourcing.Request) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.SourcingRequest{
		RequestID:     req.RequestID,
		RepairOrderID: req.RepairOrderID,
		State:         string(req.State),
		Deadline:      formatTime(req.Deadline),
		CreatedAt:     formatTime(req.CreatedAt),
		ClosedAt:      formatTimePtr(req.ClosedAt),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert sourcing request")
	}

	for _, requirementID := range req.RequirementIDs {
		link := model.RequestRequirement{
			RequestID:     req.RequestID,
			RequirementID: requirementID,
		}
		if err := db.Create(&link).Error; err != nil {
			return errs.Wrap(err, "insert request requirement link")
		}
	}
	return nil
}

func (r *SourcingRequestRepository) Get(ctx context.Context, requestID string) (sourcing.Request, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return sourcing.Request{}, err
	}

	var row model.SourcingRequest
	if err := db.Where("request_id = ?", requestID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sourcing.Request{}, fmt.Errorf("%w: sourcing request %q", ports.ErrNotFound, requestID)
		}
		return sourcing.Request{}, errs.Wrap(err, "query sourcing request")
	}

	var links []model.RequestRequirement
	if err := db.Where("request_id = ?", requestID).
		Order("requirement_id asc").
		Find(&links).Error; err != nil {
		return sourcing.Request{}, errs.Wrap(err, "query request requirements")
	}

	req := sourcing.Request{
		RequestID:     row.RequestID,
		RepairOrderID: row.RepairOrderID,
		State:         sourcing.State(row.State),
		Deadline:      parseTime(row.Deadline),
		CreatedAt:     parseTime(row.CreatedAt),
		ClosedAt:      parseTimePtr(row.ClosedAt),
	}
	for _, link := range links {
		req.RequirementIDs = append(req.RequirementIDs, link.RequirementID)
	}
	return req, nil
}

// UpdateState is guarded on the expected current state. Reaching a terminal
// state stamps closed_at.
func (r *SourcingRequestRepository) UpdateState(ctx context.Context, requestID string, from, to sourcing.State) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	updates := map[string]any{"state": string(to)}
	if to.Terminal() {
		updates["closed_at"] = formatTime(nowUTC())
	}

	result := db.Model(&model.SourcingRequest{}).
		Where("request_id = ? AND state = ?", requestID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update sourcing request state")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sourcing request %q is no longer in state %q", requestID, from)
	}
	return nil
}
