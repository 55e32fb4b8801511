package service

import (
	"context"
	"time"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/logger"
)

// HolderService handles holder CRUD. Deletion defers to the assignment
// service's referential rule.
type HolderService struct {
	holders    HolderStore
	assignment *AssignmentService
	log        *logger.Logger
}

// NewHolderService creates a new holder service
func NewHolderService(holders HolderStore, assignment *AssignmentService, log *logger.Logger) *HolderService {
	return &HolderService{
		holders:    holders,
		assignment: assignment,
		log:        log,
	}
}

// CreateHolderRequest carries the fields accepted at holder creation
type CreateHolderRequest struct {
	HolderCode  string  `json:"holder_code"`
	Name        string  `json:"name"`
	OrgUnit     string  `json:"org_unit"`
	PortraitRef *string `json:"portrait_ref,omitempty"`
}

// Create registers a new holder
func (s *HolderService) Create(ctx context.Context, req *CreateHolderRequest) (*models.Holder, error) {
	if req.HolderCode == "" {
		return nil, &models.PolicyViolationError{Reason: "holder code is required"}
	}
	if req.Name == "" {
		return nil, &models.PolicyViolationError{Reason: "holder name is required"}
	}

	now := time.Now()
	holder := &models.Holder{
		HolderCode:  req.HolderCode,
		Name:        req.Name,
		OrgUnit:     req.OrgUnit,
		PortraitRef: req.PortraitRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.holders.Create(ctx, holder); err != nil {
		return nil, err
	}

	s.log.Info("holder created", "holder_code", holder.HolderCode)

	return holder, nil
}

// Get retrieves a holder by code
func (s *HolderService) Get(ctx context.Context, holderCode string) (*models.Holder, error) {
	return s.holders.Get(ctx, holderCode)
}

// List retrieves all holders
func (s *HolderService) List(ctx context.Context) ([]*models.Holder, error) {
	return s.holders.List(ctx)
}

// Update mutates a holder's name, unit and portrait
func (s *HolderService) Update(ctx context.Context, holderCode string, req *CreateHolderRequest) (*models.Holder, error) {
	holder, err := s.holders.Get(ctx, holderCode)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		holder.Name = req.Name
	}
	holder.OrgUnit = req.OrgUnit
	if req.PortraitRef != nil {
		holder.PortraitRef = req.PortraitRef
	}

	if err := s.holders.Update(ctx, holder); err != nil {
		return nil, err
	}

	s.log.Info("holder updated", "holder_code", holderCode)

	return holder, nil
}

// Delete removes a holder, refused while any asset references it
func (s *HolderService) Delete(ctx context.Context, holderCode string) error {
	if err := s.assignment.CheckHolderDeletable(ctx, holderCode); err != nil {
		return err
	}

	if err := s.holders.Delete(ctx, holderCode); err != nil {
		return err
	}

	s.log.Info("holder deleted", "holder_code", holderCode)

	return nil
}
