// Package itinerary implements trip itinerary CRUD with per-day budget aggregation.
package itinerary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/creator-platform/creator_service/internal/domain/entities"
	"github.com/creator-platform/creator_service/internal/infrastructure/repositories"
	domainerrors "github.com/creator-platform/creator_service/pkg/errors"
	"github.com/creator-platform/creator_service/pkg/logger"
)

// Repository interface for itinerary persistence
type Repository interface {
	Create(ctx context.Context, it *entities.Itinerary) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Itinerary, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*entities.Itinerary, error)
	Update(ctx context.Context, it *entities.Itinerary) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetDay(ctx context.Context, dayID uuid.UUID) (*entities.ItineraryDay, error)
	CreateDay(ctx context.Context, day *entities.ItineraryDay) error
	UpdateDay(ctx context.Context, day *entities.ItineraryDay) error
	DeleteDay(ctx context.Context, day *entities.ItineraryDay) error
}

// Service owns itinerary and itinerary-day operations
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates an itinerary service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateItineraryInput carries the fields for a new itinerary
type CreateItineraryInput struct {
	Title         string
	Description   string
	StartDate     *time.Time
	EndDate       *time.Time
	CoverImageURL *string
}

// DayInput carries the fields for a new or updated itinerary day
type DayInput struct {
	DayNumber  int
	Title      string
	Activities string
	Budget     decimal.Decimal
}

// Create creates an itinerary for a creator
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, in CreateItineraryInput) (*entities.Itinerary, error) {
	if in.Title == "" {
		return nil, domainerrors.NewValidationError("itinerary title is required")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, domainerrors.NewValidationError("end date cannot be before start date")
	}

	now := time.Now()
	it := &entities.Itinerary{
		ID:            uuid.New(),
		CreatorID:     creatorID,
		Title:         in.Title,
		Description:   in.Description,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		TotalBudget:   decimal.Zero,
		CoverImageURL: in.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("create itinerary: %w", err)
	}

	s.log.Info("Itinerary created", "itinerary_id", it.ID.String(), "creator_id", creatorID.String())
	return it, nil
}

// Get returns an itinerary with its days
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entities.Itinerary, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, domainerrors.NewNotFoundError("itinerary", id.String())
		}
		return nil, fmt.Errorf("get itinerary: %w", err)
	}
	return it, nil
}

// List returns a creator's itineraries, newest first
func (s *Service) List(ctx context.Context, creatorID uuid.UUID) ([]*entities.Itinerary, error) {
	return s.repo.ListByCreator(ctx, creatorID)
}

// Update edits an itinerary owned by the creator
func (s *Service) Update(ctx context.Context, creatorID, id uuid.UUID, in CreateItineraryInput) (*entities.Itinerary, error) {
	it, err := s.getOwned(ctx, creatorID, id)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, domainerrors.NewValidationError("itinerary title is required")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, domainerrors.NewValidationError("end date cannot be before start date")
	}

	it.Title = in.Title
	it.Description = in.Description
	it.StartDate = in.StartDate
	it.EndDate = in.EndDate
	if in.CoverImageURL != nil {
		it.CoverImageURL = in.CoverImageURL
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, fmt.Errorf("update itinerary: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes an itinerary and its days
func (s *Service) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, creatorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete itinerary: %w", err)
	}
	s.log.Info("Itinerary deleted", "itinerary_id", id.String())
	return nil
}

// AddDay appends a day to an itinerary; the itinerary budget is refreshed with the write
func (s *Service) AddDay(ctx context.Context, creatorID, itineraryID uuid.UUID, in DayInput) (*entities.ItineraryDay, error) {
	if _, err := s.getOwned(ctx, creatorID, itineraryID); err != nil {
		return nil, err
	}
	if in.DayNumber <= 0 {
		return nil, domainerrors.NewValidationError("day number must be positive")
	}
	if in.Budget.IsNegative() {
		return nil, domainerrors.NewValidationError("day budget cannot be negative")
	}

	now := time.Now()
	day := &entities.ItineraryDay{
		ID:          uuid.New(),
		ItineraryID: itineraryID,
		DayNumber:   in.DayNumber,
		Title:       in.Title,
		Activities:  in.Activities,
		Budget:      in.Budget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateDay(ctx, day); err != nil {
		if err == repositories.ErrDuplicateDay {
			return nil, domainerrors.NewValidationError("day %d already exists in this itinerary", in.DayNumber)
		}
		return nil, fmt.Errorf("create itinerary day: %w", err)
	}
	return day, nil
}

// UpdateDay edits a day; the itinerary budget is refreshed with the write
func (s *Service) UpdateDay(ctx context.Context, creatorID, dayID uuid.UUID, in DayInput) (*entities.ItineraryDay, error) {
	day, err := s.getOwnedDay(ctx, creatorID, dayID)
	if err != nil {
		return nil, err
	}
	if in.Budget.IsNegative() {
		return nil, domainerrors.NewValidationError("day budget cannot be negative")
	}

	day.Title = in.Title
	day.Activities = in.Activities
	day.Budget = in.Budget

	if err := s.repo.UpdateDay(ctx, day); err != nil {
		return nil, fmt.Errorf("update itinerary day: %w", err)
	}
	return day, nil
}

// DeleteDay removes a day; the itinerary budget is refreshed with the write
func (s *Service) DeleteDay(ctx context.Context, creatorID, dayID uuid.UUID) error {
	day, err := s.getOwnedDay(ctx, creatorID, dayID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDay(ctx, day); err != nil {
		return fmt.Errorf("delete itinerary day: %w", err)
	}
	return nil
}

// getOwned loads an itinerary and checks ownership. Non-owners see not-found.
func (s *Service) getOwned(ctx context.Context, creatorID, id uuid.UUID) (*entities.Itinerary, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.CreatorID != creatorID {
		return nil, domainerrors.NewNotFoundError("itinerary", id.String())
	}
	return it, nil
}

func (s *Service) getOwnedDay(ctx context.Context, creatorID, dayID uuid.UUID) (*entities.ItineraryDay, error) {
	day, err := s.repo.GetDay(ctx, dayID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, domainerrors.NewNotFoundError("itinerary day", dayID.String())
		}
		return nil, fmt.Errorf("get itinerary day: %w", err)
	}
	if _, err := s.getOwned(ctx, creatorID, day.ItineraryID); err != nil {
		return nil, err
	}
	return day, nil
}
