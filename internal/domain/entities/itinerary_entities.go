package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Itinerary is a creator-authored trip plan. TotalBudget is always the sum of the
// budgets of its days and is recomputed whenever a day changes.
type Itinerary struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CreatorID     uuid.UUID       `json:"creator_id" db:"creator_id"`
	Title         string          `json:"title" db:"title"`
	Description   string          `json:"description" db:"description"`
	StartDate     *time.Time      `json:"start_date,omitempty" db:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty" db:"end_date"`
	TotalBudget   decimal.Decimal `json:"total_budget" db:"total_budget"`
	CoverImageURL *string         `json:"cover_image_url,omitempty" db:"cover_image_url"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Days []*ItineraryDay `json:"days,omitempty" db:"-"`
}

// ItineraryDay is one day within an itinerary. DayNumber is unique per itinerary.
type ItineraryDay struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ItineraryID uuid.UUID       `json:"itinerary_id" db:"itinerary_id"`
	DayNumber   int             `json:"day_number" db:"day_number"`
	Title       string          `json:"title" db:"title"`
	Activities  string          `json:"activities" db:"activities"`
	Budget      decimal.Decimal `json:"budget" db:"budget"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
