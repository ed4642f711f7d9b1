package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/creator-platform/creator_service/internal/domain/entities"
)

// ErrDuplicateDay is returned when a day number already exists within an itinerary
var ErrDuplicateDay = errors.New("itinerary day number already exists")

// ItineraryRepository handles itinerary and itinerary-day persistence. Every day write
// recomputes the parent itinerary's total budget inside the same transaction.
type ItineraryRepository struct {
	db *sqlx.DB
}

// NewItineraryRepository creates a new itinerary repository
func NewItineraryRepository(db *sqlx.DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// Create inserts a new itinerary
func (r *ItineraryRepository) Create(ctx context.Context, it *entities.Itinerary) error {
	query := `
		INSERT INTO itineraries (id, creator_id, title, description, start_date, end_date,
			total_budget, cover_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		it.ID, it.CreatorID, it.Title, it.Description, it.StartDate, it.EndDate,
		it.TotalBudget, it.CoverImageURL, it.CreatedAt, it.UpdatedAt)
	return err
}

// GetByID returns an itinerary with its days loaded, ordered by day number
func (r *ItineraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Itinerary, error) {
	query := `
		SELECT id, creator_id, title, description, start_date, end_date,
			total_budget, cover_image_url, created_at, updated_at
		FROM itineraries
		WHERE id = $1`
	it := &entities.Itinerary{}
	err := r.db.GetContext(ctx, it, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	daysQuery := `
		SELECT id, itinerary_id, day_number, title, activities, budget, created_at, updated_at
		FROM itinerary_days
		WHERE itinerary_id = $1
		ORDER BY day_number ASC`
	if err := r.db.SelectContext(ctx, &it.Days, daysQuery, id); err != nil {
		return nil, err
	}
	return it, nil
}

// ListByCreator returns a creator's itineraries without days, newest first
func (r *ItineraryRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*entities.Itinerary, error) {
	query := `
		SELECT id, creator_id, title, description, start_date, end_date,
			total_budget, cover_image_url, created_at, updated_at
		FROM itineraries
		WHERE creator_id = $1
		ORDER BY created_at DESC`

	var itineraries []*entities.Itinerary
	if err := r.db.SelectContext(ctx, &itineraries, query, creatorID); err != nil {
		return nil, err
	}
	return itineraries, nil
}

// Update persists editable itinerary fields
func (r *ItineraryRepository) Update(ctx context.Context, it *entities.Itinerary) error {
	query := `
		UPDATE itineraries
		SET title = $1, description = $2, start_date = $3, end_date = $4,
			cover_image_url = $5, updated_at = $6
		WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		it.Title, it.Description, it.StartDate, it.EndDate, it.CoverImageURL, time.Now(), it.ID)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

// Delete removes an itinerary; days cascade
func (r *ItineraryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM itineraries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

// GetDay returns a single itinerary day
func (r *ItineraryRepository) GetDay(ctx context.Context, dayID uuid.UUID) (*entities.ItineraryDay, error) {
	query := `
		SELECT id, itinerary_id, day_number, title, activities, budget, created_at, updated_at
		FROM itinerary_days
		WHERE id = $1`
	day := &entities.ItineraryDay{}
	err := r.db.GetContext(ctx, day, query, dayID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return day, nil
}

// CreateDay inserts a day and refreshes the itinerary budget
func (r *ItineraryRepository) CreateDay(ctx context.Context, day *entities.ItineraryDay) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO itinerary_days (id, itinerary_id, day_number, title, activities, budget, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := tx.ExecContext(ctx, query,
			day.ID, day.ItineraryID, day.DayNumber, day.Title, day.Activities, day.Budget,
			day.CreatedAt, day.UpdatedAt)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateDay
		}
		if err != nil {
			return err
		}
		return r.refreshBudget(ctx, tx, day.ItineraryID)
	})
}

// UpdateDay persists day fields and refreshes the itinerary budget
func (r *ItineraryRepository) UpdateDay(ctx context.Context, day *entities.ItineraryDay) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE itinerary_days
			SET title = $1, activities = $2, budget = $3, updated_at = $4
			WHERE id = $5`
		res, err := tx.ExecContext(ctx, query,
			day.Title, day.Activities, day.Budget, time.Now(), day.ID)
		if err != nil {
			return err
		}
		if err := r.requireRow(res); err != nil {
			return err
		}
		return r.refreshBudget(ctx, tx, day.ItineraryID)
	})
}

// DeleteDay removes a day and refreshes the itinerary budget
func (r *ItineraryRepository) DeleteDay(ctx context.Context, day *entities.ItineraryDay) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM itinerary_days WHERE id = $1`, day.ID)
		if err != nil {
			return err
		}
		if err := r.requireRow(res); err != nil {
			return err
		}
		return r.refreshBudget(ctx, tx, day.ItineraryID)
	})
}

// refreshBudget sets the itinerary total budget to the sum of its days' budgets
func (r *ItineraryRepository) refreshBudget(ctx context.Context, tx *sqlx.Tx, itineraryID uuid.UUID) error {
	query := `
		UPDATE itineraries
		SET total_budget = COALESCE((SELECT SUM(budget) FROM itinerary_days WHERE itinerary_id = $1), 0),
			updated_at = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, itineraryID, time.Now())
	return err
}

func (r *ItineraryRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ItineraryRepository) requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
