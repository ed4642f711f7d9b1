package itinerary

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creator-platform/creator_service/internal/domain/entities"
	"github.com/creator-platform/creator_service/internal/infrastructure/repositories"
	domainerrors "github.com/creator-platform/creator_service/pkg/errors"
	"github.com/creator-platform/creator_service/pkg/logger"
)

// fakeRepo mirrors the postgres repository, including budget recomputation on day writes
type fakeRepo struct {
	mu          sync.Mutex
	itineraries map[uuid.UUID]*entities.Itinerary
	days        map[uuid.UUID]*entities.ItineraryDay
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		itineraries: make(map[uuid.UUID]*entities.Itinerary),
		days:        make(map[uuid.UUID]*entities.ItineraryDay),
	}
}

func (f *fakeRepo) Create(_ context.Context, it *entities.Itinerary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *it
	f.itineraries[it.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Itinerary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.itineraries[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *it
	cp.Days = nil
	for _, d := range f.days {
		if d.ItineraryID == id {
			dcp := *d
			cp.Days = append(cp.Days, &dcp)
		}
	}
	return &cp, nil
}

func (f *fakeRepo) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]*entities.Itinerary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Itinerary
	for _, it := range f.itineraries {
		if it.CreatorID == creatorID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, it *entities.Itinerary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.itineraries[it.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	budget := stored.TotalBudget
	cp := *it
	cp.TotalBudget = budget
	f.itineraries[it.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.itineraries[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.itineraries, id)
	for dayID, d := range f.days {
		if d.ItineraryID == id {
			delete(f.days, dayID)
		}
	}
	return nil
}

func (f *fakeRepo) GetDay(_ context.Context, dayID uuid.UUID) (*entities.ItineraryDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.days[dayID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) CreateDay(_ context.Context, day *entities.ItineraryDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.days {
		if d.ItineraryID == day.ItineraryID && d.DayNumber == day.DayNumber {
			return repositories.ErrDuplicateDay
		}
	}
	cp := *day
	f.days[day.ID] = &cp
	f.refreshBudget(day.ItineraryID)
	return nil
}

func (f *fakeRepo) UpdateDay(_ context.Context, day *entities.ItineraryDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.days[day.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *day
	f.days[day.ID] = &cp
	f.refreshBudget(day.ItineraryID)
	return nil
}

func (f *fakeRepo) DeleteDay(_ context.Context, day *entities.ItineraryDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.days[day.ID]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.days, day.ID)
	f.refreshBudget(day.ItineraryID)
	return nil
}

func (f *fakeRepo) refreshBudget(itineraryID uuid.UUID) {
	total := decimal.Zero
	for _, d := range f.days {
		if d.ItineraryID == itineraryID {
			total = total.Add(d.Budget)
		}
	}
	if it, ok := f.itineraries[itineraryID]; ok {
		it.TotalBudget = total
	}
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewService(repo, logger.NewNop()), repo
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), CreateItineraryInput{})
	assert.True(t, domainerrors.IsValidation(err))
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -3)

	_, err := svc.Create(context.Background(), uuid.New(), CreateItineraryInput{
		Title: "Kyoto", StartDate: &start, EndDate: &end,
	})
	assert.True(t, domainerrors.IsValidation(err))
}

func TestBudgetAggregationAcrossDayWrites(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creatorID := uuid.New()

	it, err := svc.Create(ctx, creatorID, CreateItineraryInput{Title: "Bali trip"})
	require.NoError(t, err)
	assert.True(t, it.TotalBudget.IsZero())

	day1, err := svc.AddDay(ctx, creatorID, it.ID, DayInput{DayNumber: 1, Title: "Arrival", Budget: decimal.NewFromInt(120)})
	require.NoError(t, err)
	_, err = svc.AddDay(ctx, creatorID, it.ID, DayInput{DayNumber: 2, Title: "Temples", Budget: decimal.NewFromInt(80)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBudget.Equal(decimal.NewFromInt(200)))
	assert.Len(t, got.Days, 2)

	_, err = svc.UpdateDay(ctx, creatorID, day1.ID, DayInput{Title: "Arrival", Budget: decimal.NewFromInt(50)})
	require.NoError(t, err)

	got, err = svc.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBudget.Equal(decimal.NewFromInt(130)))

	require.NoError(t, svc.DeleteDay(ctx, creatorID, day1.ID))

	got, err = svc.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalBudget.Equal(decimal.NewFromInt(80)))
}

func TestAddDayRejectsDuplicateNumber(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creatorID := uuid.New()

	it, err := svc.Create(ctx, creatorID, CreateItineraryInput{Title: "Lisbon"})
	require.NoError(t, err)

	_, err = svc.AddDay(ctx, creatorID, it.ID, DayInput{DayNumber: 1, Budget: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = svc.AddDay(ctx, creatorID, it.ID, DayInput{DayNumber: 1, Budget: decimal.NewFromInt(20)})
	assert.True(t, domainerrors.IsValidation(err))
}

func TestAddDayRejectsNegativeBudget(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	creatorID := uuid.New()

	it, err := svc.Create(ctx, creatorID, CreateItineraryInput{Title: "Oslo"})
	require.NoError(t, err)

	_, err = svc.AddDay(ctx, creatorID, it.ID, DayInput{DayNumber: 1, Budget: decimal.NewFromInt(-5)})
	assert.True(t, domainerrors.IsValidation(err))
}

func TestNonOwnerSeesNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	it, err := svc.Create(ctx, owner, CreateItineraryInput{Title: "Rome"})
	require.NoError(t, err)
	day, err := svc.AddDay(ctx, owner, it.ID, DayInput{DayNumber: 1, Budget: decimal.NewFromInt(30)})
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = svc.Update(ctx, stranger, it.ID, CreateItineraryInput{Title: "Hijacked"})
	assert.True(t, domainerrors.IsNotFound(err))

	err = svc.Delete(ctx, stranger, it.ID)
	assert.True(t, domainerrors.IsNotFound(err))

	_, err = svc.UpdateDay(ctx, stranger, day.ID, DayInput{Budget: decimal.NewFromInt(1)})
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestDeleteRemovesDays(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	creatorID := uuid.New()

	it, err := svc.Create(ctx, creatorID, CreateItineraryInput{Title: "Hanoi"})
	require.NoError(t, err)
	_, err = svc.AddDay(ctx, creatorID, it.ID, DayInput{DayNumber: 1, Budget: decimal.NewFromInt(30)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, creatorID, it.ID))
	assert.Empty(t, repo.days)

	_, err = svc.Get(ctx, it.ID)
	assert.True(t, domainerrors.IsNotFound(err))
}
