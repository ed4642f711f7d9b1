// Package itinerary exposes the trip itinerary HTTP endpoints.
package itinerary

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/creator-platform/creator_service/internal/api/handlers/common"
	itinerarysvc "github.com/creator-platform/creator_service/internal/domain/services/itinerary"
	"github.com/creator-platform/creator_service/pkg/logger"
)

// Handlers serves the itinerary endpoints
type Handlers struct {
	service   *itinerarysvc.Service
	validator *validator.Validate
	log       *logger.Logger
}

// NewHandlers creates itinerary handlers
func NewHandlers(service *itinerarysvc.Service, log *logger.Logger) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator.New(),
		log:       log,
	}
}

type itineraryRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"max=5000"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	CoverImageURL *string `json:"cover_image_url"`
}

type dayRequest struct {
	DayNumber  int             `json:"day_number"`
	Title      string          `json:"title" validate:"max=200"`
	Activities string          `json:"activities" validate:"max=5000"`
	Budget     decimal.Decimal `json:"budget"`
}

func (r *itineraryRequest) toInput() (itinerarysvc.CreateItineraryInput, error) {
	in := itinerarysvc.CreateItineraryInput{
		Title:         r.Title,
		Description:   r.Description,
		CoverImageURL: r.CoverImageURL,
	}
	for _, pair := range []struct {
		raw  *string
		dest **time.Time
	}{{r.StartDate, &in.StartDate}, {r.EndDate, &in.EndDate}} {
		if pair.raw == nil || *pair.raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", *pair.raw)
		if err != nil {
			return in, err
		}
		*pair.dest = &t
	}
	return in, nil
}

// Create handles POST /api/v1/itineraries
func (h *Handlers) Create(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	var req itineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "Invalid request format")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		common.RespondBadRequest(c, "dates must use YYYY-MM-DD")
		return
	}

	it, err := h.service.Create(c.Request.Context(), creatorID, in)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, it)
}

// Get handles GET /api/v1/itineraries/:itineraryId
func (h *Handlers) Get(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "itineraryId")
	if !ok {
		return
	}

	it, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, it)
}

// List handles GET /api/v1/itineraries
func (h *Handlers) List(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}

	itineraries, err := h.service.List(c.Request.Context(), creatorID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, itineraries)
}

// Update handles PUT /api/v1/itineraries/:itineraryId
func (h *Handlers) Update(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}
	id, ok := common.ParseUUIDParam(c, "itineraryId")
	if !ok {
		return
	}

	var req itineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "Invalid request format")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		common.RespondBadRequest(c, "dates must use YYYY-MM-DD")
		return
	}

	it, err := h.service.Update(c.Request.Context(), creatorID, id, in)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, it)
}

// Delete handles DELETE /api/v1/itineraries/:itineraryId
func (h *Handlers) Delete(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}
	id, ok := common.ParseUUIDParam(c, "itineraryId")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), creatorID, id); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// AddDay handles POST /api/v1/itineraries/:itineraryId/days
func (h *Handlers) AddDay(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}
	itineraryID, ok := common.ParseUUIDParam(c, "itineraryId")
	if !ok {
		return
	}

	var req dayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "Invalid request format")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	day, err := h.service.AddDay(c.Request.Context(), creatorID, itineraryID, itinerarysvc.DayInput{
		DayNumber:  req.DayNumber,
		Title:      req.Title,
		Activities: req.Activities,
		Budget:     req.Budget,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondCreated(c, day)
}

// UpdateDay handles PUT /api/v1/itineraries/days/:dayId
func (h *Handlers) UpdateDay(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}
	dayID, ok := common.ParseUUIDParam(c, "dayId")
	if !ok {
		return
	}

	var req dayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "Invalid request format")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	day, err := h.service.UpdateDay(c.Request.Context(), creatorID, dayID, itinerarysvc.DayInput{
		Title:      req.Title,
		Activities: req.Activities,
		Budget:     req.Budget,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondSuccess(c, day)
}

// DeleteDay handles DELETE /api/v1/itineraries/days/:dayId
func (h *Handlers) DeleteDay(c *gin.Context) {
	creatorID, err := common.GetCreatorID(c)
	if err != nil {
		common.RespondUnauthorized(c, "creator identity required")
		return
	}
	dayID, ok := common.ParseUUIDParam(c, "dayId")
	if !ok {
		return
	}

	if err := h.service.DeleteDay(c.Request.Context(), creatorID, dayID); err != nil {
		common.RespondServiceError(c, err)
		return
	}
	common.RespondNoContent(c)
}
