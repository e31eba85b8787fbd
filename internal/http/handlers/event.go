package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/http/response"
	eventsmod "github.com/yungbote/vowbridge-backend/internal/modules/events"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type EventHandler struct {
	log    *logger.Logger
	events eventsmod.Usecases
}

func NewEventHandler(log *logger.Logger, events eventsmod.Usecases) *EventHandler {
	return &EventHandler{log: log.With("handler", "EventHandler"), events: events}
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   string `json:"eventDate"`
	Venue       string `json:"venue"`
	Address     string `json:"address"`
	MaxGuests   *int   `json:"maxGuests"`
	Status      string `json:"status"`
}

// POST /api/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req createEventRequest
	if !bindJSON(c, &req) {
		return
	}
	date, err := parseTime(req.EventDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_event_date", err)
		return
	}
	ev, err := h.events.CreateEvent(c.Request.Context(), eventsmod.CreateEventInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   date,
		Venue:       req.Venue,
		Address:     req.Address,
		MaxGuests:   req.MaxGuests,
		Status:      req.Status,
	})
	if err != nil {
		respondErr(c, err, "create_event_failed")
		return
	}
	response.RespondCreated(c, ev)
}

// GET /api/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	rows, err := h.events.ListEvents(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err, "list_events_failed")
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ev, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		respondErr(c, err, "load_event_failed")
		return
	}
	response.RespondOK(c, ev)
}

type addGuestRequest struct {
	UserID              *uuid.UUID `json:"userId"`
	Email               string     `json:"email"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	PlusOneAllowed      bool       `json:"plusOneAllowed"`
	DietaryRestrictions string     `json:"dietaryRestrictions"`
}

// POST /api/events/:id/guests
func (h *EventHandler) AddGuest(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req addGuestRequest
	if !bindJSON(c, &req) {
		return
	}
	g, err := h.events.AddGuest(c.Request.Context(), eventsmod.AddGuestInput{
		OwnerID:             userID,
		EventID:             eventID,
		GuestUserID:         req.UserID,
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		PlusOneAllowed:      req.PlusOneAllowed,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		respondErr(c, err, "add_guest_failed")
		return
	}
	response.RespondCreated(c, g)
}

// GET /api/events/:id/guests
func (h *EventHandler) ListGuests(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.events.ListGuests(c.Request.Context(), userID, eventID)
	if err != nil {
		respondErr(c, err, "list_guests_failed")
		return
	}
	response.RespondOK(c, rows)
}

type rsvpRequest struct {
	RSVPStatus          string  `json:"rsvpStatus"`
	PlusOneRSVP         *string `json:"plusOneRsvp"`
	DietaryRestrictions *string `json:"dietaryRestrictions"`
}

// PATCH /api/guests/:id/rsvp
func (h *EventHandler) UpdateRSVP(c *gin.Context) {
	guestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req rsvpRequest
	if !bindJSON(c, &req) {
		return
	}
	g, err := h.events.UpdateRSVP(c.Request.Context(), eventsmod.UpdateRSVPInput{
		GuestID:             guestID,
		Status:              req.RSVPStatus,
		PlusOneRSVP:         req.PlusOneRSVP,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		respondErr(c, err, "update_rsvp_failed")
		return
	}
	response.RespondOK(c, g)
}

// POST /api/events/:id/guests/invitations
func (h *EventHandler) SendInvitations(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	report, err := h.events.SendInvitations(c.Request.Context(), userID, eventID)
	if err != nil {
		respondErr(c, err, "send_invitations_failed")
		return
	}
	response.RespondOK(c, report)
}

type timelineRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartTime    string `json:"startTime"`
	Duration     *int   `json:"duration"`
	Category     string `json:"category"`
	IsCompleted  bool   `json:"isCompleted"`
	DisplayOrder int    `json:"displayOrder"`
}

// POST /api/events/:id/timeline
func (h *EventHandler) AddTimelineItem(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req timelineRequest
	if !bindJSON(c, &req) {
		return
	}
	start, err := parseTime(req.StartTime)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_start_time", err)
		return
	}
	item, err := h.events.AddTimelineItem(c.Request.Context(), eventsmod.AddTimelineItemInput{
		OwnerID:      userID,
		EventID:      eventID,
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    start,
		Duration:     req.Duration,
		Category:     req.Category,
		IsCompleted:  req.IsCompleted,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respondErr(c, err, "add_timeline_item_failed")
		return
	}
	response.RespondCreated(c, item)
}

// GET /api/events/:id/timeline
func (h *EventHandler) ListTimeline(c *gin.Context) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.events.ListTimeline(c.Request.Context(), eventID)
	if err != nil {
		respondErr(c, err, "list_timeline_failed")
		return
	}
	response.RespondOK(c, rows)
}
