package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/coringas/sistema-coringas/internal/middleware"
	"github.com/coringas/sistema-coringas/internal/model"
	"github.com/coringas/sistema-coringas/internal/repository"
)

// defaultEventListLimit limita a listagem de eventos da agenda.
const defaultEventListLimit = 50

// EventHandler é o handler HTTP da agenda de eventos.
type EventHandler struct {
	events repository.EventRepository
}

// NewEventHandler cria um EventHandler.
func NewEventHandler(events repository.EventRepository) *EventHandler {
	return &EventHandler{
		events: events,
	}
}

// eventResponse é a representação de um evento na API.
type eventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// createEventRequest é o corpo da requisição de criação de evento.
type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

// ListEvents retorna os próximos eventos da agenda.
// GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListUpcoming(r.Context(), defaultEventListLimit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]eventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": resp})
}

// CreateEvent cria um evento na agenda. Rota restrita a administradores.
// POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("corpo JSON inválido"))
		return
	}
	if req.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("title é obrigatório"))
		return
	}
	if req.StartsAt.IsZero() {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("starts_at é obrigatório"))
		return
	}
	if !req.EndsAt.IsZero() && req.EndsAt.Before(req.StartsAt) {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("ends_at anterior a starts_at"))
		return
	}

	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   time.Now(),
	}

	if err := h.events.Create(r.Context(), event); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

// toEventResponse converte model.Event na resposta da API.
func toEventResponse(e *model.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
	}
}

// ChargeHandler é o handler HTTP das cobranças de membros.
type ChargeHandler struct {
	charges repository.ChargeRepository
	members ProfileServiceInterface
}

// NewChargeHandler cria um ChargeHandler.
func NewChargeHandler(charges repository.ChargeRepository, members ProfileServiceInterface) *ChargeHandler {
	return &ChargeHandler{
		charges: charges,
		members: members,
	}
}

// chargeResponse é a representação de uma cobrança na API.
type chargeResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"due_date"`
}

// ListPendingCharges retorna as cobranças em aberto do membro logado.
// GET /api/charges/pending
func (h *ChargeHandler) ListPendingCharges(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	member, err := h.members.GetByUserID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if member == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMemberNotFoundError(userID))
		return
	}

	charges, err := h.charges.ListPendingByMember(r.Context(), member.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]chargeResponse, len(charges))
	for i, c := range charges {
		resp[i] = chargeResponse{
			ID:          c.ID,
			Description: c.Description,
			AmountCents: c.AmountCents,
			Status:      string(c.Status),
			DueDate:     c.DueDate,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"charges": resp})
}
