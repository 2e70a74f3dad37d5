package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coringas/sistema-coringas/internal/model"
	"github.com/coringas/sistema-coringas/internal/repository"
)

type mockEventRepo struct {
	listUpcomingFn func(ctx context.Context, limit int) ([]*model.Event, error)
	createFn       func(ctx context.Context, event *model.Event) error
}

var _ repository.EventRepository = (*mockEventRepo)(nil)

func (m *mockEventRepo) ListUpcoming(ctx context.Context, limit int) ([]*model.Event, error) {
	if m.listUpcomingFn != nil {
		return m.listUpcomingFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *model.Event) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	return nil
}

type mockChargeRepo struct {
	listPendingByMemberFn func(ctx context.Context, memberID string) ([]*model.Charge, error)
}

var _ repository.ChargeRepository = (*mockChargeRepo)(nil)

func (m *mockChargeRepo) ListPendingByMember(ctx context.Context, memberID string) ([]*model.Charge, error) {
	if m.listPendingByMemberFn != nil {
		return m.listPendingByMemberFn(ctx, memberID)
	}
	return nil, nil
}

func TestEventHandler_ListEvents(t *testing.T) {
	starts := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	repo := &mockEventRepo{
		listUpcomingFn: func(ctx context.Context, limit int) ([]*model.Event, error) {
			if limit != defaultEventListLimit {
				t.Errorf("limit = %d, want %d", limit, defaultEventListLimit)
			}
			return []*model.Event{
				{ID: "e1", Title: "Ensaio geral", StartsAt: starts, EndsAt: starts.Add(2 * time.Hour)},
			}, nil
		},
	}
	h := NewEventHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()

	h.ListEvents(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Events []eventResponse `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(body.Events))
	}
	if body.Events[0].Title != "Ensaio geral" {
		t.Errorf("title = %q, want %q", body.Events[0].Title, "Ensaio geral")
	}
}

func TestEventHandler_CreateEvent_Success(t *testing.T) {
	var created *model.Event
	repo := &mockEventRepo{
		createFn: func(ctx context.Context, event *model.Event) error {
			created = event
			return nil
		},
	}
	h := NewEventHandler(repo)

	payload := `{"title":"Churrasco da equipe","location":"Sede","starts_at":"2026-10-03T12:00:00Z","ends_at":"2026-10-03T18:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(payload))
	w := httptest.NewRecorder()

	h.CreateEvent(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if created == nil {
		t.Fatal("expected event to be created")
	}
	if created.ID == "" {
		t.Error("expected generated event ID")
	}
	if created.Title != "Churrasco da equipe" {
		t.Errorf("title = %q, want %q", created.Title, "Churrasco da equipe")
	}
}

func TestEventHandler_CreateEvent_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "JSON inválido", body: `{oops`},
		{name: "título ausente", body: `{"starts_at":"2026-10-03T12:00:00Z"}`},
		{name: "starts_at ausente", body: `{"title":"Ensaio"}`},
		{name: "ends_at anterior a starts_at", body: `{"title":"Ensaio","starts_at":"2026-10-03T12:00:00Z","ends_at":"2026-10-03T10:00:00Z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := NewEventHandler(&mockEventRepo{
				createFn: func(ctx context.Context, event *model.Event) error {
					called = true
					return nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.CreateEvent(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if called {
				t.Error("Create should not be called for invalid request")
			}
		})
	}
}

func TestChargeHandler_ListPendingCharges(t *testing.T) {
	members := &mockProfileService{
		getByUserIDFn: func(ctx context.Context, userID string) (*model.Member, error) {
			return &model.Member{ID: "m1", UserID: userID, Classification: model.ClassificationMember}, nil
		},
	}
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	charges := &mockChargeRepo{
		listPendingByMemberFn: func(ctx context.Context, memberID string) ([]*model.Charge, error) {
			if memberID != "m1" {
				t.Errorf("memberID = %q, want %q", memberID, "m1")
			}
			return []*model.Charge{
				{ID: "c1", MemberID: memberID, Description: "Mensalidade setembro", AmountCents: 5000, Status: model.ChargeStatusPending, DueDate: due},
			}, nil
		},
	}
	h := NewChargeHandler(charges, members)

	req := requestWithUser(httptest.NewRequest(http.MethodGet, "/api/charges/pending", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListPendingCharges(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Charges []chargeResponse `json:"charges"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Charges) != 1 {
		t.Fatalf("len(charges) = %d, want 1", len(body.Charges))
	}
	if body.Charges[0].AmountCents != 5000 {
		t.Errorf("amount_cents = %d, want 5000", body.Charges[0].AmountCents)
	}
}

func TestChargeHandler_ListPendingCharges_WithoutUser_ReturnsUnauthorized(t *testing.T) {
	h := NewChargeHandler(&mockChargeRepo{}, &mockProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/api/charges/pending", nil)
	w := httptest.NewRecorder()

	h.ListPendingCharges(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestChargeHandler_ListPendingCharges_MissingMember_ReturnsNotFound(t *testing.T) {
	members := &mockProfileService{
		getByUserIDFn: func(ctx context.Context, userID string) (*model.Member, error) {
			return nil, nil
		},
	}
	h := NewChargeHandler(&mockChargeRepo{}, members)

	req := requestWithUser(httptest.NewRequest(http.MethodGet, "/api/charges/pending", nil), "user-1")
	w := httptest.NewRecorder()

	h.ListPendingCharges(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
