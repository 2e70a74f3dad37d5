package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coringas/sistema-coringas/internal/model"
)

// AdminServiceInterface é a interface de serviço exigida pelo handler
// administrativo.
type AdminServiceInterface interface {
	// ListPending retorna os cadastros aguardando aprovação.
	ListPending(ctx context.Context) ([]*model.Member, error)
	// CountPending retorna a quantidade de cadastros aguardando aprovação.
	CountPending(ctx context.Context) (int, error)
	// Approve efetua a transição inactive -> member.
	Approve(ctx context.Context, memberID string) (*model.Member, error)
	// Reject efetua a transição inactive -> rejected.
	Reject(ctx context.Context, memberID string) (*model.Member, error)
}

// AdminHandler é o handler HTTP do fluxo de aprovação de cadastros.
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler cria um AdminHandler.
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// memberResponse é a representação de um registro de filiação na API.
type memberResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Classification string    `json:"classification"`
	Nickname       string    `json:"nickname"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// toMemberResponse converte model.Member na resposta da API.
func toMemberResponse(m *model.Member) memberResponse {
	return memberResponse{
		ID:             m.ID,
		UserID:         m.UserID,
		Classification: string(m.Classification),
		Nickname:       m.Nickname,
		Bio:            m.Bio,
		AvatarURL:      m.AvatarURL,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// approveUserRequest é o corpo da requisição de aprovação.
type approveUserRequest struct {
	MemberID string `json:"memberId"`
}

// rejectUserRequest é o corpo da requisição de rejeição.
// O user_id acompanha o member_id para fins de auditoria no log.
type rejectUserRequest struct {
	UserID   string `json:"user_id"`
	MemberID string `json:"member_id"`
}

// CountPendingUsers retorna a quantidade de cadastros pendentes.
// GET /api/pending-users/count
func (h *AdminHandler) CountPendingUsers(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountPending(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// ListPendingUsers retorna a lista de cadastros pendentes.
// GET /api/pending-users
func (h *AdminHandler) ListPendingUsers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListPending(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	users := make([]memberResponse, len(members))
	for i, m := range members {
		users[i] = toMemberResponse(m)
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ApproveUser aprova um cadastro pendente.
// POST /api/approve-user
func (h *AdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	var req approveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("corpo JSON inválido"))
		return
	}
	if req.MemberID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("memberId é obrigatório"))
		return
	}

	updated, err := h.service.Approve(r.Context(), req.MemberID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(updated))
}

// RejectUser rejeita um cadastro pendente.
// POST /api/reject-user
func (h *AdminHandler) RejectUser(w http.ResponseWriter, r *http.Request) {
	var req rejectUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("corpo JSON inválido"))
		return
	}
	if req.MemberID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("member_id é obrigatório"))
		return
	}

	updated, err := h.service.Reject(r.Context(), req.MemberID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"member":  toMemberResponse(updated),
	})
}
