package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coringas/sistema-coringas/internal/middleware"
	"github.com/coringas/sistema-coringas/internal/model"
)

// ProfileServiceInterface é a interface de serviço exigida pelo handler de
// perfil.
type ProfileServiceInterface interface {
	// GetByUserID retorna o registro de filiação do usuário, ou nil.
	GetByUserID(ctx context.Context, userID string) (*model.Member, error)
	// UpdateProfile atualiza os campos editáveis do perfil.
	UpdateProfile(ctx context.Context, userID, nickname, bio, avatarURL string) (*model.Member, error)
}

// MemberHandler é o handler HTTP do perfil de membro.
type MemberHandler struct {
	service ProfileServiceInterface
}

// NewMemberHandler cria um MemberHandler.
func NewMemberHandler(service ProfileServiceInterface) *MemberHandler {
	return &MemberHandler{
		service: service,
	}
}

// updateProfileRequest é o corpo da requisição de atualização de perfil.
type updateProfileRequest struct {
	Nickname  string `json:"nickname"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// GetProfile retorna o perfil do usuário logado.
// GET /api/profile
func (h *MemberHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	member, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if member == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMemberNotFoundError(userID))
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

// UpdateProfile atualiza o perfil do usuário logado.
// PUT /api/profile
func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("corpo JSON inválido"))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userID, req.Nickname, req.Bio, req.AvatarURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMemberResponse(updated))
}
