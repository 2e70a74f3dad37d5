package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coringas/sistema-coringas/internal/model"
	"github.com/coringas/sistema-coringas/internal/security"
)

const (
	// avatarFetchTimeout limita a busca da imagem no provedor externo.
	avatarFetchTimeout = 10 * time.Second
	// avatarMaxBytes limita o tamanho da imagem proxiada (2 MiB).
	avatarMaxBytes = 2 * 1024 * 1024
)

// AvatarHandler é o proxy de imagens de avatar.
// Busca a imagem hospedada no provedor de identidade por um cliente HTTP com
// prevenção de SSRF, evitando que URLs controladas pelo usuário alcancem a
// rede interna.
type AvatarHandler struct {
	guard  security.SSRFGuardService
	client *http.Client
}

// NewAvatarHandler cria um AvatarHandler.
func NewAvatarHandler(guard security.SSRFGuardService) *AvatarHandler {
	return &AvatarHandler{
		guard:  guard,
		client: guard.NewSafeClient(avatarFetchTimeout, avatarMaxBytes),
	}
}

// GetAvatar proxia a imagem de avatar indicada pelo parâmetro url.
// GET /api/avatar?url=https://...
func (h *AvatarHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("url é obrigatório"))
		return
	}

	// validação estática antes da requisição; o Dialer do cliente cobre o IP
	// resolvido
	if err := h.guard.ValidateURL(rawURL); err != nil {
		slog.Warn("avatar URL blocked",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidAvatarURLError())
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidAvatarURLError())
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		slog.Warn("avatar fetch failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusBadGateway, &model.APIError{
			Code:     "AVATAR_FETCH_FAILED",
			Message:  "Não foi possível carregar a imagem do avatar.",
			Category: "system",
			Action:   "Tente novamente mais tarde.",
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeAPIErrorResponse(w, http.StatusBadGateway, &model.APIError{
			Code:     "AVATAR_FETCH_FAILED",
			Message:  "O provedor da imagem respondeu com erro.",
			Category: "system",
			Action:   "Tente novamente mais tarde.",
		})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidAvatarURLError())
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.Copy(w, io.LimitReader(resp.Body, avatarMaxBytes))
}
