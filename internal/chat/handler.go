// Package chat exposes the chat-provider token endpoint. Everything else
// about messaging and calls happens between the client SDK and the provider.
package chat

import (
	"net/http"

	"github.com/lingo-labs/lingo/internal/auth"
	"github.com/lingo-labs/lingo/internal/httputil"
	"github.com/lingo-labs/lingo/internal/logging"
	"github.com/lingo-labs/lingo/internal/stream"
)

// Handler contains HTTP handlers for chat endpoints
type Handler struct {
	provider stream.Provider
}

func NewHandler(provider stream.Provider) *Handler {
	return &Handler{provider: provider}
}

// TokenResponse carries a chat-provider token
type TokenResponse struct {
	Token string `json:"token"`
}

// Token mints a chat-provider token for the authenticated user
// @Summary      Chat token
// @Description  Mint a provider token the client SDK uses to join chat and calls. Requires authentication.
// @Tags         chat
// @Produce      json
// @Success      200 {object} TokenResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      500 {object} httputil.ErrorResponse "Token generation failed"
// @Router       /api/chat/token [get]
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	token, err := h.provider.CreateToken(currentUser.ID.String())
	if err != nil {
		logger.Error("failed to generate chat token", "user_id", currentUser.ID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, TokenResponse{Token: token}, http.StatusOK)
}
