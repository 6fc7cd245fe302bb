package http

import (
	"net/http"

	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/logger"
)

const sessionCookie = "session"

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

// login
//
//	@Summary		Вход по паролю приложения
//	@Description	Токен возвращается в теле и в cookie session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Пароль"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if !a.authUsecase.Enabled() {
		WriteSuccess(w, http.StatusOK, LoginResponse{AuthOff: true})
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := a.authUsecase.Login(req.Password)
	if err != nil {
		a.logger.Warnf("failed login from %s", r.RemoteAddr)
		WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	WriteSuccess(w, http.StatusOK, LoginResponse{Token: session.Token, ExpiresAt: &session.ExpiresAt})
}
