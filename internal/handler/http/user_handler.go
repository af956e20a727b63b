package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/vura/internal/auth"
	"github.com/vasiliy-maslov/vura/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"nome" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"senha" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"senha" validate:"required"`
}

// UpdateProfileRequest changes name and email; the password is rotated only
// when both senhaAtual and novaSenha are sent.
type UpdateProfileRequest struct {
	Name            string `json:"nome" validate:"required"`
	Email           string `json:"email" validate:"required"`
	CurrentPassword string `json:"senhaAtual,omitempty" validate:"required_with=NewPassword"`
	NewPassword     string `json:"novaSenha,omitempty" validate:"required_with=CurrentPassword"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    user.User `json:"usuario"`
}

type UserHandler struct {
	service      user.Service
	authenticate func(http.Handler) http.Handler
	validate     *validator.Validate
}

func NewUserHandler(service user.Service, authenticate func(http.Handler) http.Handler) *UserHandler {
	return &UserHandler{
		service:      service,
		authenticate: authenticate,
		validate:     newValidator(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Post("/cadastro", h.handleRegister)
	router.Post("/login", h.handleLogin)

	router.Group(func(r chi.Router) {
		r.Use(h.authenticate)
		r.Get("/me", h.handleMe)
		r.Put("/perfil", h.handleUpdateProfile)
	})
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if err := decodeJSON(w, r, &requestPayload); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to decode register body")
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if !h.validateOrRespond(w, r, requestPayload, "Campos obrigatórios") {
		return
	}

	_, err := h.service.Register(r.Context(), user.RegisterInput{
		Name:     requestPayload.Name,
		Email:    requestPayload.Email,
		Password: requestPayload.Password,
	})
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, user.ErrEmailExists):
			clientMessage = "Email já cadastrado"
		case errors.Is(err, user.ErrValidation):
			clientMessage = "Dados inválidos"
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to register user via service")
			clientMessage = "Erro no servidor"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, MessageResponse{Message: "Usuário cadastrado com sucesso"})
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if err := decodeJSON(w, r, &requestPayload); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to decode login body")
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if !h.validateOrRespond(w, r, requestPayload, "Email e senha são obrigatórios") {
		return
	}

	result, err := h.service.Login(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, user.ErrInvalidCredentials):
			clientMessage = "Email ou senha inválidos"
		case errors.Is(err, user.ErrValidation):
			clientMessage = "Email e senha são obrigatórios"
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to login via service")
			clientMessage = "Erro no servidor"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{
		Message: "Login OK",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		var clientMessage string
		if errors.Is(err, user.ErrNotFound) {
			clientMessage = "Usuário não encontrado"
		} else {
			hlog.FromRequest(r).Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to get profile via service")
			clientMessage = "Erro no servidor"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var requestPayload UpdateProfileRequest
	if err := decodeJSON(w, r, &requestPayload); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to decode profile body")
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	message := "Para trocar senha, envie senhaAtual e novaSenha."
	if requestPayload.Name == "" || requestPayload.Email == "" {
		message = "Nome e email são obrigatórios"
	}
	if !h.validateOrRespond(w, r, requestPayload, message) {
		return
	}

	rotated, err := h.service.UpdateProfile(r.Context(), user.UpdateProfileInput{
		UserID:          claims.UserID,
		Name:            requestPayload.Name,
		Email:           requestPayload.Email,
		CurrentPassword: requestPayload.CurrentPassword,
		NewPassword:     requestPayload.NewPassword,
	})
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, user.ErrWrongCurrentPassword):
			clientMessage = "Senha atual incorreta"
		case errors.Is(err, user.ErrEmailExists):
			clientMessage = "Email já está em uso"
		case errors.Is(err, user.ErrNotFound):
			clientMessage = "Usuário não encontrado"
		case errors.Is(err, user.ErrValidation):
			clientMessage = "Dados inválidos"
		default:
			hlog.FromRequest(r).Error().Err(err).Int64("user_id", claims.UserID).Msg("Failed to update profile via service")
			clientMessage = "Erro no servidor"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	if rotated {
		respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Perfil e senha atualizados com sucesso"})
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Perfil atualizado com sucesso"})
}

// validateOrRespond writes a 400 with per-field details when payload fails
// its validate tags, and reports whether the handler may continue.
func (h *UserHandler) validateOrRespond(w http.ResponseWriter, r *http.Request, payload interface{}, message string) bool {
	err := h.validate.Struct(payload)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   message,
			Details: formatValidationErrors(validationErrors),
		})
		return false
	}

	hlog.FromRequest(r).Error().Err(err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Erro no servidor")
	return false
}
