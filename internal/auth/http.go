// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pims-archive/pims/internal/platform/constants"
	requestutil "github.com/pims-archive/pims/internal/platform/request"
	"github.com/pims-archive/pims/internal/platform/respond"
	"github.com/pims-archive/pims/internal/platform/validate"
)

// Handler implements the token endpoint.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns the auth endpoints, mounted at /api/v1/auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/token", handler.token)
	return router
}

// tokenRequest is the login body. Form posts use the same field names.
type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
POST /api/v1/auth/token.

Request (JSON or form):
  - username, password

Response:
  - 200: {access_token, token_type, expires_in}
  - 400: Missing fields
  - 401: Bad credentials
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxFormBytes)

	// ── 1. Payload Extraction ─────────────────────────────────────────────
	var input tokenRequest
	if requestutil.MediaType(request) == "application/json" {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	} else {
		if err := request.ParseForm(); err != nil {
			respond.Error(writer, request, validate.ErrInvalidForm)
			return
		}
		input.Username = request.PostForm.Get("username")
		input.Password = request.PostForm.Get("password")
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.Required("username", strings.TrimSpace(input.Username))
	validator.Required("password", input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────
	token, err := handler.authService.IssueToken(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, token)
}
