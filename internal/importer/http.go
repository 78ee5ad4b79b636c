// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package importer

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/constants"
	"github.com/pims-archive/pims/internal/platform/middleware"
	requestutil "github.com/pims-archive/pims/internal/platform/request"
	"github.com/pims-archive/pims/internal/platform/respond"
	"github.com/pims-archive/pims/internal/platform/sec"
)

// FormFile is the multipart field carrying the CSV.
const FormFile = "file"

// multipartMemory is how much of an upload is held in memory before spilling to disk.
const multipartMemory = 8 << 20

// Handler exposes CSV imports to administrators.
type Handler struct {
	service *Service
}

// NewHandler constructs a new import [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the import endpoint, mounted at /api/v1/admin/import.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))
	router.Post("/", handler.importCSV)
	return router
}

/*
POST /api/v1/admin/import.

Request:
  - multipart/form-data with the CSV in "file", or
  - text/csv body

Response:
  - 200: Report
  - 400: Unreadable CSV or missing file
  - 413: File too large
*/
func (handler *Handler) importCSV(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxImportBytes)

	var source io.Reader = request.Body

	if requestutil.MediaType(request) != "text/csv" {
		if err := request.ParseMultipartForm(multipartMemory); err != nil {
			respond.Error(writer, request, uploadError(err))
			return
		}
		file, _, err := request.FormFile(FormFile)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Attach the CSV file in the \"file\" field"))
			return
		}
		defer file.Close()
		source = file
	}

	report, err := handler.service.Import(request.Context(), source)
	if err != nil {
		respond.Error(writer, request, uploadError(err))
		return
	}

	respond.OK(writer, report)
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &apperr.AppError{
			Code:       apperr.CodeValidation,
			Message:    "The CSV file is too large",
			HTTPStatus: http.StatusRequestEntityTooLarge,
		}
	}
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.ValidationError("Invalid upload").WithCause(err)
}
