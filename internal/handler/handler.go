package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/ziptalk-calculator/internal/calculator"
	"github.com/Dan9191/ziptalk-calculator/internal/middleware"
	"github.com/Dan9191/ziptalk-calculator/internal/models"
	"github.com/Dan9191/ziptalk-calculator/internal/service"
	"github.com/Dan9191/ziptalk-calculator/internal/spreadsheet"
)

// MaxUploadBytes limits multipart spreadsheet uploads
const MaxUploadBytes = 10 << 20

// Service is the business logic the handlers call
type Service interface {
	CalculateScore(ctx context.Context, input calculator.ScoreInput) (*models.ScoreResponse, error)
	CalculateAcquisitionTax(ctx context.Context, input calculator.TaxInput) (*calculator.TaxResult, error)
	CalculateHoldingTax(ctx context.Context, input calculator.HoldingTaxInput) (*calculator.HoldingTaxResult, error)
	ConvertArea(ctx context.Context, input calculator.AreaConversionInput) (*calculator.AreaConversionResult, error)
	ListApartments(ctx context.Context) ([]models.ApartmentView, error)
	GetApartment(ctx context.Context, id int64) (*models.ApartmentView, error)
	AnalyzeApartment(ctx context.Context, id int64, userScore int) (*models.CompetitionAnalysis, error)
	DeleteApartment(ctx context.Context, id int64) error
	ProcessCompetitionData(ctx context.Context, rows []json.RawMessage, fileName string, userID *int64) (*models.CompetitionSummary, error)
	ListCompetitionData(ctx context.Context) ([]*models.CompetitionData, error)
	DeleteCompetitionData(ctx context.Context, id int64) error
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
}

type Handler struct {
	svc      Service
	log      *logrus.Logger
	validate *validator.Validate
}

func NewHandler(svc Service, log *logrus.Logger) *Handler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{svc: svc, log: log, validate: validate}
}

// Register mounts all routes on r. auth guards the admin routes and
// loginLimit throttles login attempts.
func (h *Handler) Register(r *mux.Router, auth, loginLimit mux.MiddlewareFunc) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/calculate-score", h.CalculateScore).Methods(http.MethodPost)
	api.HandleFunc("/calculate-acquisition-tax", h.CalculateAcquisitionTax).Methods(http.MethodPost)
	api.HandleFunc("/calculate-holding-tax", h.CalculateHoldingTax).Methods(http.MethodPost)
	api.HandleFunc("/convert-area", h.ConvertArea).Methods(http.MethodPost)
	api.HandleFunc("/apartments", h.ListApartments).Methods(http.MethodGet)
	api.HandleFunc("/apartments/{id:[0-9]+}", h.GetApartment).Methods(http.MethodGet)
	api.HandleFunc("/apartments/{id:[0-9]+}/analysis", h.AnalyzeApartment).Methods(http.MethodGet)
	api.HandleFunc("/competition-data/template", h.Template).Methods(http.MethodGet)
	api.Handle("/admin/login", loginLimit(http.HandlerFunc(h.Login))).Methods(http.MethodPost)

	admin := api.NewRoute().Subrouter()
	admin.Use(auth)
	admin.HandleFunc("/competition-data", h.UploadCompetitionData).Methods(http.MethodPost)
	admin.HandleFunc("/competition-data/all", h.ListCompetitionData).Methods(http.MethodGet)
	admin.HandleFunc("/competition-data/{id:[0-9]+}", h.DeleteCompetitionData).Methods(http.MethodDelete)
	admin.HandleFunc("/apartments/{id:[0-9]+}", h.DeleteApartment).Methods(http.MethodDelete)
}

// writeError maps service errors to HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "resource not found")
	default:
		h.log.WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("Request failed")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode parses and validates a JSON body, writing a 400 on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := middleware.ParseJSONBody(w, r, v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "gt", "max":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// Health reports that the service is up
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CalculateScore handles the subscription score calculator
func (h *Handler) CalculateScore(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.CalculateScore(r.Context(), req.Input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CalculateAcquisitionTax handles the acquisition tax calculator
func (h *Handler) CalculateAcquisitionTax(w http.ResponseWriter, r *http.Request) {
	var req models.AcquisitionTaxRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.CalculateAcquisitionTax(r.Context(), req.Input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CalculateHoldingTax handles the holding tax calculator
func (h *Handler) CalculateHoldingTax(w http.ResponseWriter, r *http.Request) {
	var req models.HoldingTaxRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.CalculateHoldingTax(r.Context(), req.Input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ConvertArea handles the pyeong converter
func (h *Handler) ConvertArea(w http.ResponseWriter, r *http.Request) {
	var req models.AreaRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.ConvertArea(r.Context(), req.Input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ListApartments returns all apartments for the map
func (h *Handler) ListApartments(w http.ResponseWriter, r *http.Request) {
	apartments, err := h.svc.ListApartments(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, apartments)
}

// GetApartment returns one apartment
func (h *Handler) GetApartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	apt, err := h.svc.GetApartment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, apt)
}

// AnalyzeApartment compares the score query parameter with an apartment
func (h *Handler) AnalyzeApartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score query parameter must be an integer")
		return
	}
	analysis, err := h.svc.AnalyzeApartment(r.Context(), id, score)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, analysis)
}

// Template serves the example competition data workbook
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	buf, err := spreadsheet.Template()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(
		`attachment; filename="competition_data_template.xlsx"; filename*=UTF-8''%s`,
		url.PathEscape(spreadsheet.TemplateFileName)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("Failed to send template")
	}
}

// Login issues an admin token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// UploadCompetitionData accepts rows as JSON or an xlsx file in the
// multipart field "file"
func (h *Handler) UploadCompetitionData(w http.ResponseWriter, r *http.Request) {
	var rows []json.RawMessage
	var fileName string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		defer file.Close()

		rows, err = spreadsheet.ParseRows(file)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		fileName = header.Filename
	} else {
		var req models.CompetitionUploadRequest
		if !h.decode(w, r, &req) {
			return
		}
		rows, fileName = req.Data, req.FileName
	}

	var userID *int64
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		userID = &id
	}

	summary, err := h.svc.ProcessCompetitionData(r.Context(), rows, fileName, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, summary)
}

// ListCompetitionData returns all upload entries
func (h *Handler) ListCompetitionData(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListCompetitionData(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}

// DeleteCompetitionData removes an upload entry
func (h *Handler) DeleteCompetitionData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCompetitionData(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// DeleteApartment removes an apartment
func (h *Handler) DeleteApartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteApartment(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
