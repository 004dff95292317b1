package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/zlnvch/tracereport/exposure"
	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/service"
	"github.com/zlnvch/tracereport/upload"
	"github.com/zlnvch/tracereport/validator"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

type codePhaseRequest struct {
	Code string `json:"code"`
	Fake bool   `json:"fake"`
}

type onsetResponse struct {
	Onset      string `json:"onset"`
	ServerTime string `json:"serverTime"`
}

func (h *Handler) HandleOnset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req codePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	onset, err := h.Service.RequestOnsetDate(r.Context(), req.Code, req.Fake)
	if err != nil {
		h.sendErrorResponse(w, "onset request failed", err)
		return
	}

	h.sendResponse(w, onsetResponse{
		Onset:      onset.Date.Format(time.DateOnly),
		ServerTime: onset.ServerTime.Format(time.RFC3339),
	})
}

type tokensResponse struct {
	Onset              string `json:"onset"`
	AccessToken        string `json:"accessToken"`
	CheckInAccessToken string `json:"checkInAccessToken"`
}

func (h *Handler) HandleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req codePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.Service.RequestTokens(r.Context(), req.Code, req.Fake)
	if err != nil {
		h.sendErrorResponse(w, "token request failed", err)
		return
	}

	h.sendResponse(w, tokensResponse{
		Onset:              tokens.ENToken.Onset.Format(time.DateOnly),
		AccessToken:        tokens.ENToken.Token.AccessToken,
		CheckInAccessToken: tokens.CheckInToken.AccessToken,
	})
}

type consentResponse struct {
	Consent bool `json:"consent"`
}

func (h *Handler) HandleConsent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if err := h.Service.AcquireUserConsent(r.Context()); err != nil {
			log.Printf("Consent acquisition failed: %v", err)
			http.Error(w, "consent acquisition failed", http.StatusBadGateway)
			return
		}
		h.sendResponse(w, consentResponse{Consent: true})

	case http.MethodGet:
		h.sendResponse(w, consentResponse{Consent: h.Service.HasUserConsent()})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req codePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Cache hit if the token phase already ran for this code
	tokens, err := h.Service.RequestTokens(r.Context(), req.Code, req.Fake)
	if err != nil {
		h.sendErrorResponse(w, "token request failed", err)
		return
	}

	if err := h.Service.SubmitExposureKeys(r.Context(), tokens, req.Fake); err != nil {
		h.sendErrorResponse(w, "key submission failed", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type checkInsRequest struct {
	Code       string   `json:"code"`
	Fake       bool     `json:"fake"`
	CheckInIds []string `json:"checkInIds"`
}

func (h *Handler) HandleCheckIns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req checkInsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.Service.RequestTokens(r.Context(), req.Code, req.Fake)
	if err != nil {
		h.sendErrorResponse(w, "token request failed", err)
		return
	}

	var selected []models.CheckIn
	if !req.Fake {
		completed, err := h.Service.CheckIns.GetCompletedCheckIns(r.Context())
		if err != nil {
			log.Printf("Failed to load check-ins: %v", err)
			http.Error(w, "failed to load check-ins", http.StatusInternalServerError)
			return
		}
		selected = filterCheckIns(completed, req.CheckInIds)
	}

	if err := h.Service.SubmitCheckIns(r.Context(), tokens, selected, req.Fake); err != nil {
		h.sendErrorResponse(w, "check-in upload failed", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// filterCheckIns keeps the check-ins the user selected; an empty
// selection means everything.
func filterCheckIns(completed []models.CheckIn, ids []string) []models.CheckIn {
	if len(ids) == 0 {
		return completed
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	selected := make([]models.CheckIn, 0, len(ids))
	for _, c := range completed {
		if wanted[c.Id.String()] {
			selected = append(selected, c)
		}
	}
	return selected
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// sendErrorResponse maps the typed error taxonomy onto HTTP statuses so
// callers can tell a rejected code from a backend failure.
func (h *Handler) sendErrorResponse(w http.ResponseWriter, msg string, err error) {
	log.Printf("%s: %v", msg, err)

	var validationErr *validator.ValidationError
	var statusErr *upload.StatusError
	var tracingErr *exposure.TracingError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, msg, http.StatusUnprocessableEntity)
	case errors.As(err, &tracingErr) && errors.Is(err, exposure.ErrPermission):
		http.Error(w, msg, http.StatusForbidden)
	case errors.As(err, &statusErr):
		http.Error(w, msg, http.StatusBadGateway)
	default:
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
