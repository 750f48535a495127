package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"benefits-assistant/internal/common/logger"
	"benefits-assistant/internal/common/validation"
	benefitschat "benefits-assistant/internal/workers/ai-conversation/benefits-chat"
	generatechart "benefits-assistant/internal/workers/ai-conversation/generate-chart"
	notepadassist "benefits-assistant/internal/workers/ai-conversation/notepad-assist"
	summarizesearch "benefits-assistant/internal/workers/ai-conversation/summarize-search"
	saveonboarding "benefits-assistant/internal/workers/infrastructure/save-onboarding"

	"github.com/go-chi/chi/v5"
)

const (
	msgMessageRequired = "User message is required."
	msgInvalidBody     = "Invalid request body."
	msgChatFailed      = "Failed to process chat request."

	msgSearchFieldsRequired = "Employee Locations and Quarter are required fields."
	msgSearchFailed         = "Failed to process search and summarization"
	msgNoteFieldsRequired   = "Missing userId or note content."
	msgNotepadFailed        = "Failed to generate AI suggestions."
	msgUserRequired         = "User ID is required"
	msgStatusFailed         = "Failed to check onboarding status"
	msgSaveFailed           = "Failed to save onboarding data"
)

// requiredFieldMessages is the 400 message a missing or empty field earns,
// per activity. Other violations get msgInvalidBody.
var requiredFieldMessages = map[string][]fieldMessage{
	benefitschat.TaskType:  {{"message", msgMessageRequired}},
	generatechart.TaskType: {{"message", msgMessageRequired}},
	summarizesearch.TaskType: {
		{"employeeLocations", msgSearchFieldsRequired},
		{"quarter", msgSearchFieldsRequired},
	},
	notepadassist.TaskType: {
		{"userId", msgNoteFieldsRequired},
		{"content", msgNoteFieldsRequired},
	},
	saveonboarding.TaskType: {{"userId", msgUserRequired}},
}

type fieldMessage struct {
	field   string
	message string
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type chartResponse struct {
	Reply     string                 `json:"reply"`
	GraphData map[string]interface{} `json:"graphData"`
}

type handlers struct {
	cfg *Config
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for _, c := range h.cfg.Readiness {
		if err := c.Check(ctx); err != nil {
			failed[c.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		logger.FromContext(r.Context(), h.cfg.Logger).Warn("readiness check failed", map[string]interface{}{
			"failed": failed,
		})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context(), h.cfg.Logger)

	body, ok := h.readValidated(w, r, benefitschat.TaskType, nil)
	if !ok {
		return
	}

	var input benefitschat.Input
	if err := json.Unmarshal(body, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	out, err := h.cfg.Chat.Execute(r.Context(), &input)
	if err != nil {
		h.cfg.Observability.RecordChatProcessed(r.Context(), "none", "error")
		h.cfg.Observability.RecordChatDuration(r.Context(), time.Since(start), "error")
		if errors.Is(err, benefitschat.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMessageRequired})
			return
		}
		log.Error("chat request failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgChatFailed})
		return
	}

	h.cfg.Observability.RecordChatProcessed(r.Context(), string(out.Path), "success")
	h.cfg.Observability.RecordChatDuration(r.Context(), time.Since(start), "success")
	writeJSON(w, http.StatusOK, out.Response)
}

func (h *handlers) chart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.cfg.Logger)
	kind := chi.URLParam(r, "kind")

	body, ok := h.readValidated(w, r, generatechart.TaskType, map[string]interface{}{"kind": kind})
	if !ok {
		return
	}

	var input generatechart.Input
	if err := json.Unmarshal(body, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	input.Kind = kind

	out, err := h.cfg.Charts.Execute(r.Context(), &input)
	if err != nil {
		if errors.Is(err, generatechart.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMessageRequired})
			return
		}
		noun := generatechart.KindBar.Noun()
		if k, ok := generatechart.ParseKind(kind); ok {
			noun = k.Noun()
		}
		log.Error("chart request failed", map[string]interface{}{"kind": kind, "error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("Failed to generate %s", noun)})
		return
	}

	writeJSON(w, http.StatusOK, chartResponse{Reply: out.Reply, GraphData: out.Chart})
}

func (h *handlers) summarizeSearch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.cfg.Logger)

	body, ok := h.readValidated(w, r, summarizesearch.TaskType, nil)
	if !ok {
		return
	}

	var input summarizesearch.Input
	if err := json.Unmarshal(body, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	if input.UserID == "" {
		input.UserID = r.Header.Get("User-Id")
	}

	out, err := h.cfg.Research.Execute(r.Context(), &input)
	if err != nil {
		if errors.Is(err, summarizesearch.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgSearchFieldsRequired})
			return
		}
		log.Error("search summarization failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgSearchFailed})
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) notepad(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.cfg.Logger)

	body, ok := h.readValidated(w, r, notepadassist.TaskType, nil)
	if !ok {
		return
	}

	var input notepadassist.Input
	if err := json.Unmarshal(body, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	out, err := h.cfg.Notepad.Execute(r.Context(), &input)
	if err != nil {
		if errors.Is(err, notepadassist.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoteFieldsRequired})
			return
		}
		log.Error("notepad suggestions failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgNotepadFailed})
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) onboardingStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.cfg.Onboarding.Status(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		if errors.Is(err, saveonboarding.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgUserRequired})
			return
		}
		logger.FromContext(r.Context(), h.cfg.Logger).Error("onboarding status failed", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgStatusFailed})
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) saveOnboarding(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readValidated(w, r, saveonboarding.TaskType, nil)
	if !ok {
		return
	}

	var input saveonboarding.Input
	if err := json.Unmarshal(body, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	out, err := h.cfg.Onboarding.Execute(r.Context(), &input)
	if err != nil {
		if errors.Is(err, saveonboarding.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgUserRequired})
			return
		}
		logger.FromContext(r.Context(), h.cfg.Logger).Error("saving onboarding data failed", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgSaveFailed})
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// readValidated reads the body and checks it, merged with extra, against the
// activity's input schema. It writes the 400 response itself and reports
// false when the request must stop.
func (h *handlers) readValidated(w http.ResponseWriter, r *http.Request, taskType string, extra map[string]interface{}) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return nil, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return nil, false
	}
	for k, v := range extra {
		doc[k] = v
	}

	if h.cfg.Registry == nil {
		return body, true
	}
	schema, err := h.cfg.Registry.InputSchema(taskType)
	if err != nil {
		return body, true
	}
	result, err := validation.Validate(schema, doc)
	if err != nil {
		logger.FromContext(r.Context(), h.cfg.Logger).Error("input schema unusable", map[string]interface{}{
			"taskType": taskType,
			"error":    err.Error(),
		})
		return body, true
	}
	if result.Valid {
		return body, true
	}

	for _, fm := range requiredFieldMessages[taskType] {
		if result.HasFieldError(fm.field) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fm.message})
			return nil, false
		}
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody, Details: result.Summary()})
	return nil, false
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
