package edge

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/archivecast/podcaster/internal/apierr"
	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/workflow"
)

type createWorkflowRequest struct {
	Name      string   `json:"name"`
	SpeechIDs []string `json:"speechIds"`
}

func (h *handlers) createWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if len(req.SpeechIDs) == 0 {
		h.writeError(w, apierr.Input("speechIds must not be empty", nil))
		return
	}

	wf, err := h.deps.Store.CreateWorkflow(r.Context(), req.Name, req.SpeechIDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"workflowId": wf.ID,
		"status":     wf.Status,
	})
}

// workflowView resolves a workflow's speech ids into full records for
// the GET /api/workflow/:id response. A speech that no longer resolves
// (deleted/hidden since the workflow was created) is simply omitted.
type workflowView struct {
	ID       string                 `json:"workflowId"`
	Name     string                 `json:"name"`
	Status   catalog.WorkflowStatus `json:"status"`
	Script   *string                `json:"script,omitempty"`
	AudioURL *string                `json:"audioUrl,omitempty"`
	RSSURL   *string                `json:"rssUrl,omitempty"`
	Speeches []catalog.Speech       `json:"speeches"`
}

func (h *handlers) getWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wf, err := h.deps.Store.GetWorkflow(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	speeches := make([]catalog.Speech, 0, len(wf.SpeechIDs))
	for _, sid := range wf.SpeechIDs {
		sp, err := h.deps.Store.GetSpeech(r.Context(), sid)
		if err != nil {
			continue
		}
		speeches = append(speeches, *sp)
	}

	writeJSON(w, http.StatusOK, workflowView{
		ID:       wf.ID,
		Name:     wf.Name,
		Status:   wf.Status,
		Script:   wf.Script,
		AudioURL: wf.AudioURL,
		RSSURL:   wf.RSSURL,
		Speeches: speeches,
	})
}

type uploadScriptRequest struct {
	WorkflowID string `json:"workflowId"`
	Script     string `json:"script"`
}

func (h *handlers) uploadScript(w http.ResponseWriter, r *http.Request) {
	var req uploadScriptRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.deps.Workflow.UploadScript(r.Context(), req.WorkflowID, req.Script); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "script_uploaded"})
}

type generateScriptRequest struct {
	WorkflowID string `json:"workflowId"`
	Model      string `json:"model"`
	Style      string `json:"style"`
	Duration   string `json:"duration"`
	BatchSize  int    `json:"batchSize"`
	UseSwarm   bool   `json:"useSwarm"`
}

func (h *handlers) generateScript(w http.ResponseWriter, r *http.Request) {
	var req generateScriptRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.deps.Workflow.GenerateScript(r.Context(), workflow.GenerateScriptRequest{
		WorkflowID: req.WorkflowID,
		Model:      req.Model,
		Style:      req.Style,
		Duration:   req.Duration,
		BatchSize:  req.BatchSize,
		UseSwarm:   req.UseSwarm,
		UsePool:    true,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"script":         result.Script,
		"batchProcessed": result.BatchProcessed,
	})
}

type generateAudioRequest struct {
	WorkflowID      string `json:"workflowId"`
	Voice           string `json:"voice"`
	Preset          string `json:"preset"`
	CustomVoicePath string `json:"customVoicePath"`
}

func (h *handlers) generateAudio(w http.ResponseWriter, r *http.Request) {
	var req generateAudioRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.deps.Workflow.GenerateAudio(r.Context(), workflow.GenerateAudioRequest{
		WorkflowID:  req.WorkflowID,
		Voice:       req.Voice,
		Preset:      req.Preset,
		CustomVoice: req.CustomVoicePath,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"audioUrl": result.AudioURL,
		"ttsResult": map[string]any{
			"fallback": result.Fallback,
		},
	})
}

type finalizeRequest struct {
	WorkflowID  string `json:"workflowId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	LocalBundle *bool  `json:"localBundle"`
}

func (h *handlers) finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	localBundle := true
	if req.LocalBundle != nil {
		localBundle = *req.LocalBundle
	}

	result, err := h.deps.Workflow.Finalize(r.Context(), workflow.FinalizeRequest{
		WorkflowID:  req.WorkflowID,
		Title:       req.Title,
		Description: req.Description,
		LocalBundle: localBundle,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := map[string]any{"rssUrl": result.RSSPath}
	if result.BundlePath != "" {
		resp["bundlePath"] = result.BundlePath
	}
	writeJSON(w, http.StatusOK, resp)
}
