// Package workflow implements the Workflow State Machine: stage
// preconditions, external LLM and TTS orchestration, and bundle
// assembly, over a persistent *catalog.Store.
package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/archivecast/podcaster/internal/apierr"
	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/feed"
	"github.com/archivecast/podcaster/internal/llm"
)

var tracer = otel.Tracer("speechcastd-workflow")

// excerptLen is the per-speech transcript excerpt length embedded in
// generate-script prompts.
const excerptLen = 500

// Engine wraps the catalog store and the LLM orchestrator and enforces
// the five-stage transition contract.
type Engine struct {
	store        *catalog.Store
	orchestrator *llm.Orchestrator
	outputRoot   string
	ttsWorker    string
}

func New(store *catalog.Store, orchestrator *llm.Orchestrator, outputRoot, ttsWorker string) *Engine {
	return &Engine{store: store, orchestrator: orchestrator, outputRoot: outputRoot, ttsWorker: ttsWorker}
}

// GenerateScriptRequest is the input to GenerateScript.
type GenerateScriptRequest struct {
	WorkflowID  string
	Model       string
	Style       string
	Duration    string
	BatchSize   int
	UseSwarm    bool
	ExplicitKey string
	UsePool     bool
}

// GenerateScriptResult surfaces whether batching kicked in, per §6.1's
// {script, batchProcessed} response shape.
type GenerateScriptResult struct {
	Script         string
	BatchProcessed bool
}

// GenerateScript resolves the workflow's speeches, selects and runs an
// LLM strategy, writes the result, and advances the workflow to
// script_generated.
func (e *Engine) GenerateScript(ctx context.Context, req GenerateScriptRequest) (*GenerateScriptResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.stage_transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("workflow.id", req.WorkflowID),
		attribute.String("workflow.target_status", string(catalog.WorkflowScriptGenerated)),
	)

	wf, err := e.store.GetWorkflow(ctx, req.WorkflowID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get workflow failed")
		return nil, err
	}

	speeches, err := e.resolveSpeeches(ctx, wf.SpeechIDs)
	if err != nil {
		return nil, err
	}
	if len(speeches) == 0 {
		return nil, apierr.Input("workflow has no resolvable speeches", nil)
	}

	script, meta, err := e.orchestrator.GenerateScript(ctx, llm.GenerateRequest{
		Model:       req.Model,
		ExplicitKey: req.ExplicitKey,
		UsePool:     req.UsePool,
		Style:       req.Style,
		Duration:    req.Duration,
		BatchSize:   req.BatchSize,
		UseSwarm:    req.UseSwarm,
		Speeches:    speeches,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "llm generate script failed")
		return nil, apierr.UpstreamFailure("generate script", err)
	}

	status := catalog.WorkflowScriptGenerated
	if err := e.store.UpdateWorkflow(ctx, req.WorkflowID, catalog.WorkflowFields{
		Script: &script,
		Status: &status,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update workflow failed")
		return nil, err
	}

	return &GenerateScriptResult{Script: script, BatchProcessed: meta.BatchProcessed}, nil
}

func (e *Engine) resolveSpeeches(ctx context.Context, speechIDs []string) ([]llm.SpeechInput, error) {
	out := make([]llm.SpeechInput, 0, len(speechIDs))
	for _, id := range speechIDs {
		sp, err := e.store.GetSpeech(ctx, id)
		if err != nil {
			if apiErr, ok := apierr.As(err); ok && apiErr.Kind == apierr.KindNotFound {
				continue // unresolvable speech id is skipped, not fatal
			}
			return nil, err
		}
		date := ""
		if sp.Date != nil {
			date = *sp.Date
		}
		location := ""
		if sp.RallyLocation != nil {
			location = *sp.RallyLocation
		}
		excerpt := ""
		if sp.Transcript != nil {
			excerpt = truncate(*sp.Transcript, excerptLen)
		}
		out = append(out, llm.SpeechInput{Title: sp.Title, Date: date, Location: location, Excerpt: excerpt})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// uploadScriptMaxChars is spec's upload-script ceiling.
const uploadScriptMaxChars = 50000

// UploadScript overwrites the workflow's script with caller-supplied
// text and advances it to script_uploaded.
func (e *Engine) UploadScript(ctx context.Context, workflowID, scriptText string) error {
	ctx, span := tracer.Start(ctx, "workflow.stage_transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("workflow.id", workflowID),
		attribute.String("workflow.target_status", string(catalog.WorkflowScriptUploaded)),
	)

	if scriptText == "" {
		return apierr.Input("script text must not be empty", nil)
	}
	if len(scriptText) > uploadScriptMaxChars {
		return apierr.Input(fmt.Sprintf("script text exceeds %d characters", uploadScriptMaxChars), nil)
	}
	if _, err := e.store.GetWorkflow(ctx, workflowID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get workflow failed")
		return err
	}

	status := catalog.WorkflowScriptUploaded
	if err := e.store.UpdateWorkflow(ctx, workflowID, catalog.WorkflowFields{
		Script: &scriptText,
		Status: &status,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update workflow failed")
		return err
	}
	return nil
}

// GenerateAudioRequest is the input to GenerateAudio.
type GenerateAudioRequest struct {
	WorkflowID  string
	Voice       string
	Preset      string
	CustomVoice string
}

// GenerateAudioResult reports whether the audio path is a genuine
// synthesis result or a fallback placeholder.
type GenerateAudioResult struct {
	AudioURL string
	Fallback bool
}

// GenerateAudio normalizes the script, invokes the TTS worker, and
// advances the workflow to audio_generated — even on worker failure,
// per spec's "a placeholder is better than a stuck workflow" rule.
func (e *Engine) GenerateAudio(ctx context.Context, req GenerateAudioRequest) (*GenerateAudioResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.stage_transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("workflow.id", req.WorkflowID),
		attribute.String("workflow.target_status", string(catalog.WorkflowAudioGenerated)),
	)

	wf, err := e.store.GetWorkflow(ctx, req.WorkflowID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get workflow failed")
		return nil, err
	}
	if wf.Script == nil {
		return nil, apierr.Input("workflow has no script", nil)
	}

	outputDir := filepath.Join(e.outputRoot, "audio", req.WorkflowID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, apierr.Store("create audio output dir", err)
	}
	outputFile := req.WorkflowID + ".mp3"

	normalized := normalizeForTTS(*wf.Script)
	result, _, err := runTTSWorker(ctx, ttsRequest{
		WorkerPath:  e.ttsWorker,
		Text:        normalized,
		Voice:       req.Voice,
		Preset:      req.Preset,
		OutputFile:  outputFile,
		OutputDir:   outputDir,
		CustomVoice: req.CustomVoice,
	})

	audioResult := &GenerateAudioResult{}
	var audioURL string
	if err != nil || result == nil || !result.Success {
		audioURL = filepath.Join(outputDir, "fallback-silence.mp3")
		if werr := os.WriteFile(audioURL, []byte{}, 0644); werr != nil {
			return nil, apierr.Store("write fallback audio placeholder", werr)
		}
		audioResult.Fallback = true
	} else {
		audioURL = filepath.Join(outputDir, result.OutputFile)
	}
	audioResult.AudioURL = audioURL

	status := catalog.WorkflowAudioGenerated
	if err := e.store.UpdateWorkflow(ctx, req.WorkflowID, catalog.WorkflowFields{
		AudioURL: &audioURL,
		Status:   &status,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update workflow failed")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("tts.fallback", audioResult.Fallback))

	return audioResult, nil
}

// FinalizeRequest is the input to Finalize.
type FinalizeRequest struct {
	WorkflowID  string
	Title       string
	Description string
	LocalBundle bool
}

// FinalizeResult surfaces where the finished artifact lives.
type FinalizeResult struct {
	BundlePath string // set when LocalBundle
	RSSPath    string // set otherwise
}

// Finalize requires both script and audio_url and produces either a
// self-contained bundle directory or a single RSS file, advancing the
// workflow to finalized.
func (e *Engine) Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.stage_transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("workflow.id", req.WorkflowID),
		attribute.String("workflow.target_status", string(catalog.WorkflowFinalized)),
	)

	wf, err := e.store.GetWorkflow(ctx, req.WorkflowID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get workflow failed")
		return nil, err
	}
	if wf.Script == nil || wf.AudioURL == nil {
		return nil, apierr.Input("workflow requires both script and audio before finalize", nil)
	}

	title := req.Title
	if title == "" {
		title = wf.Name
	}

	result := &FinalizeResult{}
	var rssURL string

	if req.LocalBundle {
		bundleDir := filepath.Join(e.outputRoot, "bundles", req.WorkflowID)
		if err := feed.WriteBundle(feed.BundleSpec{
			Dir:         bundleDir,
			Title:       title,
			Description: req.Description,
			Script:      *wf.Script,
			AudioPath:   *wf.AudioURL,
			WorkflowID:  req.WorkflowID,
			SpeechIDs:   wf.SpeechIDs,
		}); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "write bundle failed")
			return nil, apierr.Store("write bundle", err)
		}
		result.BundlePath = bundleDir
		rssURL = filepath.Join(bundleDir, "podcast.xml")
		result.RSSPath = rssURL
	} else {
		rssPath := filepath.Join(e.outputRoot, "rss", req.WorkflowID+".xml")
		if err := feed.WriteRSSFile(rssPath, feed.RSSSpec{
			Title:       title,
			Description: req.Description,
			AudioURL:    *wf.AudioURL,
			WorkflowID:  req.WorkflowID,
			Local:       false,
		}); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "write rss failed")
			return nil, apierr.Store("write rss", err)
		}
		result.RSSPath = rssPath
		rssURL = rssPath
	}

	status := catalog.WorkflowFinalized
	if err := e.store.UpdateWorkflow(ctx, req.WorkflowID, catalog.WorkflowFields{
		RSSURL: &rssURL,
		Status: &status,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update workflow failed")
		return nil, err
	}

	return result, nil
}
