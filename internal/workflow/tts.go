package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ttsTimeout is the wall-clock budget for one TTS worker invocation;
// exceeding it kills the subprocess and the caller falls back to a
// placeholder audio path rather than failing the whole workflow.
const ttsTimeout = 5 * time.Minute

// ttsResult is the worker's stdout JSON object. The engine tolerates any
// additional fields the worker emits beyond these.
type ttsResult struct {
	Success    bool    `json:"success"`
	OutputFile string  `json:"output_file"`
	Duration   float64 `json:"duration"`
}

// ttsRequest is the subprocess invocation the engine needs to make; it
// mirrors the worker's documented flag set for generation.
type ttsRequest struct {
	WorkerPath  string
	Text        string
	Voice       string
	Preset      string
	OutputFile  string
	OutputDir   string
	CustomVoice string // optional, --custom-voice
}

// runTTSWorker invokes the external TTS worker as a scoped subprocess:
// the context bounds its lifetime to ttsTimeout, and cmd.Wait always
// runs so the process is reaped on every exit path, including a
// context-triggered kill.
func runTTSWorker(ctx context.Context, req ttsRequest) (*ttsResult, string, error) {
	ctx, span := tracer.Start(ctx, "workflow.tts_invocation")
	defer span.End()
	span.SetAttributes(attribute.String("tts.voice", req.Voice), attribute.String("tts.preset", req.Preset))

	ctx, cancel := context.WithTimeout(ctx, ttsTimeout)
	defer cancel()

	args := []string{
		"--text", req.Text,
		"--voice", req.Voice,
		"--preset", req.Preset,
		"--output", req.OutputFile,
		"--output-dir", req.OutputDir,
	}
	if req.CustomVoice != "" {
		args = append(args, "--custom-voice", req.CustomVoice)
	}

	cmd := exec.CommandContext(ctx, req.WorkerPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	progressLog := stderr.String()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tts worker failed")
		return nil, progressLog, fmt.Errorf("tts worker: %w", err)
	}

	var result ttsResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode tts output failed")
		return nil, progressLog, fmt.Errorf("decode tts worker output: %w", err)
	}
	span.SetAttributes(attribute.Bool("tts.success", result.Success))
	return &result, progressLog, nil
}
