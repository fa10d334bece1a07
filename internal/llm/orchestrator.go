package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/archivecast/podcaster/internal/keypool"
)

var tracer = otel.Tracer("speechcastd-llm")

// defaultBatchSize is the spec's default batchSize when the caller omits one.
const defaultBatchSize = 10

// swarmMinSpeeches is the minimum speech count for the Swarm strategy to
// be eligible even when explicitly requested.
const swarmMinSpeeches = 3

// GenerateRequest is the input to one script-generation call.
type GenerateRequest struct {
	Model       string
	ExplicitKey string // client-supplied key, takes precedence over the pool
	UsePool     bool
	Style       string
	Duration    string
	BatchSize   int
	UseSwarm    bool
	Speeches    []SpeechInput
}

// Orchestrator selects and runs one of the Single/Batched/Swarm strategies
// against OpenRouter.
type Orchestrator struct {
	client *Client
	pool   *keypool.Pool
	envKey string
}

func NewOrchestrator(client *Client, pool *keypool.Pool, envKey string) *Orchestrator {
	return &Orchestrator{client: client, pool: pool, envKey: envKey}
}

// GenerateScript selects a strategy per the (speech count, requested mode)
// table and returns the resulting script text verbatim.
func (o *Orchestrator) GenerateScript(ctx context.Context, req GenerateRequest) (string, Meta, error) {
	ctx, span := tracer.Start(ctx, "llm.generate_script")
	defer span.End()
	span.SetAttributes(attribute.Int("llm.speech_count", len(req.Speeches)))

	if len(req.Speeches) == 0 {
		err := fmt.Errorf("generate script: no speeches supplied")
		span.RecordError(err)
		span.SetStatus(codes.Error, "no speeches")
		return "", Meta{}, err
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var text string
	var meta Meta
	var err error
	switch {
	case req.UseSwarm && len(req.Speeches) >= swarmMinSpeeches:
		text, meta, err = o.runSwarm(ctx, req)
	case len(req.Speeches) > batchSize:
		text, meta, err = o.runBatched(ctx, req, batchSize)
	default:
		text, meta, err = o.runSingle(ctx, req)
	}

	span.SetAttributes(attribute.String("llm.strategy", meta.Strategy))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "strategy failed")
	}
	return text, meta, err
}

func (o *Orchestrator) runSingle(ctx context.Context, req GenerateRequest) (string, Meta, error) {
	text, err := o.call(ctx, req, buildSingleUserPrompt(req.Speeches, req.Style, req.Duration))
	if err != nil {
		return "", Meta{}, fmt.Errorf("single strategy: %w", err)
	}
	return text, Meta{Strategy: "single"}, nil
}

func (o *Orchestrator) runBatched(ctx context.Context, req GenerateRequest, batchSize int) (string, Meta, error) {
	batches := partition(req.Speeches, batchSize)
	summaries := make([]string, len(batches))

	for i, batch := range batches {
		batchCtx, span := tracer.Start(ctx, "llm.batch")
		span.SetAttributes(attribute.Int("llm.batch_index", i), attribute.Int("llm.batch_size", len(batch)))
		text, err := o.call(batchCtx, req, buildBatchSummaryPrompt(batch))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch call failed")
			summaries[i] = fmt.Sprintf("Batch processing failed: %s", titlesOf(batch))
			span.End()
			continue
		}
		summaries[i] = text
		span.End()
	}

	final, err := o.call(ctx, req, buildBatchSynthesisPrompt(summaries, req.Style, req.Duration))
	if err != nil {
		return "", Meta{}, fmt.Errorf("batched strategy synthesis: %w", err)
	}
	return final, Meta{Strategy: "batched", BatchProcessed: true}, nil
}

func (o *Orchestrator) runSwarm(ctx context.Context, req GenerateRequest) (string, Meta, error) {
	slices := partitionThree(req.Speeches)

	var wg sync.WaitGroup
	var analyses [3]string
	var errs [3]error

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			agentCtx, span := tracer.Start(ctx, "llm.swarm_agent")
			defer span.End()
			span.SetAttributes(attribute.String("llm.agent", swarmAgents[i].Name))
			text, err := o.call(agentCtx, req, buildAgentPrompt(swarmAgents[i], slices[i]))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "agent call failed")
			}
			analyses[i] = text
			errs[i] = err
		}(i)
	}
	wg.Wait() // join is total: all three must finish before synthesis

	for _, err := range errs {
		if err != nil {
			return o.runSingle(ctx, req)
		}
	}

	final, err := o.call(ctx, req, buildSwarmSynthesisPrompt(analyses, req.Style, req.Duration))
	if err != nil {
		return "", Meta{}, fmt.Errorf("swarm strategy synthesis: %w", err)
	}
	return final, Meta{Strategy: "swarm"}, nil
}

// call resolves a key per the shared precedence rule, issues one provider
// call, reports the outcome to the pool, and returns cleaned script text.
// A single call is never retried here; the caller decides what to do with
// a failure.
func (o *Orchestrator) call(ctx context.Context, req GenerateRequest, userPrompt string) (string, error) {
	key, err := resolveKey(req.ExplicitKey, req.UsePool, o.pool, o.envKey)
	if err != nil {
		return "", err
	}

	text, err := o.client.Complete(ctx, key.Value, ChatRequest{
		Model: req.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		if callErr, ok := err.(*CallError); ok {
			switch callErr.StatusCode {
			case 429:
				key.reportRateLimited()
			case 401:
				key.reportInvalid()
			}
		}
		return "", err
	}

	key.reportSuccess()
	return cleanScriptText(text), nil
}

// ProxyRequest is a raw chat-completion call, bypassing the
// script-generation strategies and prompt templates entirely.
type ProxyRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
	ExplicitKey string
	UsePool     bool
}

// Proxy issues a single chat-completion call under the same key
// precedence and outcome bookkeeping as GenerateScript's strategies,
// but with caller-supplied messages instead of a built prompt.
func (o *Orchestrator) Proxy(ctx context.Context, req ProxyRequest) (string, error) {
	key, err := resolveKey(req.ExplicitKey, req.UsePool, o.pool, o.envKey)
	if err != nil {
		return "", err
	}

	text, err := o.client.Complete(ctx, key.Value, ChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if callErr, ok := err.(*CallError); ok {
			switch callErr.StatusCode {
			case 429:
				key.reportRateLimited()
			case 401:
				key.reportInvalid()
			}
		}
		return "", err
	}

	key.reportSuccess()
	return text, nil
}

func partition(speeches []SpeechInput, size int) [][]SpeechInput {
	var out [][]SpeechInput
	for i := 0; i < len(speeches); i += size {
		end := i + size
		if end > len(speeches) {
			end = len(speeches)
		}
		out = append(out, speeches[i:end])
	}
	return out
}

// partitionThree splits into three roughly equal contiguous slices.
func partitionThree(speeches []SpeechInput) [3][]SpeechInput {
	n := len(speeches)
	base := n / 3
	rem := n % 3
	var out [3][]SpeechInput
	start := 0
	for i := 0; i < 3; i++ {
		size := base
		if i < rem {
			size++
		}
		out[i] = speeches[start : start+size]
		start += size
	}
	return out
}

func titlesOf(speeches []SpeechInput) string {
	titles := make([]string, len(speeches))
	for i, s := range speeches {
		titles[i] = s.Title
	}
	return strings.Join(titles, ", ")
}
