package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/generative-ai-go/genai"
	"github.com/valyala/fasttemplate"

	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
	"mindhaven/pkg/metrics"
)

const (
	outcomeOK            = "ok"
	outcomeInvalidInput  = "invalid_input"
	outcomeFailed        = "failed"
	outcomeInvalidOutput = "invalid_output"
)

// promptTemplate is a named generation with a validated input, a prompt body
// with {{placeholders}}, a response schema and a validated output.
type promptTemplate[In any, Out any] struct {
	name   string
	prompt *fasttemplate.Template
	spec   ModelSpec
	// bind turns the input into placeholder values and any extra parts
	// appended after the rendered prompt.
	bind func(in In) (map[string]interface{}, []genai.Part, error)
}

func newPromptTemplate[In any, Out any](name, body string, spec ModelSpec, bind func(In) (map[string]interface{}, []genai.Part, error)) *promptTemplate[In, Out] {
	return &promptTemplate[In, Out]{
		name:   name,
		prompt: fasttemplate.New(body, "{{", "}}"),
		spec:   spec,
		bind:   bind,
	}
}

// Render validates in and returns the parts sent to the model.
func (t *promptTemplate[In, Out]) Render(validate *validator.Validate, in In) ([]genai.Part, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	vars, extra, err := t.bind(in)
	if err != nil {
		return nil, err
	}

	parts := []genai.Part{genai.Text(t.prompt.ExecuteString(vars))}
	return append(parts, extra...), nil
}

func (t *promptTemplate[In, Out]) Run(ctx context.Context, gen Generator, validate *validator.Validate, in In) (*Out, error) {
	parts, err := t.Render(validate, in)
	if err != nil {
		t.record(outcomeInvalidInput)
		return nil, errors.BadRequest("Invalid "+t.name+" input", err)
	}

	raw, err := gen.Generate(ctx, t.spec, parts...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.record(outcomeFailed)
		logger.Error("Template %s generation failed: %v", t.name, err)
		return nil, errors.AIUnavailable(err)
	}

	var out Out
	if err := json.Unmarshal([]byte(trimFence(raw)), &out); err != nil {
		t.record(outcomeInvalidOutput)
		logger.Error("Template %s returned malformed JSON: %v", t.name, err)
		return nil, errors.AIUnavailable(err)
	}
	if err := validate.Struct(out); err != nil {
		t.record(outcomeInvalidOutput)
		logger.Error("Template %s returned invalid output: %v", t.name, err)
		return nil, errors.AIUnavailable(err)
	}

	t.record(outcomeOK)
	return &out, nil
}

func (t *promptTemplate[In, Out]) record(outcome string) {
	metrics.AITemplateCalls.WithLabelValues(t.name, outcome).Inc()
}

// trimFence strips a ```json fence some model versions wrap around output.
func trimFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
