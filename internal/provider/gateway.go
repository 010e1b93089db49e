// Package provider sends rendered tool instructions to an OpenAI-compatible
// chat-completions endpoint and normalizes the reply to plain text.
//
// The gateway never surfaces a provider error to its caller. A missing
// credential, a transport failure, a non-2xx status, a timeout, or an empty
// completion all yield the fixed fallback text instead; the failure is logged
// and counted. Exactly one attempt is made per invocation.
package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/promptforge/promptforge-api/internal/metrics"
)

// FallbackText is returned whenever the provider cannot produce a reply.
const FallbackText = "Mock response: AI service unavailable. Please provide a valid API key to get real results."

// SystemPrompt is the fixed system role sent with every instruction.
const SystemPrompt = "You are an expert developer assistant."

// Fallback reasons, reported on Reply.Reason.
const (
	ReasonNoCredential = "no_credential"
	ReasonTransport    = "transport_error"
	ReasonTimeout      = "timeout"
	ReasonEmpty        = "empty_completion"
)

// Config carries everything the gateway needs to reach the provider.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	SiteURL  string // sent as HTTP-Referer
	SiteName string // sent as X-Title

	// HTTPClient overrides the transport; tests point it at httptest servers.
	HTTPClient *http.Client
}

// Reply is the sanitized text returned to the caller. Fallback is true when
// Text is FallbackText rather than a provider completion.
type Reply struct {
	Text     string
	Fallback bool
	Reason   string
}

// Gateway invokes the completion provider. The zero value is not usable;
// construct with New.
type Gateway struct {
	client  oai.Client
	model   string
	timeout time.Duration
	enabled bool
}

// New builds a Gateway. With an empty APIKey the returned gateway never
// performs network I/O.
func New(cfg Config) *Gateway {
	g := &Gateway{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		enabled: strings.TrimSpace(cfg.APIKey) != "",
	}
	if !g.enabled {
		return g
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	g.client = oai.NewClient(opts...)
	return g
}

// Enabled reports whether a credential is configured.
func (g *Gateway) Enabled() bool { return g.enabled }

// Invoke sends instruction as the sole user message and returns the
// sanitized completion, or the fallback reply on any failure.
func (g *Gateway) Invoke(ctx context.Context, instruction string) Reply {
	tr := otel.Tracer("provider/Gateway")
	ctx, span := tr.Start(ctx, "Invoke",
		trace.WithAttributes(
			attribute.String("provider.model", g.model),
			attribute.Int("instruction.bytes", len(instruction)),
		),
	)
	defer span.End()

	if !g.enabled {
		metrics.ProviderCalls.WithLabelValues(metrics.ResultSkipped).Inc()
		span.SetAttributes(attribute.String("provider.fallback", ReasonNoCredential))
		log.Warn().Msg("provider credential not set, using fallback response")
		return fallback(ReasonNoCredential)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(SystemPrompt),
			oai.UserMessage(instruction),
		},
	})
	metrics.ProviderLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		reason := ReasonTransport
		if errors.Is(err, context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		ev := log.Error().Err(err).Str("model", g.model).Str("reason", reason)
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			ev = ev.Int("status", apiErr.StatusCode)
		}
		ev.Msg("provider call failed, using fallback response")
		metrics.ProviderCalls.WithLabelValues(metrics.ResultError).Inc()
		span.RecordError(err)
		span.SetAttributes(attribute.String("provider.fallback", reason))
		return fallback(reason)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = Sanitize(resp.Choices[0].Message.Content)
	}
	if text == "" {
		log.Warn().Str("model", g.model).Int("choices", len(resp.Choices)).Msg("provider returned empty completion, using fallback response")
		metrics.ProviderCalls.WithLabelValues(metrics.ResultEmpty).Inc()
		span.SetAttributes(attribute.String("provider.fallback", ReasonEmpty))
		return fallback(ReasonEmpty)
	}

	metrics.ProviderCalls.WithLabelValues(metrics.ResultSuccess).Inc()
	return Reply{Text: text}
}

func fallback(reason string) Reply {
	return Reply{Text: FallbackText, Fallback: true, Reason: reason}
}
