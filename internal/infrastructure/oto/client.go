package oto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wecre8/oto/internal/domain/fulfillment"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024

// ErrRequestFailed wraps transport failures talking to OTO
var ErrRequestFailed = errors.New("oto: request failed")

// Client sends fulfillment payloads to the OTO REST API
type Client struct {
	builder    *PayloadBuilder
	httpClient *http.Client
	metrics    *Metrics
	tracer     trace.Tracer
	logger     *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. The default client has no timeout;
// the request context bounds each call.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records every request in m
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new OTO client
func NewClient(builder *PayloadBuilder, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		builder:    builder,
		httpClient: &http.Client{},
		tracer:     otel.Tracer("github.com/wecre8/oto/internal/infrastructure/oto"),
		logger:     logger.Named("oto"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendRequest builds the payload for destination, POSTs it to the resolved
// endpoint and returns the decoded JSON body as is. The status code is not
// checked; a body that is not JSON is an error.
func (c *Client) SendRequest(ctx context.Context, f *fulfillment.Fulfillment, cfg Config, destination string) (any, error) {
	ctx, span := c.tracer.Start(ctx, "oto."+destination,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("oto.fulfillment_id", f.ID),
			attribute.Bool("oto.sandbox", cfg.IsSandbox()),
		),
	)
	defer span.End()

	result, err := c.send(ctx, f, cfg, destination, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, f *fulfillment.Fulfillment, cfg Config, destination string, span trace.Span) (any, error) {
	data, err := c.builder.RequestData(ctx, f, cfg, destination)
	if err != nil {
		return nil, err
	}

	body := io.Reader(http.NoBody)
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("oto: failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	url := URL(cfg, destination)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("oto: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.String(KeyAccessToken))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(destination, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.metrics.observe(destination, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		return nil, fmt.Errorf("oto: failed to read response: %w", err)
	}

	var result any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("oto: failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}

	c.logger.Debug("OTO request sent",
		zap.String("destination", destination),
		zap.String("url", url),
		zap.Int64("fulfillment_id", f.ID),
		zap.Int("status", resp.StatusCode),
	)

	return result, nil
}
