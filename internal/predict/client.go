package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/logging"
	"github.com/solutyics/loanform/internal/version"
)

const (
	// DefaultEndpoint is the hosted prediction service
	DefaultEndpoint = "https://watery-cheslie-solutyics-efc6f698.koyeb.app/predict"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-request id to the service
	RequestIDHeader = "X-Request-ID"

	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 1 << 20

	tracerName = "github.com/solutyics/loanform/internal/predict"
)

// Predictor submits a payload and returns the service's response.
type Predictor interface {
	Predict(ctx context.Context, p form.Payload) (*form.Result, error)
}

// Client posts payloads to the prediction service over HTTP
type Client struct {
	// Endpoint is the full URL requests are posted to
	Endpoint string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent is sent with every request
	UserAgent string

	tracer trace.Tracer
}

// NewClient creates a client for endpoint. A zero timeout uses DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  fmt.Sprintf("loanform/%s", version.Version),
		tracer:     otel.Tracer(tracerName),
	}
}

// Predict posts p as JSON. A 2xx response is returned as an opaque Result;
// every failure is returned as an *Error.
func (c *Client) Predict(ctx context.Context, p form.Payload) (*form.Result, error) {
	requestID := uuid.New().String()

	ctx, span := c.tracer.Start(ctx, "predict.Predict",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodPost),
			attribute.String("url.full", c.Endpoint),
			attribute.String("loanform.request_id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := c.do(ctx, requestID, p)
	duration := time.Since(start)

	status := 0
	if result != nil {
		status = result.StatusCode
	}
	var pe *Error
	if errors.As(err, &pe) && pe.StatusCode != 0 {
		status = pe.StatusCode
	}
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ShortMessage(err))
	}

	logging.LogPrediction(requestID, c.Endpoint, status, duration, err)
	return result, err
}

func (c *Client) do(ctx context.Context, requestID string, p form.Payload) (*form.Result, error) {
	if err := ValidatePayload(p); err != nil {
		return nil, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, NewClientError("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewClientError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set(RequestIDHeader, requestID)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewClientError("request canceled", err)
		}
		return nil, NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewServerError(resp.StatusCode, data)
	}

	return &form.Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
