package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/replenishment-api/internal/application/ports"
)

// Verificar en tiempo de compilación que Client implementa HubNotifier.
var _ ports.HubNotifier = (*Client)(nil)

const purchaseRequestsPath = "/purchase-requests"

// Config parámetros del cliente del hub.
type Config struct {
	BaseURL    string
	APIKey     string        // vacío = sin Authorization
	Timeout    time.Duration // por intento
	MaxRetries int           // reintentos adicionales ante error de red o 5xx
	Backoff    time.Duration // espera inicial, se duplica en cada reintento
}

// Client adaptador HTTP hacia el hub de fulfillment.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tracer     trace.Tracer
}

// StatusError respuesta no exitosa del hub.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hub: HTTP %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// NewClient construye el adaptador. Si Timeout es 0 se usan 5 s.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer("replenishment-api/hub"),
	}
}

// NotifyPurchaseRequest envía la solicitud al hub con POST {BaseURL}/purchase-requests.
// Reintenta ante errores de red y respuestas 5xx; un 4xx se devuelve de inmediato.
func (c *Client) NotifyPurchaseRequest(ctx context.Context, req ports.HubPurchaseRequest) (*ports.HubAck, error) {
	if c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("hub: HUB_BASE_URL no configurado")
	}
	ctx, span := c.tracer.Start(ctx, "hub.notify_purchase_request", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("purchase_request.reference", req.Reference),
		attribute.Int64("purchase_request.qty_total", req.QuantityTotal),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("hub: serializar request: %w", err)
	}

	var lastErr error
	wait := c.cfg.Backoff
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("hub: cancelado tras %d intentos: %w", attempt, errors.Join(ctx.Err(), lastErr))
			case <-time.After(wait):
			}
			wait *= 2
		}
		ack, err := c.post(ctx, body)
		span.SetAttributes(attribute.Int("hub.attempts", attempt+1))
		if err == nil {
			span.SetAttributes(attribute.Int("http.response.status_code", ack.StatusCode))
			return ack, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "hub")
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (*ports.HubAck, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+purchaseRequestsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hub: crear HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("hub: timeout o cancelación: %w", ctx.Err())
		}
		return nil, &networkError{err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, &networkError{err: fmt.Errorf("leer respuesta: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: raw}
	}
	return &ports.HubAck{StatusCode: resp.StatusCode, Body: raw}, nil
}

type networkError struct{ err error }

func (e *networkError) Error() string { return "hub: llamada HTTP fallida: " + e.err.Error() }
func (e *networkError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var netErr *networkError
	if errors.As(err, &netErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return false
}
