// Package audit entrega los eventos de negocio confirmados a destinos externos.
// Ningún sink devuelve error: una falla de auditoría no revierte la operación ya confirmada.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/pkg/logger"
)

var (
	_ stock.AuditSink = (*LogSink)(nil)
	_ stock.AuditSink = (*WebhookSink)(nil)
	_ stock.AuditSink = Multi(nil)
)

// LogSink escribe cada evento en el log estructurado.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink construye el sink con un sublogger "audit".
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.Component("audit")}
}

func (s *LogSink) Record(_ context.Context, e stock.AuditEvent) {
	s.log.Info().
		Str("action", e.Action).
		Str("entity_type", e.EntityType).
		Str("entity_id", e.EntityID).
		Str("branch_id", e.BranchID).
		Str("actor_id", e.ActorID).
		Time("occurred_at", e.OccurredAt).
		Interface("details", e.Details).
		Msg("evento de auditoría")
}

// WebhookSink publica cada evento como JSON (POST) en una URL externa.
// Record solo encola; un único worker entrega los eventos fuera del camino de la petición.
// Con la cola llena el evento se descarta y queda en el log.
type WebhookSink struct {
	client *resty.Client
	url    string
	log    *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan webhookDelivery
	done   chan struct{}
}

type webhookDelivery struct {
	event   stock.AuditEvent
	headers propagation.MapCarrier
}

// DefaultWebhookQueueSize capacidad de la cola cuando no se configura.
const DefaultWebhookQueueSize = 256

// NewWebhookSink construye el sink y arranca su worker. timeout <= 0 usa 5 segundos;
// queueSize <= 0 usa DefaultWebhookQueueSize. Debe cerrarse con Close.
func NewWebhookSink(url string, timeout time.Duration, queueSize int, log *logger.Logger) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if queueSize <= 0 {
		queueSize = DefaultWebhookQueueSize
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Content-Type", "application/json")
	s := &WebhookSink{
		client: client,
		url:    url,
		log:    log.Component("audit.webhook"),
		queue:  make(chan webhookDelivery, queueSize),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Record encola el evento sin bloquear. El contexto solo aporta la traza a propagar.
func (s *WebhookSink) Record(ctx context.Context, e stock.AuditEvent) {
	d := webhookDelivery{event: e, headers: propagation.MapCarrier{}}
	otel.GetTextMapPropagator().Inject(ctx, d.headers)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn().Str("action", e.Action).Str("entity_id", e.EntityID).Msg("webhook de auditoría cerrado; evento descartado")
		return
	}
	select {
	case s.queue <- d:
	default:
		s.log.Warn().Str("action", e.Action).Str("entity_id", e.EntityID).Msg("cola de auditoría llena; evento descartado")
	}
}

// Close deja de aceptar eventos y espera a que se entreguen los encolados o a que venza ctx.
func (s *WebhookSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *WebhookSink) run() {
	defer close(s.done)
	for d := range s.queue {
		s.deliver(d)
	}
}

func (s *WebhookSink) deliver(d webhookDelivery) {
	e := d.event
	resp, err := s.client.R().SetHeaders(d.headers).SetBody(e).Post(s.url)
	if err != nil {
		s.log.Error().Err(err).Str("action", e.Action).Str("entity_id", e.EntityID).Msg("webhook de auditoría falló")
		return
	}
	if resp.IsError() {
		s.log.Error().
			Int("status", resp.StatusCode()).
			Str("action", e.Action).
			Str("entity_id", e.EntityID).
			Msg("webhook de auditoría rechazó el evento")
	}
}

// Multi reparte el evento a varios sinks en orden.
type Multi []stock.AuditSink

func (m Multi) Record(ctx context.Context, e stock.AuditEvent) {
	for _, s := range m {
		s.Record(ctx, e)
	}
}
