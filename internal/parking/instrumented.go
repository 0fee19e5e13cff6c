package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/telemetry"
)

// InstrumentedEventService decorates EventService with spans and metrics per
// processed event.
type InstrumentedEventService struct {
	*EventService
	telemetry *telemetry.Provider

	eventsProcessed metric.Int64Counter
	occupancyGauge  metric.Int64UpDownCounter
	eventDuration   metric.Float64Histogram
}

func NewInstrumentedEventService(svc *EventService, tp *telemetry.Provider) (*InstrumentedEventService, error) {
	meter := tp.Meter()

	eventsProcessed, err := meter.Int64Counter("parking_events_total",
		metric.WithDescription("Total number of webhook events processed"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("garage_occupancy",
		metric.WithDescription("Current number of occupied parking spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	eventDuration, err := meter.Float64Histogram("event_duration_seconds",
		metric.WithDescription("Duration of webhook event processing"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedEventService{
		EventService:    svc,
		telemetry:       tp,
		eventsProcessed: eventsProcessed,
		occupancyGauge:  occupancyGauge,
		eventDuration:   eventDuration,
	}, nil
}

func (s *InstrumentedEventService) ProcessEvent(ctx context.Context, event WebhookEvent) error {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking.process_event",
		trace.WithAttributes(
			attribute.String("event.type", event.EventType),
			attribute.String("vehicle.license_plate", event.LicensePlate),
		))
	defer span.End()

	start := time.Now()

	err := s.EventService.ProcessEvent(ctx, event)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("event_type", event.EventType),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		switch event.EventType {
		case EventParked:
			s.occupancyGauge.Add(ctx, 1)
		case EventExit:
			s.occupancyGauge.Add(ctx, -1)
		}
	}

	s.eventsProcessed.Add(ctx, 1, metric.WithAttributes(labels...))
	s.eventDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return err
}
