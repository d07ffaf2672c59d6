package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"qrmenu-reco/config"
	"qrmenu-reco/database"
	"qrmenu-reco/database/abtests"
	"qrmenu-reco/database/events"
	models "qrmenu-reco/database/models_pkg"
	"qrmenu-reco/database/pairs"
	"qrmenu-reco/helpers"
	"qrmenu-reco/realtime"

	"github.com/google/uuid"
)

// EventTracker appends immutable funnel events and feeds the pair
// performance counters.
//
// Impressions and clicks are queued and written by a background worker;
// the caller gets an acknowledgement before the write lands. Conversions
// drive revenue accounting and are written synchronously so a crash
// cannot silently drop one.
type EventTracker struct {
	eventRepo  *events.Repository
	pairRepo   *pairs.Repository
	abtestRepo *abtests.Repository
	broker     *realtime.Broker

	queue chan events.Input
	done  chan bool
}

// NewEventTracker creates a new event tracker
func NewEventTracker(eventRepo *events.Repository, pairRepo *pairs.Repository, abtestRepo *abtests.Repository, broker *realtime.Broker, jobs config.JobsConfig) *EventTracker {
	return &EventTracker{
		eventRepo:  eventRepo,
		pairRepo:   pairRepo,
		abtestRepo: abtestRepo,
		broker:     broker,
		queue:      make(chan events.Input, jobs.EventQueueSize),
		done:       make(chan bool),
	}
}

// Start begins the background worker draining the event queue
func (et *EventTracker) Start() {
	log.Printf("📥 Event Tracker started (queue size %d)", cap(et.queue))

	for {
		select {
		case input := <-et.queue:
			if err := et.process(input); err != nil {
				log.Printf("⚠️  Event processing failed: %v", err)
			}
		case <-et.done:
			// Drain what's already queued before stopping
			for {
				select {
				case input := <-et.queue:
					if err := et.process(input); err != nil {
						log.Printf("⚠️  Event processing failed during drain: %v", err)
					}
				default:
					log.Println("📥 Event Tracker stopped")
					return
				}
			}
		}
	}
}

// Stop stops the worker after draining the queue
func (et *EventTracker) Stop() {
	et.done <- true
}

// Track accepts one funnel event. Conversions are processed before
// returning; impressions and clicks are queued.
func (et *EventTracker) Track(input events.Input) error {
	switch input.EventType {
	case events.EventImpression, events.EventClick, events.EventConversion:
	default:
		return database.NewValidationErrorWithValue("event_type", "must be impression, click or conversion", input.EventType)
	}
	if input.RecommendedItemID == 0 {
		return database.NewValidationError("recommended_item_id", "must not be zero")
	}

	if input.EventType == events.EventConversion {
		return et.process(input)
	}

	select {
	case et.queue <- input:
	default:
		// Queue full, process inline rather than dropping the event
		return et.process(input)
	}
	return nil
}

// process writes the event and applies its side effects
func (et *EventTracker) process(input events.Input) error {
	event := models.RecommendationEvent{
		ID:                uuid.NewString(),
		TenantID:          input.TenantID,
		SourceItemID:      input.SourceItemID,
		RecommendedItemID: input.RecommendedItemID,
		RecType:           input.RecType,
		EventType:         input.EventType,
		AlgorithmVersion:  input.AlgorithmVersion,
		ExperimentGroup:   input.ExperimentGroup,
		Position:          input.Position,
		Revenue:           input.Revenue,
	}
	if input.OrderID != "" {
		event.OrderID = &input.OrderID
	}
	contextJSON, err := marshalContext(input.Context)
	if err != nil {
		return fmt.Errorf("process: context marshal: %w", err)
	}
	event.Context = contextJSON

	if err := et.eventRepo.Save(&event); err != nil {
		return fmt.Errorf("process: %w", err)
	}

	// Counter updates after the durable write are best effort; the event
	// row is the source of truth and recalculation can catch up
	switch input.EventType {
	case events.EventImpression:
		if input.SourceItemID != nil {
			if err := et.pairRepo.IncrementRecommended(input.TenantID, *input.SourceItemID, input.RecommendedItemID); err != nil {
				log.Printf("⚠️  Impression counter update failed: %v", err)
			}
		}
	case events.EventClick:
		if input.SourceItemID != nil {
			if err := et.pairRepo.IncrementClicked(input.TenantID, *input.SourceItemID, input.RecommendedItemID); err != nil {
				log.Printf("⚠️  Click counter update failed: %v", err)
			}
		}
	case events.EventConversion:
		credited, err := et.pairRepo.CreditConversion(input.TenantID, input.RecommendedItemID, input.Revenue)
		if err != nil {
			log.Printf("⚠️  Conversion credit failed: %v", err)
		} else if credited > 0 {
			log.Printf("💰 Conversion credited to %d pairs (tenant %s, item %d, revenue %s)",
				credited, input.TenantID, input.RecommendedItemID, helpers.FormatMoney(input.Revenue))
		}
		if err := et.abtestRepo.RecordConversion(input.TenantID, input.ExperimentGroup, input.TestID, input.Revenue, time.Now()); err != nil {
			log.Printf("⚠️  A/B conversion attribution failed: %v", err)
		}
	}

	if et.broker != nil {
		et.broker.Broadcast(input.TenantID, "recommendation_event", event)
	}
	return nil
}

// marshalContext encodes the free-form context map. An absent or empty
// map encodes as "{}"; the column is jsonb and Postgres rejects an empty
// string for it.
func marshalContext(contextMap map[string]interface{}) (string, error) {
	if len(contextMap) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(contextMap)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
