// Package pipeline implements the per-event enrichment flow: resolve the
// nearest shop, gate on distance, look up the user profile, generate (or
// reuse) a personalized notification, probabilistically simulate a shop
// visit and write the enriched record to the analytics sink.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/AlphaCodeSWE/NearYou/internal/cache"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/event"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/position"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/profile"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/shop"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/visit"
	"github.com/AlphaCodeSWE/NearYou/internal/metrics"
)

// ShopResolver answers nearest-neighbor queries against the shop store.
type ShopResolver interface {
	Nearest(ctx context.Context, lat, lon float64) (shop.Match, error)
}

// ProfileStore fetches user demographics.
type ProfileStore interface {
	Get(ctx context.Context, userID int) (profile.Profile, error)
}

// Generator produces a notification text for a (user, shop) pair.
type Generator interface {
	Generate(ctx context.Context, p profile.Profile, m shop.Match) (string, error)
}

// EventSink persists enriched events.
type EventSink interface {
	Insert(ctx context.Context, e event.Enriched) error
}

// VisitSink persists simulated visits.
type VisitSink interface {
	Insert(ctx context.Context, v visit.Visit) error
}

// Publisher pushes notified events downstream. Optional.
type Publisher interface {
	SendMessage(ctx context.Context, key, value []byte) error
}

type Options struct {
	MaxPOIDistance float64
	QueryTimeout   time.Duration
	// Rand seeds the visit simulation. Nil uses a time-seeded source.
	Rand *rand.Rand
	// Publisher, when non-nil, receives every event that carries a
	// notification.
	Publisher Publisher
}

// Pipeline owns the enrichment flow for one worker. It is not safe for
// concurrent use: each partition worker holds its own instance, which is
// what guarantees per-user cache access stays single-threaded.
type Pipeline struct {
	shops     ShopResolver
	profiles  ProfileStore
	generator Generator
	store     cache.Store
	events    EventSink
	visits    VisitSink
	publisher Publisher
	bus       *metrics.Bus
	logger    *slog.Logger

	maxDistance  float64
	queryTimeout time.Duration
	rng          *rand.Rand
}

func New(
	shops ShopResolver,
	profiles ProfileStore,
	generator Generator,
	store cache.Store,
	events EventSink,
	visits VisitSink,
	bus *metrics.Bus,
	logger *slog.Logger,
	opts Options,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Pipeline{
		shops:        shops,
		profiles:     profiles,
		generator:    generator,
		store:        store,
		events:       events,
		visits:       visits,
		publisher:    opts.Publisher,
		bus:          bus,
		logger:       logger,
		maxDistance:  opts.MaxPOIDistance,
		queryTimeout: timeout,
		rng:          rng,
	}
}

// Process runs one position event through the full flow and returns the
// enriched record that was handed to the sink. Failures of individual
// steps degrade the record (no shop, no notification, no visit) but
// never propagate: one bad event must not stall its partition.
//
// Re-processing the same event yields identical content except Visited,
// which is a Bernoulli draw. Accepted non-determinism under at-least-once
// delivery.
func (p *Pipeline) Process(ctx context.Context, pos position.Event) event.Enriched {
	eventID := fmt.Sprintf("%d:%d", pos.UserID, pos.Offset)
	p.bus.Record(metrics.ProcessingStart, map[string]any{"event_id": eventID})
	defer func() {
		p.bus.Record(metrics.ProcessingEnd, map[string]any{"event_id": eventID})
		p.bus.Record(metrics.EventProcessed, map[string]any{"user_id": pos.UserID})
	}()

	enriched := event.FromPosition(pos)

	match, ok := p.resolveShop(ctx, pos)
	if !ok {
		p.sink(ctx, enriched)
		return enriched
	}
	enriched.AttachShop(match)

	if match.DistanceMeters > p.maxDistance {
		// Too far for a notification; the bare event still lands in
		// the sink for the movement history.
		p.sink(ctx, enriched)
		return enriched
	}

	prof, ok := p.lookupProfile(ctx, pos.UserID)
	if ok {
		enriched.NotificationText = p.generate(ctx, prof, match)
	}

	if enriched.NotificationText != "" {
		enriched.Visited = p.simulateVisit(ctx, prof, match, enriched.NotificationText)
	}

	p.sink(ctx, enriched)
	p.publish(ctx, enriched)
	return enriched
}

func (p *Pipeline) resolveShop(ctx context.Context, pos position.Event) (shop.Match, bool) {
	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	match, err := p.shops.Nearest(qctx, pos.Latitude, pos.Longitude)
	if err != nil {
		if errors.Is(err, shop.ErrNoShops) {
			p.logger.Warn("no shop found", "user_id", pos.UserID)
		} else {
			p.logger.Error("nearest shop query failed", "user_id", pos.UserID, "error", err)
			p.bus.Record(metrics.Error, map[string]any{"step": "resolve_shop", "error": err.Error()})
		}
		return shop.Match{}, false
	}

	p.bus.Record(metrics.ShopFound, map[string]any{
		"shop_id": match.ShopID, "distance": match.DistanceMeters,
	})
	return match, true
}

func (p *Pipeline) lookupProfile(ctx context.Context, userID int) (profile.Profile, bool) {
	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	prof, err := p.profiles.Get(qctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			p.logger.Warn("unknown user, skipping enrichment", "user_id", userID)
		} else {
			p.logger.Error("profile lookup failed", "user_id", userID, "error", err)
			p.bus.Record(metrics.Error, map[string]any{"step": "profile", "error": err.Error()})
		}
		return profile.Profile{}, false
	}
	return prof, true
}

// generate returns the notification text for the pair, consulting the
// dedup cache first. A generation failure degrades to empty text and is
// never cached.
func (p *Pipeline) generate(ctx context.Context, prof profile.Profile, match shop.Match) string {
	if text, ok := p.store.Get(ctx, prof.UserID, match.ShopID); ok {
		p.bus.Record(metrics.CacheHit, map[string]any{"user_id": prof.UserID, "shop_id": match.ShopID})
		return text
	}
	p.bus.Record(metrics.CacheMiss, map[string]any{"user_id": prof.UserID, "shop_id": match.ShopID})

	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	text, err := p.generator.Generate(qctx, prof, match)
	if err != nil {
		p.logger.Error("message generation failed", "user_id", prof.UserID, "shop_id", match.ShopID, "error", err)
		p.bus.Record(metrics.Error, map[string]any{"step": "generate", "error": err.Error()})
		return ""
	}

	text = sanitize(text, match.Name)
	p.store.Set(ctx, prof.UserID, match.ShopID, text)
	p.bus.Record(metrics.MessageGenerated, map[string]any{"user_id": prof.UserID, "shop_id": match.ShopID})
	return text
}

// simulateVisit decides whether the notification converts into a visit
// and, if so, records one. The write is fire-and-forget: a sink failure
// is logged but the decision stands.
func (p *Pipeline) simulateVisit(ctx context.Context, prof profile.Profile, match shop.Match, text string) bool {
	if !shouldVisit(prof, match, text, p.rng) {
		return false
	}

	v := synthesizeVisit(prof, match, time.Now(), p.rng)

	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	if err := p.visits.Insert(qctx, v); err != nil {
		p.logger.Error("failed to record simulated visit", "visit_id", v.VisitID, "error", err)
		p.bus.Record(metrics.Error, map[string]any{"step": "visit", "error": err.Error()})
		return true
	}

	p.bus.Record(metrics.VisitSimulated, map[string]any{
		"user_id": v.UserID, "shop_id": v.ShopID,
		"duration_minutes": v.DurationMinutes, "estimated_spending": v.EstimatedSpending,
	})
	p.logger.Info("simulated visit recorded",
		"user_id", v.UserID, "shop", v.ShopName,
		"duration_minutes", v.DurationMinutes, "estimated_spending", v.EstimatedSpending)
	return true
}

func (p *Pipeline) sink(ctx context.Context, e event.Enriched) {
	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	if err := p.events.Insert(qctx, e); err != nil {
		// Not retried here: redelivery is the stream runtime's job.
		p.logger.Error("sink write failed", "event_id", e.EventID, "user_id", e.UserID, "error", err)
		p.bus.Record(metrics.Error, map[string]any{"step": "sink", "error": err.Error()})
	}
}

// publish pushes notified events to the downstream topic, best effort.
func (p *Pipeline) publish(ctx context.Context, e event.Enriched) {
	if p.publisher == nil || e.NotificationText == "" {
		return
	}

	value, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("failed to marshal enriched event", "event_id", e.EventID, "error", err)
		return
	}

	qctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	if err := p.publisher.SendMessage(qctx, []byte(fmt.Sprintf("%d", e.UserID)), value); err != nil {
		p.logger.Error("failed to publish notification", "event_id", e.EventID, "error", err)
		p.bus.Record(metrics.Error, map[string]any{"step": "publish", "error": err.Error()})
	}
}
