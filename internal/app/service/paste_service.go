package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pastebin-lite/internal/app/model"
	"pastebin-lite/internal/id"
	infraprometheus "pastebin-lite/internal/infra/prometheus"
	"pastebin-lite/internal/storage"
)

// casAttempts bounds how many times a consuming read retries a
// conditional update that lost to a concurrent writer on the same key.
const casAttempts = 5

// PasteService defines behaviour-level operations on pastes.
type PasteService interface {
	// CreatePaste stores a new paste and returns its identifier.
	CreatePaste(ctx context.Context, input CreatePasteInput) (string, error)

	// ConsumingRead returns the paste content and spends one view. It
	// fails with ErrPasteNotFound once the paste is absent, expired or
	// out of views.
	ConsumingRead(ctx context.Context, pasteID string) (*PasteView, error)

	// PreviewRead returns the paste content without spending a view.
	PreviewRead(ctx context.Context, pasteID string) (*PastePreview, error)

	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) error
}

type pasteService struct {
	store  storage.Store
	ids    *id.Generator
	events *EventPublisher
	now    func() time.Time
}

// NewPasteService returns a service implementation backed by the given
// store. A nil events publisher disables event emission; a nil clock
// falls back to time.Now.
func NewPasteService(store storage.Store, ids *id.Generator, events *EventPublisher, clock func() time.Time) PasteService {
	if clock == nil {
		clock = time.Now
	}
	return &pasteService{
		store:  store,
		ids:    ids,
		events: events,
		now:    clock,
	}
}

// CreatePasteInput captures data required to create a paste.
type CreatePasteInput struct {
	Content    string
	TTLSeconds *int64
	MaxViews   *int64
}

// PasteView is the payload of a consuming read. RemainingViews and
// ExpiresAt are nil for pastes without the corresponding limit.
type PasteView struct {
	Content        string
	RemainingViews *int64
	ExpiresAt      *time.Time
}

// PastePreview is the payload of a non-consuming read.
type PastePreview struct {
	Content string
}

func (s *pasteService) CreatePaste(ctx context.Context, input CreatePasteInput) (string, error) {
	if input.Content == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if input.TTLSeconds != nil && *input.TTLSeconds <= 0 {
		return "", fmt.Errorf("%w: ttl_seconds must be a positive integer", ErrInvalidInput)
	}
	if input.MaxViews != nil && *input.MaxViews <= 0 {
		return "", fmt.Errorf("%w: max_views must be a positive integer", ErrInvalidInput)
	}

	pasteID, err := s.ids.Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("generate paste id: %w", err)
	}

	paste := model.Paste{
		Content:    input.Content,
		CreatedAt:  s.now().UnixMilli(),
		TTLSeconds: input.TTLSeconds,
		MaxViews:   input.MaxViews,
	}
	data, err := json.Marshal(&paste)
	if err != nil {
		return "", fmt.Errorf("encode paste: %w", err)
	}

	key := model.PasteKey(pasteID)
	if input.TTLSeconds != nil {
		err = s.store.SetWithExpiry(ctx, key, data, time.Duration(*input.TTLSeconds)*time.Second)
	} else {
		err = s.store.Set(ctx, key, data)
	}
	if err != nil {
		infraprometheus.StoreErrors.Inc()
		return "", fmt.Errorf("save paste: %w: %w", ErrStoreUnavailable, err)
	}

	infraprometheus.PastesCreated.Inc()
	s.publish(model.EventCreated, pasteID)
	return pasteID, nil
}

func (s *pasteService) ConsumingRead(ctx context.Context, pasteID string) (*PasteView, error) {
	key := model.PasteKey(pasteID)

	for attempt := 0; attempt < casAttempts; attempt++ {
		raw, paste, err := s.load(ctx, key)
		if err != nil {
			return nil, err
		}

		if paste.ExpiredAt(s.now().UnixMilli()) {
			// Best effort: the store's own TTL eviction handles stragglers.
			_ = s.store.Delete(ctx, key)
			s.publish(model.EventExpired, pasteID)
			infraprometheus.PastesNotFound.Inc()
			return nil, ErrPasteNotFound
		}
		if paste.Exhausted() {
			// Left dormant; store-level TTL or eviction reclaims it.
			infraprometheus.PastesNotFound.Inc()
			return nil, ErrPasteNotFound
		}

		updated := *paste
		updated.ViewCount++
		data, err := json.Marshal(&updated)
		if err != nil {
			return nil, fmt.Errorf("encode paste: %w", err)
		}

		swapped, err := s.store.CompareAndSet(ctx, key, raw, data)
		if err != nil {
			infraprometheus.StoreErrors.Inc()
			return nil, fmt.Errorf("update view count: %w: %w", ErrStoreUnavailable, err)
		}
		if !swapped {
			// Lost to a concurrent reader; re-read and re-check the limits.
			continue
		}

		infraprometheus.PasteViews.Inc()
		s.publish(model.EventViewed, pasteID)
		if updated.Exhausted() {
			s.publish(model.EventExhausted, pasteID)
		}
		return &PasteView{
			Content:        updated.Content,
			RemainingViews: updated.RemainingViews(),
			ExpiresAt:      updated.ExpiresAt(),
		}, nil
	}

	infraprometheus.StoreErrors.Inc()
	return nil, fmt.Errorf("update view count: %w: too much contention on paste %s", ErrStoreUnavailable, pasteID)
}

func (s *pasteService) PreviewRead(ctx context.Context, pasteID string) (*PastePreview, error) {
	_, paste, err := s.load(ctx, model.PasteKey(pasteID))
	if err != nil {
		return nil, err
	}

	if paste.ExpiredAt(s.now().UnixMilli()) || paste.Exhausted() {
		infraprometheus.PastesNotFound.Inc()
		return nil, ErrPasteNotFound
	}

	return &PastePreview{Content: paste.Content}, nil
}

func (s *pasteService) Health(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// load fetches and decodes the record at key, returning the raw bytes
// for use as the compare-and-set token.
func (s *pasteService) load(ctx context.Context, key string) ([]byte, *model.Paste, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			infraprometheus.PastesNotFound.Inc()
			return nil, nil, ErrPasteNotFound
		}
		infraprometheus.StoreErrors.Inc()
		return nil, nil, fmt.Errorf("load paste: %w: %w", ErrStoreUnavailable, err)
	}

	var paste model.Paste
	if err := json.Unmarshal(raw, &paste); err != nil {
		return nil, nil, fmt.Errorf("decode paste: %w", err)
	}
	return raw, &paste, nil
}

func (s *pasteService) publish(kind, pasteID string) {
	if s.events == nil {
		return
	}
	s.events.PublishAsync(kind, pasteID)
}
