package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pastebin-lite/internal/app/model"
	"pastebin-lite/internal/id"
	"pastebin-lite/internal/storage"
)

// memStore is a mutex-guarded in-memory Store with real compare-and-set
// semantics, so contention tests exercise the same code path as a
// production backend.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) SetWithExpiry(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return m.Set(ctx, key, value)
}

func (m *memStore) CompareAndSet(_ context.Context, key string, expected, replacement []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[key]
	if !ok || !bytes.Equal(cur, expected) {
		return false, nil
	}
	m.data[key] = append([]byte(nil), replacement...)
	return true, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

// mockStore lets individual tests script store behaviour per call.
type mockStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte) error
	setExpFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	casFn    func(ctx context.Context, key string, expected, replacement []byte) (bool, error)
	deleteFn func(ctx context.Context, key string) error
	pingFn   func(ctx context.Context) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, storage.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setExpFn != nil {
		return m.setExpFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) CompareAndSet(ctx context.Context, key string, expected, replacement []byte) (bool, error) {
	if m.casFn != nil {
		return m.casFn(ctx, key, expected, replacement)
	}
	return true, nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

func i64(v int64) *int64 { return &v }

func TestPasteService_CreateAndPreviewRoundTrip(t *testing.T) {
	st := newMemStore()
	base := time.UnixMilli(1_700_000_000_000)
	svc := NewPasteService(st, id.New(0), nil, func() time.Time { return base })

	pasteID, err := svc.CreatePaste(context.Background(), CreatePasteInput{
		Content:    "hello world",
		TTLSeconds: i64(60),
		MaxViews:   i64(3),
	})
	if err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}
	if pasteID == "" {
		t.Fatal("expected a non-empty paste id")
	}

	preview, err := svc.PreviewRead(context.Background(), pasteID)
	if err != nil {
		t.Fatalf("PreviewRead returned error: %v", err)
	}
	if preview.Content != "hello world" {
		t.Fatalf("expected content round-trip, got %q", preview.Content)
	}

	raw, err := st.Get(context.Background(), model.PasteKey(pasteID))
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	var stored model.Paste
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("stored record does not decode: %v", err)
	}
	if stored.ViewCount != 0 {
		t.Fatalf("preview must not touch view_count, got %d", stored.ViewCount)
	}
	if stored.CreatedAt != base.UnixMilli() {
		t.Fatalf("expected created_at %d, got %d", base.UnixMilli(), stored.CreatedAt)
	}
}

func TestPasteService_CreatePaste_Validation(t *testing.T) {
	svc := NewPasteService(newMemStore(), id.New(0), nil, nil)

	cases := []struct {
		name  string
		input CreatePasteInput
	}{
		{"empty content", CreatePasteInput{Content: ""}},
		{"zero ttl", CreatePasteInput{Content: "x", TTLSeconds: i64(0)}},
		{"negative ttl", CreatePasteInput{Content: "x", TTLSeconds: i64(-5)}},
		{"zero max views", CreatePasteInput{Content: "x", MaxViews: i64(0)}},
		{"negative max views", CreatePasteInput{Content: "x", MaxViews: i64(-1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePaste(context.Background(), tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPasteService_CreatePaste_StoreTTL(t *testing.T) {
	var gotTTL time.Duration
	setCalled := false
	st := &mockStore{
		setExpFn: func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
			gotTTL = ttl
			return nil
		},
		setFn: func(context.Context, string, []byte) error {
			setCalled = true
			return nil
		},
	}
	svc := NewPasteService(st, id.New(0), nil, nil)

	if _, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "x", TTLSeconds: i64(90)}); err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}
	if gotTTL != 90*time.Second {
		t.Fatalf("expected store ttl 90s, got %v", gotTTL)
	}
	if setCalled {
		t.Fatal("expected SetWithExpiry, not Set, for a paste with a ttl")
	}

	if _, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "x"}); err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}
	if !setCalled {
		t.Fatal("expected Set for a paste without a ttl")
	}
}

func TestPasteService_ViewLimitExhaustion(t *testing.T) {
	st := newMemStore()
	svc := NewPasteService(st, id.New(0), nil, nil)

	pasteID, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "limited", MaxViews: i64(2)})
	if err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}

	first, err := svc.ConsumingRead(context.Background(), pasteID)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if first.RemainingViews == nil || *first.RemainingViews != 1 {
		t.Fatalf("expected remaining 1 after first read, got %v", first.RemainingViews)
	}

	second, err := svc.ConsumingRead(context.Background(), pasteID)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if second.RemainingViews == nil || *second.RemainingViews != 0 {
		t.Fatalf("expected remaining 0 after second read, got %v", second.RemainingViews)
	}

	if _, err := svc.ConsumingRead(context.Background(), pasteID); !errors.Is(err, ErrPasteNotFound) {
		t.Fatalf("expected ErrPasteNotFound on third read, got %v", err)
	}

	// Exhausted pastes stay in the store until the backend evicts them.
	if _, err := st.Get(context.Background(), model.PasteKey(pasteID)); err != nil {
		t.Fatalf("exhausted paste should remain stored, got %v", err)
	}
}

func TestPasteService_TTLExpiryBoundary(t *testing.T) {
	st := newMemStore()
	base := time.UnixMilli(1_700_000_000_000)
	now := base
	svc := NewPasteService(st, id.New(0), nil, func() time.Time { return now })

	pasteID, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "ticking", TTLSeconds: i64(10)})
	if err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}

	now = base.Add(9999 * time.Millisecond)
	view, err := svc.ConsumingRead(context.Background(), pasteID)
	if err != nil {
		t.Fatalf("read 1ms before expiry failed: %v", err)
	}
	wantExpiry := base.Add(10 * time.Second).UTC()
	if view.ExpiresAt == nil || !view.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expires_at %v, got %v", wantExpiry, view.ExpiresAt)
	}

	now = base.Add(10000 * time.Millisecond)
	if _, err := svc.ConsumingRead(context.Background(), pasteID); !errors.Is(err, ErrPasteNotFound) {
		t.Fatalf("expected ErrPasteNotFound at expiry instant, got %v", err)
	}

	// Detected expiry deletes the record.
	if _, err := st.Get(context.Background(), model.PasteKey(pasteID)); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("expected record deleted after expiry, got %v", err)
	}

	if _, err := svc.ConsumingRead(context.Background(), pasteID); !errors.Is(err, ErrPasteNotFound) {
		t.Fatalf("expected ErrPasteNotFound to stay stable, got %v", err)
	}
}

func TestPasteService_UnlimitedReads(t *testing.T) {
	svc := NewPasteService(newMemStore(), id.New(0), nil, nil)

	pasteID, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "forever"})
	if err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}

	for i := 0; i < 50; i++ {
		view, err := svc.ConsumingRead(context.Background(), pasteID)
		if err != nil {
			t.Fatalf("read %d failed: %v", i+1, err)
		}
		if view.RemainingViews != nil {
			t.Fatalf("read %d: expected no remaining_views without a limit, got %d", i+1, *view.RemainingViews)
		}
		if view.ExpiresAt != nil {
			t.Fatalf("read %d: expected no expires_at without a ttl, got %v", i+1, view.ExpiresAt)
		}
	}
}

func TestPasteService_PreviewNeverConsumes(t *testing.T) {
	svc := NewPasteService(newMemStore(), id.New(0), nil, nil)

	pasteID, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "once", MaxViews: i64(1)})
	if err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}

	for i := 0; i < 10; i++ {
		if _, err := svc.PreviewRead(context.Background(), pasteID); err != nil {
			t.Fatalf("preview %d failed: %v", i+1, err)
		}
	}

	if _, err := svc.ConsumingRead(context.Background(), pasteID); err != nil {
		t.Fatalf("consuming read after previews failed: %v", err)
	}
	if _, err := svc.ConsumingRead(context.Background(), pasteID); !errors.Is(err, ErrPasteNotFound) {
		t.Fatalf("expected exhaustion after single view, got %v", err)
	}

	// Preview of an exhausted paste collapses to not found as well.
	if _, err := svc.PreviewRead(context.Background(), pasteID); !errors.Is(err, ErrPasteNotFound) {
		t.Fatalf("expected ErrPasteNotFound on exhausted preview, got %v", err)
	}
}

func TestPasteService_ConcurrentExhaustion(t *testing.T) {
	svc := NewPasteService(newMemStore(), id.New(0), nil, nil)

	pasteID, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "race", MaxViews: i64(1)})
	if err != nil {
		t.Fatalf("CreatePaste returned error: %v", err)
	}

	const readers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)

	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.ConsumingRead(context.Background(), pasteID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrPasteNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful read, got %d", successes)
	}
	if notFound != readers-1 {
		t.Fatalf("expected %d not-found results, got %d", readers-1, notFound)
	}
}

func TestPasteService_NotFoundForUnknownID(t *testing.T) {
	svc := NewPasteService(newMemStore(), id.New(0), nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.ConsumingRead(context.Background(), "missing"); !errors.Is(err, ErrPasteNotFound) {
			t.Fatalf("expected ErrPasteNotFound, got %v", err)
		}
		if _, err := svc.PreviewRead(context.Background(), "missing"); !errors.Is(err, ErrPasteNotFound) {
			t.Fatalf("expected ErrPasteNotFound, got %v", err)
		}
	}
}

func TestPasteService_StoreFailuresSurfaceAsUnavailable(t *testing.T) {
	boom := errors.New("connection refused")

	svc := NewPasteService(&mockStore{
		setFn: func(context.Context, string, []byte) error { return boom },
	}, id.New(0), nil, nil)
	if _, err := svc.CreatePaste(context.Background(), CreatePasteInput{Content: "x"}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on create, got %v", err)
	}

	svc = NewPasteService(&mockStore{
		getFn: func(context.Context, string) ([]byte, error) { return nil, boom },
	}, id.New(0), nil, nil)
	if _, err := svc.ConsumingRead(context.Background(), "abc"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on read, got %v", err)
	}

	svc = NewPasteService(&mockStore{
		pingFn: func(context.Context) error { return boom },
	}, id.New(0), nil, nil)
	if err := svc.Health(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable from health check, got %v", err)
	}
}

func TestPasteService_RetriesLostSwap(t *testing.T) {
	record, _ := json.Marshal(&model.Paste{Content: "contended", CreatedAt: 1})
	casCalls := 0
	st := &mockStore{
		getFn: func(context.Context, string) ([]byte, error) {
			return append([]byte(nil), record...), nil
		},
		casFn: func(context.Context, string, []byte, []byte) (bool, error) {
			casCalls++
			return casCalls > 1, nil
		},
	}
	svc := NewPasteService(st, id.New(0), nil, nil)

	view, err := svc.ConsumingRead(context.Background(), "abc")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if view.Content != "contended" {
		t.Fatalf("unexpected content %q", view.Content)
	}
	if casCalls != 2 {
		t.Fatalf("expected 2 compare-and-set attempts, got %d", casCalls)
	}
}

func TestPasteService_GivesUpUnderContention(t *testing.T) {
	record, _ := json.Marshal(&model.Paste{Content: "hot", CreatedAt: 1})
	getCalls := 0
	st := &mockStore{
		getFn: func(context.Context, string) ([]byte, error) {
			getCalls++
			return append([]byte(nil), record...), nil
		},
		casFn: func(context.Context, string, []byte, []byte) (bool, error) {
			return false, nil
		},
	}
	svc := NewPasteService(st, id.New(0), nil, nil)

	_, err := svc.ConsumingRead(context.Background(), "abc")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable after retry budget, got %v", err)
	}
	if getCalls != casAttempts {
		t.Fatalf("expected %d reads, got %d", casAttempts, getCalls)
	}
}
