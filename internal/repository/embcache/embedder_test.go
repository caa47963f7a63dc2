package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/db"
	"github.com/kailas-cloud/talentrank/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type memStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5, -1}, TotalTokens: 3}}
	st := newMemStore()
	counter := newCounter()
	ce := New(inner, st, "m1", time.Hour, counter, zap.NewNop())

	first, err := ce.Embed(context.Background(), "postgres")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 3 {
		t.Errorf("miss should report provider usage, got %d", first.TotalTokens)
	}

	second, err := ce.Embed(context.Background(), "postgres")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if second.TotalTokens != 0 || second.Embedding[1] != -1 {
		t.Errorf("hit = %+v", second)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v", got)
	}
	for _, ttl := range st.ttls {
		if ttl != time.Hour {
			t.Errorf("ttl = %v", ttl)
		}
	}
}

func TestEmbed_ModelIsPartOfKey(t *testing.T) {
	st := newMemStore()
	a := New(&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}, st, "a", 0, nil, zap.NewNop())
	b := New(&mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{2}}}, st, "b", 0, nil, zap.NewNop())

	if a.cacheKey("go") == b.cacheKey("go") {
		t.Fatal("keys for different models must differ")
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	ce := New(inner, newMemStore(), "m", 0, nil, zap.NewNop())

	_, err := ce.Embed(context.Background(), "go")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestEmbed_StoreFailuresDegradeToProvider(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	st := newMemStore()
	st.getErr = errors.New("conn reset")
	st.setErr = errors.New("conn reset")
	ce := New(inner, st, "m", 0, nil, zap.NewNop())

	res, err := ce.Embed(context.Background(), "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 {
		t.Errorf("embedding = %v", res.Embedding)
	}
}

func TestDecode_Corrupt(t *testing.T) {
	if _, err := decode([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for odd length")
	}
	if _, err := decode(nil); err == nil {
		t.Error("expected error for empty payload")
	}
	vec, err := decode(encode([]float32{3.5}))
	if err != nil || vec[0] != 3.5 {
		t.Errorf("decode(encode) = %v, %v", vec, err)
	}
}
