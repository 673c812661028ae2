package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/psdplots/plot-catalog-service/internal/archive"
	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/psdplots/plot-catalog-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type recordingCache struct {
	mu      sync.Mutex
	present map[string]bool
	dropped []string
}

func (c *recordingCache) Invalidate(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped = append(c.dropped, path)
	if c.present[path] {
		delete(c.present, path)
		return true
	}
	return false
}

func (c *recordingCache) droppedPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.dropped...)
}

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	errs      []error
	committed []kafkago.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		r.mu.Unlock()
		return kafkago.Message{}, err
	}
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func (r *fakeReader) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  kafkago.Message
		want domain.NodeRef
	}{
		{"network key", kafkago.Message{Key: []byte("HL")}, domain.NodeRef{Network: "HL"}},
		{"station key", kafkago.Message{Key: []byte("HL.ATH")}, domain.NodeRef{Network: "HL", Station: "ATH"}},
		{"channel key", kafkago.Message{Key: []byte("HL.ATH.HHZ")}, domain.NodeRef{Network: "HL", Station: "ATH", Channel: "HHZ"}},
		{
			"json value wins over key",
			kafkago.Message{Key: []byte("ignored"), Value: []byte(`{"network":"HT","station":"THE"}`)},
			domain.NodeRef{Network: "HT", Station: "THE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMessage(tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		msg  kafkago.Message
	}{
		{"empty key and value", kafkago.Message{}},
		{"too many components", kafkago.Message{Key: []byte("HL.ATH.HHZ.week")}},
		{"traversal in key", kafkago.Message{Key: []byte("..")}},
		{"malformed json", kafkago.Message{Value: []byte(`{"network":`)}},
		{"skipped level", kafkago.Message{Value: []byte(`{"network":"HL","channel":"HHZ"}`)}},
		{"traversal in json", kafkago.Message{Value: []byte(`{"network":".."}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMessage(tt.msg)
			assert.Error(t, err)
		})
	}
}

func TestHandle_InvalidatesNodeAndAncestors(t *testing.T) {
	a := archive.New("/plots")
	cache := &recordingCache{present: map[string]bool{
		"/plots/HL":         true,
		"/plots/HL/ATH":     true,
		"/plots/HL/ATH/HHZ": true,
		"/plots/HT":         true,
	}}
	l := newListener(&fakeReader{}, cache, a, discardLogger(), observability.NewMetricsForTesting())

	dropped := l.handle(kafkago.Message{Key: []byte("HL.ATH.HHZ")})

	assert.Equal(t, 3, dropped)
	assert.Equal(t, []string{"/plots/HL", "/plots/HL/ATH", "/plots/HL/ATH/HHZ"}, cache.droppedPaths())
	assert.True(t, cache.present["/plots/HT"], "unrelated networks stay cached")
}

func TestHandle_BadMessageIsSkipped(t *testing.T) {
	cache := &recordingCache{}
	l := newListener(&fakeReader{}, cache, archive.New("/plots"), discardLogger(), observability.NewMetricsForTesting())

	assert.Zero(t, l.handle(kafkago.Message{Value: []byte("not json")}))
	assert.Empty(t, cache.droppedPaths())
}

func TestRun_ConsumesAndCommits(t *testing.T) {
	reader := &fakeReader{msgs: []kafkago.Message{
		{Key: []byte("HL.ATH")},
		{Value: []byte("garbage")},
	}}
	cache := &recordingCache{present: map[string]bool{}}
	l := newListener(reader, cache, archive.New("/plots"), discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.committedCount() == 2 }, 2*time.Second, 5*time.Millisecond,
		"bad messages are committed too so they are not redelivered")
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"/plots/HL", "/plots/HL/ATH"}, cache.droppedPaths())
}

func TestRun_RetriesFetchErrors(t *testing.T) {
	reader := &fakeReader{
		errs: []error{errors.New("broker unavailable")},
		msgs: []kafkago.Message{{Key: []byte("HT")}},
	}
	l := newListener(reader, &recordingCache{}, archive.New("/plots"), discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.committedCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRun_StopsOnCancel(t *testing.T) {
	l := newListener(&fakeReader{}, &recordingCache{}, archive.New("/plots"), discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Run(ctx))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 400*time.Millisecond, nextBackoff(200*time.Millisecond, 5*time.Second))
	assert.Equal(t, 5*time.Second, nextBackoff(4*time.Second, 5*time.Second))
}
