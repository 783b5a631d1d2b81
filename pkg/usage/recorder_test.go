package usage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgechat/edgechat/pkg/observability"
	"github.com/edgechat/edgechat/pkg/storage"
)

func newTestRecorder(store storage.UsageStore) *Recorder {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewRecorder(store, logger, observability.NewMetrics(nil))
}

func TestRecorder_WritesRecords(t *testing.T) {
	store := storage.NewMemoryUsageStore()
	recorder := newTestRecorder(store)

	recorder.Record(1, "/api/v1/auth/me", "GET")
	recorder.Record(1, "/api/v1/ai/chat", "POST")
	recorder.Record(2, "/api/v1/auth/me", "GET")

	require.NoError(t, recorder.Close(2*time.Second))

	records := store.Records()
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].SubjectID)
	assert.Equal(t, "/api/v1/auth/me", records[0].Path)
	assert.Equal(t, "GET", records[0].Method)
	assert.False(t, records[0].Timestamp.IsZero())
}

type failingUsageStore struct{}

func (failingUsageStore) Append(ctx context.Context, record storage.UsageRecord) error {
	return errors.New("usage table unavailable")
}

func (failingUsageStore) Stats(ctx context.Context, subjectID int64, now time.Time) (storage.UsageStats, error) {
	return storage.UsageStats{}, errors.New("usage table unavailable")
}

func TestRecorder_SwallowsWriteFailures(t *testing.T) {
	recorder := newTestRecorder(failingUsageStore{})

	// Must not panic, block, or surface the store error.
	recorder.Record(1, "/x", "GET")
	require.NoError(t, recorder.Close(2*time.Second))
}

func TestRecorder_RecordAfterCloseIsSafe(t *testing.T) {
	store := storage.NewMemoryUsageStore()
	recorder := newTestRecorder(store)
	require.NoError(t, recorder.Close(time.Second))

	recorder.Record(1, "/x", "GET")
	assert.Empty(t, store.Records())
}

func TestRecorder_Stats(t *testing.T) {
	store := storage.NewMemoryUsageStore()
	recorder := newTestRecorder(store)
	defer recorder.Close(time.Second)

	recorder.Record(7, "/a", "GET")
	require.Eventually(t, func() bool {
		return len(store.Records()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	stats, err := recorder.Stats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalRequests)
}
