package lastfm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/state"
)

type fakeAPI struct {
	mu         sync.Mutex
	nowPlaying []ScrobbleTrack
	scrobbles  []ScrobbleTrack
	err        error
}

func (f *fakeAPI) UpdateNowPlaying(track ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nowPlaying = append(f.nowPlaying, track)
	return f.err
}

func (f *fakeAPI) Scrobble(track ScrobbleTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scrobbles = append(f.scrobbles, track)
	return nil
}

var started = time.Date(2026, 4, 2, 21, 0, 0, 0, time.UTC)

func song(runTime time.Duration) *media.Item {
	return &media.Item{
		ID:      uuid.MustParse("5d1e9a40-3f1c-4b7a-9c1e-000000000001"),
		Name:    "Blue Train",
		Kind:    media.KindAudio,
		Artist:  "John Coltrane",
		Album:   "Blue Train",
		RunTime: runTime,
	}
}

func newTestReporter(api *fakeAPI, pending PendingStore) *Reporter {
	logger, _ := logtest.NewNullLogger()
	r := NewReporter(api, pending, logger)
	r.now = func() time.Time { return started }
	return r
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     time.Duration
		ok       bool
	}{
		{"too short", 29 * time.Second, 0, false},
		{"half of a short track", 3 * time.Minute, 90 * time.Second, true},
		{"capped at four minutes", 20 * time.Minute, 4 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := threshold(tt.duration)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReporter_NowPlayingThenScrobbleOnce(t *testing.T) {
	api := &fakeAPI{}
	r := newTestReporter(api, nil)
	item := song(6 * time.Minute)
	ctx := context.Background()

	require.NoError(t, r.ReportStart(ctx, item, nil, media.ToTicks(0)))
	require.Len(t, api.nowPlaying, 1)
	assert.Equal(t, "John Coltrane", api.nowPlaying[0].Artist)
	assert.Equal(t, started, api.nowPlaying[0].Timestamp)

	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(time.Minute), false))
	assert.Empty(t, api.scrobbles)

	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(3*time.Minute), false))
	require.Len(t, api.scrobbles, 1)

	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(4*time.Minute), false))
	require.NoError(t, r.ReportStopped(ctx, item, nil, media.ToTicks(5*time.Minute)))
	assert.Len(t, api.scrobbles, 1, "a listen is scrobbled once")
}

func TestReporter_PausedProgressDoesNotScrobble(t *testing.T) {
	api := &fakeAPI{}
	r := newTestReporter(api, nil)
	item := song(4 * time.Minute)
	ctx := context.Background()

	require.NoError(t, r.ReportStart(ctx, item, nil, 0))
	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(3*time.Minute), true))
	assert.Empty(t, api.scrobbles)

	require.NoError(t, r.ReportStopped(ctx, item, nil, media.ToTicks(3*time.Minute)))
	assert.Len(t, api.scrobbles, 1, "stop past the threshold scrobbles")
}

func TestReporter_StoppedEarly(t *testing.T) {
	api := &fakeAPI{}
	r := newTestReporter(api, nil)
	item := song(10 * time.Minute)
	ctx := context.Background()

	require.NoError(t, r.ReportStart(ctx, item, nil, 0))
	require.NoError(t, r.ReportStopped(ctx, item, nil, media.ToTicks(time.Minute)))
	assert.Empty(t, api.scrobbles)

	// later reports for the stopped item are ignored
	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(8*time.Minute), false))
	assert.Empty(t, api.scrobbles)
}

func TestReporter_ResumeMidTrackBackdatesStart(t *testing.T) {
	api := &fakeAPI{}
	r := newTestReporter(api, nil)

	require.NoError(t, r.ReportStart(context.Background(), song(5*time.Minute), nil, media.ToTicks(2*time.Minute)))
	require.Len(t, api.nowPlaying, 1)
	assert.Equal(t, started.Add(-2*time.Minute), api.nowPlaying[0].Timestamp)
}

func TestReporter_RestartSameItemKeepsState(t *testing.T) {
	api := &fakeAPI{}
	r := newTestReporter(api, nil)
	item := song(4 * time.Minute)
	ctx := context.Background()

	require.NoError(t, r.ReportStart(ctx, item, nil, 0))
	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(2*time.Minute), false))
	require.NoError(t, r.ReportStart(ctx, item, nil, media.ToTicks(2*time.Minute)))
	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(3*time.Minute), false))

	assert.Len(t, api.nowPlaying, 1)
	assert.Len(t, api.scrobbles, 1)
}

func TestReporter_StopThenResumeIsOneListen(t *testing.T) {
	api := &fakeAPI{}
	r := newTestReporter(api, nil)
	item := song(4 * time.Minute)
	ctx := context.Background()

	require.NoError(t, r.ReportStart(ctx, item, nil, 0))
	require.NoError(t, r.ReportProgress(ctx, item, nil, media.ToTicks(3*time.Minute), false))
	require.Len(t, api.scrobbles, 1)

	// stream restarted at the current position
	require.NoError(t, r.ReportStopped(ctx, item, nil, media.ToTicks(3*time.Minute)))
	require.NoError(t, r.ReportStart(ctx, item, nil, media.ToTicks(3*time.Minute)))
	require.NoError(t, r.ReportStopped(ctx, item, nil, media.ToTicks(4*time.Minute)))

	assert.Len(t, api.nowPlaying, 1)
	assert.Len(t, api.scrobbles, 1)

	// played again from the top
	require.NoError(t, r.ReportStart(ctx, item, nil, 0))
	require.NoError(t, r.ReportStopped(ctx, item, nil, media.ToTicks(4*time.Minute)))
	assert.Len(t, api.nowPlaying, 2)
	assert.Len(t, api.scrobbles, 2)
}

func TestReporter_IgnoresVideo(t *testing.T) {
	api := &fakeAPI{}
	r := newTestReporter(api, nil)
	movie := song(2 * time.Hour)
	movie.Kind = media.KindNormal
	ctx := context.Background()

	require.NoError(t, r.ReportStart(ctx, movie, nil, 0))
	require.NoError(t, r.ReportStopped(ctx, movie, nil, media.ToTicks(time.Hour)))
	assert.Empty(t, api.nowPlaying)
	assert.Empty(t, api.scrobbles)
}

func TestReporter_FailedScrobbleIsQueuedAndRetried(t *testing.T) {
	api := &fakeAPI{}
	store := state.NewMock()
	r := newTestReporter(api, store)
	item := song(3 * time.Minute)
	ctx := context.Background()

	require.NoError(t, r.ReportStart(ctx, item, nil, 0))
	api.err = errors.New("service offline")
	err := r.ReportStopped(ctx, item, nil, media.ToTicks(2*time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrobble")

	pending, _ := store.GetPendingScrobbles()
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ItemID)
	assert.Equal(t, 180, pending[0].DurationSecs)

	ok, failed, err := r.RetryPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, ok)
	assert.Equal(t, 1, failed)

	api.err = nil
	ok, failed, err = r.RetryPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 0, failed)
	pending, _ = store.GetPendingScrobbles()
	assert.Empty(t, pending)
	require.Len(t, api.scrobbles, 1)
	assert.Equal(t, "Blue Train", api.scrobbles[0].Track)
}

func TestClient_RequiresSession(t *testing.T) {
	c := New("key", "secret", "")
	assert.False(t, c.IsAuthenticated())
	assert.ErrorIs(t, c.Scrobble(ScrobbleTrack{Artist: "a", Track: "b"}), ErrNotAuthenticated)
	assert.ErrorIs(t, c.UpdateNowPlaying(ScrobbleTrack{Artist: "a", Track: "b"}), ErrNotAuthenticated)
}

func TestTrackParams(t *testing.T) {
	p := trackParams(ScrobbleTrack{Artist: "A", Track: "T", AlbumArtist: "A", Duration: 90 * time.Second})
	assert.Equal(t, "A", p["artist"])
	assert.Equal(t, 90, p["duration"])
	assert.NotContains(t, p, "album")
	assert.NotContains(t, p, "albumArtist", "album artist equal to artist is omitted")
}
