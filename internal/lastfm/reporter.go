package lastfm

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/errmsg"
	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/playback"
	"github.com/llehouerou/lumen/internal/state"
	"github.com/llehouerou/lumen/internal/streamplan"
)

const (
	minTrackLength   = 30 * time.Second
	maxScrobbleDelay = 4 * time.Minute
	maxAttempts      = 10
)

// API is the part of Client the reporter needs.
type API interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// PendingStore keeps scrobbles that could not be submitted.
type PendingStore interface {
	AddPendingScrobble(s state.PendingScrobble) error
	GetPendingScrobbles() ([]state.PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
}

// Reporter turns playback reports for audio items into Last.fm now-playing
// updates and scrobbles. Other item kinds are ignored.
type Reporter struct {
	api     API
	pending PendingStore
	logger  logrus.FieldLogger
	now     func() time.Time

	mu      sync.Mutex
	itemID  uuid.UUID
	current *scrobbleState
}

var _ playback.Reporter = (*Reporter)(nil)

// NewReporter creates a reporter. pending may be nil, in which case failed
// scrobbles are dropped.
func NewReporter(api API, pending PendingStore, logger logrus.FieldLogger) *Reporter {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Reporter{api: api, pending: pending, logger: logger, now: time.Now}
}

// threshold is how far into a track playback must get before it counts as a
// listen: half the track or four minutes, whichever comes first.
func threshold(d time.Duration) (time.Duration, bool) {
	if d < minTrackLength {
		return 0, false
	}
	return min(d/2, maxScrobbleDelay), true
}

func (r *Reporter) ReportStart(_ context.Context, item *media.Item, _ *streamplan.Plan, pos media.Ticks) error {
	r.mu.Lock()
	track, ok := trackFromItem(item, r.now().Add(-pos.Duration()))
	if !ok {
		r.itemID, r.current = uuid.Nil, nil
		r.mu.Unlock()
		return nil
	}
	if r.current != nil && r.itemID == item.ID && (!r.current.stopped || pos > 0) {
		// same listen resumed after a retry or a track change; a restart from
		// the top is a new listen
		r.current.stopped = false
		r.mu.Unlock()
		return nil
	}
	r.itemID, r.current = item.ID, &scrobbleState{track: track}
	r.mu.Unlock()

	if err := r.api.UpdateNowPlaying(track); err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpNowPlaying, err)
	}
	return nil
}

func (r *Reporter) ReportProgress(_ context.Context, item *media.Item, _ *streamplan.Plan, pos media.Ticks, paused bool) error {
	if paused {
		return nil
	}
	return r.checkThreshold(item, pos, false)
}

func (r *Reporter) ReportStopped(_ context.Context, item *media.Item, _ *streamplan.Plan, pos media.Ticks) error {
	return r.checkThreshold(item, pos, true)
}

func (r *Reporter) checkThreshold(item *media.Item, pos media.Ticks, stopped bool) error {
	r.mu.Lock()
	if item == nil || r.current == nil || r.itemID != item.ID || r.current.stopped {
		r.mu.Unlock()
		return nil
	}
	cur := r.current
	cur.stopped = stopped
	limit, ok := threshold(cur.track.Duration)
	if !ok || cur.scrobbled || pos.Duration() < limit {
		r.mu.Unlock()
		return nil
	}
	cur.scrobbled = true
	track := cur.track
	r.mu.Unlock()

	return r.scrobble(item.ID, track)
}

func (r *Reporter) scrobble(itemID uuid.UUID, track ScrobbleTrack) error {
	err := r.api.Scrobble(track)
	if err == nil {
		return nil
	}
	if r.pending != nil {
		if qerr := r.pending.AddPendingScrobble(state.PendingScrobble{
			ItemID:       itemID,
			Artist:       track.Artist,
			Track:        track.Track,
			Album:        track.Album,
			DurationSecs: int(track.Duration.Seconds()),
			Timestamp:    track.Timestamp,
			LastError:    err.Error(),
		}); qerr != nil {
			r.logger.WithError(qerr).Warn("queue pending scrobble")
		}
	}
	return fmt.Errorf("%s: %w", errmsg.OpScrobble, err)
}

// RetryPending resubmits queued scrobbles. Entries that failed too often are
// left in place for DeleteOldPendingScrobbles to expire.
func (r *Reporter) RetryPending(ctx context.Context) (succeeded, failed int, err error) {
	if r.pending == nil {
		return 0, 0, nil
	}
	pending, err := r.pending.GetPendingScrobbles()
	if err != nil {
		return 0, 0, err
	}

	for i := range pending {
		if ctx.Err() != nil {
			return succeeded, failed, ctx.Err()
		}
		p := &pending[i]
		if p.Attempts >= maxAttempts {
			continue
		}

		track := ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Album:     p.Album,
			Duration:  time.Duration(p.DurationSecs) * time.Second,
			Timestamp: p.Timestamp,
		}

		if err := r.api.Scrobble(track); err != nil {
			failed++
			_ = r.pending.UpdatePendingScrobbleAttempt(p.ID, err.Error())
			continue
		}
		succeeded++
		_ = r.pending.DeletePendingScrobble(p.ID)
	}

	return succeeded, failed, nil
}
