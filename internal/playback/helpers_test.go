package playback

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/player"
	"github.com/llehouerou/lumen/internal/playlist"
	"github.com/llehouerou/lumen/internal/streamplan"
)

var (
	movieID  = uuid.MustParse("6f1c0c5e-2b8e-4f59-9a53-0d3c1f3a9b01")
	movie2ID = uuid.MustParse("6f1c0c5e-2b8e-4f59-9a53-0d3c1f3a9b02")
	liveID   = uuid.MustParse("6f1c0c5e-2b8e-4f59-9a53-0d3c1f3a9b03")
)

func testSource(id string) media.MediaSource {
	return media.MediaSource{
		ID:                   id,
		Container:            "mkv",
		RunTime:              2 * time.Hour,
		SupportsDirectPlay:   true,
		SupportsDirectStream: true,
		SupportsTranscoding:  true,
		MediaStreams: []media.MediaStream{
			{Index: 0, Type: media.StreamVideo, Codec: "h264"},
			{Index: 1, Type: media.StreamAudio, Codec: "aac", Language: "eng", IsDefault: true},
			{Index: 2, Type: media.StreamAudio, Codec: "ac3", Language: "fre"},
			{Index: 3, Type: media.StreamSubtitle, Codec: "srt", Language: "eng", DeliveryMethod: media.DeliveryExternal},
			{Index: 4, Type: media.StreamSubtitle, Codec: "pgssub", Language: "eng", DeliveryMethod: media.DeliveryEncode},
		},
	}
}

func movie() media.Item {
	return media.Item{
		ID:           movieID,
		Name:         "The Long Night",
		Kind:         media.KindNormal,
		RunTime:      2 * time.Hour,
		MediaSources: []media.MediaSource{testSource("src-1")},
	}
}

func movie2() media.Item {
	m := movie()
	m.ID = movie2ID
	m.Name = "The Long Night II"
	m.MediaSources = []media.MediaSource{testSource("src-2")}
	return m
}

type reportCall struct {
	kind   string
	itemID uuid.UUID
	pos    media.Ticks
	paused bool
}

type recorder struct {
	mu    sync.Mutex
	calls []reportCall
}

func (r *recorder) add(c reportCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return nil
}

func (r *recorder) ReportStart(_ context.Context, item *media.Item, _ *streamplan.Plan, pos media.Ticks) error {
	return r.add(reportCall{kind: "start", itemID: item.ID, pos: pos})
}

func (r *recorder) ReportProgress(_ context.Context, item *media.Item, _ *streamplan.Plan, pos media.Ticks, paused bool) error {
	return r.add(reportCall{kind: "progress", itemID: item.ID, pos: pos, paused: paused})
}

func (r *recorder) ReportStopped(_ context.Context, item *media.Item, _ *streamplan.Plan, pos media.Ticks) error {
	return r.add(reportCall{kind: "stopped", itemID: item.ID, pos: pos})
}

func (r *recorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) progress(paused bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.kind == "progress" && c.paused == paused {
			n++
		}
	}
	return n
}

func (r *recorder) last() reportCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return reportCall{}
	}
	return r.calls[len(r.calls)-1]
}

type testPrefs struct {
	language string
	nextUp   NextUpBehavior
	delay    time.Duration
	liveDP   bool
}

func (p *testPrefs) AudioLanguage() string          { return p.language }
func (p *testPrefs) NextUpBehavior() NextUpBehavior { return p.nextUp }
func (p *testPrefs) StartDelay() time.Duration      { return p.delay }
func (p *testPrefs) LiveDirectPlay() bool           { return p.liveDP }
func (p *testPrefs) SkipForward() time.Duration     { return DefaultSkipForward }
func (p *testPrefs) SkipBack() time.Duration        { return DefaultSkipBack }
func (p *testPrefs) MaxAudioChannels() int          { return 0 }

type testSessions struct {
	mu        sync.Mutex
	positions []int
	channels  []uuid.UUID
}

func (s *testSessions) SaveQueuePosition(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append(s.positions, index)
	return nil
}

func (s *testSessions) SaveLastChannel(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, id)
	return nil
}

func (s *testSessions) savedPositions() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.positions...)
}

func (s *testSessions) savedChannels() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.channels...)
}

type harness struct {
	c        *Controller
	engine   *player.Mock
	server   *streamplan.Mock
	reports  *recorder
	sessions *testSessions
	sub      *Subscription
}

// newHarness builds an initialized controller. Must run inside a synctest
// bubble; callers defer h.c.Close().
func newHarness(t *testing.T, prefs *testPrefs, items ...media.Item) *harness {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	if prefs == nil {
		prefs = &testPrefs{}
	}
	h := &harness{
		engine:   player.NewMock(),
		server:   streamplan.NewMock(),
		reports:  &recorder{},
		sessions: &testSessions{},
	}
	h.c = New(Config{
		Queue:       playlist.NewQueue(items...),
		Negotiator:  streamplan.New(h.server, nil, logger),
		Reporter:    h.reports,
		Preferences: prefs,
		Sessions:    h.sessions,
		Logger:      logger,
	})
	h.sub = h.c.Subscribe()
	h.c.Init(h.engine)
	return h
}

// startPlaying plays the current item at pos and drives it to Playing.
func (h *harness) startPlaying(t *testing.T, pos time.Duration) {
	t.Helper()
	h.c.Play(pos)
	synctest.Wait()
	require.Equal(t, StateBuffering, h.c.State(), "after negotiation")
	h.engine.SimulatePrepared()
	synctest.Wait()
	require.Equal(t, StatePlaying, h.c.State(), "after prepared")
}

func (h *harness) loop() loopKind {
	return query(h.c, func() loopKind { return h.c.loop })
}

func drain[T any](ch <-chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
