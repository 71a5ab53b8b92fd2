package lumen

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lumen/internal/config"
	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/player"
	"github.com/llehouerou/lumen/internal/playback"
	"github.com/llehouerou/lumen/internal/streamplan"
)

const waitFor = 2 * time.Second

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StatePath:     filepath.Join(t.TempDir(), "session.db"),
		MPRIS:         config.ToggleConfig{Enabled: lo.ToPtr(false)},
		Notifications: config.ToggleConfig{Enabled: lo.ToPtr(false)},
	}
}

func item(id, name string) media.Item {
	return media.Item{
		ID:      uuid.MustParse(id),
		Name:    name,
		Kind:    media.KindNormal,
		RunTime: time.Hour,
		MediaSources: []media.MediaSource{{
			ID:                   "src-" + name,
			RunTime:              time.Hour,
			SupportsDirectPlay:   true,
			SupportsDirectStream: true,
			SupportsTranscoding:  true,
			MediaStreams: []media.MediaStream{
				{Index: 0, Type: media.StreamVideo, Codec: "h264"},
				{Index: 1, Type: media.StreamAudio, Codec: "aac", Language: "eng"},
			},
		}},
	}
}

type channelStore struct{ items map[uuid.UUID]media.Item }

func (s channelStore) GetChannel(_ context.Context, id uuid.UUID) (*media.Item, error) {
	it := s.items[id]
	return &it, nil
}

func TestNew_RequiresServer(t *testing.T) {
	_, err := New(Options{Config: testConfig(t)})
	require.ErrorIs(t, err, ErrNoServer)
}

func TestPlayer_PlaysAndResumesQueue(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg := testConfig(t)
	items := []media.Item{
		item("3e0f7d1a-0000-4000-8000-000000000001", "One"),
		item("3e0f7d1a-0000-4000-8000-000000000002", "Two"),
	}

	p, err := New(Options{Server: streamplan.NewMock(), Config: cfg, Logger: logger})
	require.NoError(t, err)

	engine := player.NewMock()
	require.NoError(t, p.Start(engine))
	p.ResumeQueue(items)
	assert.Equal(t, 0, p.QueueIndex())

	p.Play(0)
	require.Eventually(t, func() bool { return engine.StartCalls() == 1 }, waitFor, 5*time.Millisecond)
	require.Equal(t, playback.StateBuffering, p.State())
	engine.SimulatePrepared()
	require.Eventually(t, func() bool { return p.State() == playback.StatePlaying }, waitFor, 5*time.Millisecond)

	p.Next()
	assert.Equal(t, 1, p.QueueIndex())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "Close is idempotent")

	// a new session restores the cursor
	again, err := New(Options{Server: streamplan.NewMock(), Config: cfg, Logger: logger})
	require.NoError(t, err)
	defer again.Close()
	require.NoError(t, again.Start(player.NewMock()))
	again.ResumeQueue(items)
	assert.Equal(t, 1, again.QueueIndex())
}

func TestPlayer_LastChannel(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	news := uuid.MustParse("3e0f7d1a-0000-4000-8000-0000000000aa")
	store := channelStore{items: map[uuid.UUID]media.Item{
		news: {ID: news, Name: "News", Kind: media.KindLiveChannel},
	}}

	p, err := New(Options{Server: streamplan.NewMock(), Channels: store, Config: testConfig(t), Logger: logger})
	require.NoError(t, err)
	defer p.Close()

	last, prev, err := p.LastChannel()
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, last.ID)
	assert.Equal(t, uuid.Nil, prev.ID)

	require.NoError(t, p.state.SaveLastChannel(news))
	last, _, err = p.LastChannel()
	require.NoError(t, err)
	assert.Equal(t, "News", last.Name)
}
