//go:build linux

package mpris

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/playback"
)

const (
	busName  = "lumen"
	identity = "Lumen"
	minRate  = 0.5
	maxRate  = 2.0
)

// Adapter exposes a playback.Service as an MPRIS player over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(service playback.Service) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(busName, &rootAdapter{}, newPlayerAdapter(service)),
	}

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }

// Quit is not supported; the host owns the lifecycle.
func (r *rootAdapter) Quit() error { return nil }

func (r *rootAdapter) CanQuit() (bool, error) { return false, nil }

func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) { return identity, nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"video/mp4", "video/x-matroska", "application/vnd.apple.mpegurl", "audio/mpeg", "audio/flac"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	service playback.Service

	mu   sync.Mutex
	rate float64 // last rate set over D-Bus; the service has no getter
}

func newPlayerAdapter(service playback.Service) *playerAdapter {
	return &playerAdapter{service: service, rate: 1}
}

func (p *playerAdapter) Next() error {
	p.service.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.service.Prev()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.service.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.service.PlayPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.service.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	if p.service.State() == playback.StatePlaying {
		return nil
	}
	p.service.PlayPause()
	return nil
}

// Seek moves relative to the current position.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	target := max(p.service.Position()+time.Duration(offset)*time.Microsecond, 0)
	p.service.Seek(target, true)
	return nil
}

// SetPosition seeks to an absolute position. Requests for a track other than
// the current one are ignored.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	item := p.service.CurrentItem()
	if item == nil || trackID != string(formatTrackID(item)) {
		return nil
	}
	p.service.Seek(time.Duration(position)*time.Microsecond, false)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.service.State() {
	case playback.StatePlaying, playback.StateBuffering, playback.StateSeeking:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	if p.service.IsLive() {
		return nil
	}
	rate = min(max(rate, minRate), maxRate)
	p.mu.Lock()
	p.rate = rate
	p.mu.Unlock()
	p.service.SetPlaybackSpeed(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	item := p.service.CurrentItem()
	if item == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: formatTrackID(item),
		Title:   item.Name,
		Album:   item.Album,
	}
	if d := p.service.Duration(); d > 0 && !item.IsLive() {
		meta.Length = types.Microseconds(d.Microseconds())
	}
	if item.Artist != "" {
		meta.Artist = []string{item.Artist}
	}
	if item.IsLive() && item.CurrentProgram != nil {
		meta.Title = item.CurrentProgram.Name
		meta.Album = item.Name
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume belongs to the render engine
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) { return minRate, nil }

func (p *playerAdapter) MaximumRate() (float64, error) { return maxRate, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.service.HasNext(), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.service.HasPrev(), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.CurrentItem() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.service.State() == playback.StatePlaying, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.CanSeek(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(item *media.Item) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", item.ID[:]))
}
