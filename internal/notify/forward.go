package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/playback"
)

const (
	noticeTimeout = 5000 // ms

	actionPlayNext = "play-next"
)

// Starter starts the item under the queue cursor.
type Starter interface {
	Play(pos time.Duration)
}

// Forward shows the controller's notices and next-up offers as desktop
// notifications until the subscription is done or ctx is canceled. Each new
// notification replaces the previous one. Clicking "Play now" on a next-up
// offer starts the item through player, when one is given.
func Forward(ctx context.Context, sub *playback.Subscription, n Notifier, player Starter, logger logrus.FieldLogger) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	var last, offer uint32
	show := func(notif Notification) uint32 {
		notif.ReplacesID = last
		id, err := n.Notify(notif)
		if err != nil {
			logger.WithError(err).Debug("desktop notification")
			return 0
		}
		if id != 0 {
			last = id
		}
		return id
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case notice := <-sub.Notices:
			show(fromNotice(notice))
			offer = 0
		case next := <-sub.NextUp:
			notif := Notification{
				Title:   "Up next",
				Body:    next.Item.Name,
				Timeout: noticeTimeout,
				Urgency: UrgencyLow,
			}
			if player != nil {
				notif.Actions = []string{actionPlayNext, "Play now"}
			}
			offer = show(notif)
		case missing := <-sub.MissingMedia:
			show(Notification{
				Title:   "Not available",
				Body:    fmt.Sprintf("%s has no playable media", missing.Item.Name),
				Timeout: noticeTimeout,
				Urgency: UrgencyNormal,
			})
			offer = 0
		case a := <-n.Actions():
			if player == nil || a.Key != actionPlayNext || a.ID == 0 || a.ID != offer {
				continue
			}
			offer = 0
			logger.Debug("next-up accepted from notification")
			player.Play(0)
		}
	}
}

func fromNotice(notice playback.Notice) Notification {
	notif := Notification{
		Title:   noticeTitle(notice.Kind),
		Body:    notice.Message,
		Timeout: noticeTimeout,
		Urgency: UrgencyNormal,
	}
	switch notice.Kind {
	case playback.NoticeRetrying, playback.NoticeLiveStreamError:
		notif.Urgency = UrgencyLow
	case playback.NoticeTooManyErrors, playback.NoticeCannotPlay:
		notif.Urgency = UrgencyCritical
		notif.Timeout = -1
	}
	return notif
}

func noticeTitle(kind playback.NoticeKind) string {
	switch kind {
	case playback.NoticeRetrying:
		return "Playback interrupted"
	case playback.NoticeTooManyErrors:
		return "Playback stopped"
	case playback.NoticeLiveStreamError:
		return "Live stream"
	case playback.NoticeSeekFailed:
		return "Seek failed"
	default:
		return "Cannot play"
	}
}
