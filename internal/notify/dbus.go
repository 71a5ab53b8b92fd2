//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	appName      = "Lumen"
	desktopEntry = "lumen"

	// video playback notifications are grouped under one category
	category = "x-lumen.playback"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"
	dbusActionInvoked   = dbusNotifyInterface + ".ActionInvoked"
)

// dbusNotifier sends notifications via D-Bus and relays their button clicks.
type dbusNotifier struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	actions chan Action
}

// New creates a Notifier that sends desktop notifications via D-Bus.
// Returns a no-op notifier if D-Bus is unavailable.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		// D-Bus not available, return no-op notifier (intentional graceful degradation)
		return &stubNotifier{}, nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}

	n := &dbusNotifier{
		conn: conn,
		obj:  conn.Object(dbusNotifyDest, dbusNotifyPath),
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusNotifyPath),
		dbus.WithMatchInterface(dbusNotifyInterface),
		dbus.WithMatchMember("ActionInvoked"),
	); err == nil {
		signals := make(chan *dbus.Signal, 8)
		conn.Signal(signals)
		n.actions = make(chan Action, 4)
		go n.relay(signals)
	}
	return n, nil
}

// relay turns ActionInvoked signals into Actions. Clicks nobody reads are
// dropped.
func (n *dbusNotifier) relay(signals <-chan *dbus.Signal) {
	for sig := range signals {
		a, ok := parseActionInvoked(sig)
		if !ok {
			continue
		}
		select {
		case n.actions <- a:
		default:
		}
	}
}

func parseActionInvoked(sig *dbus.Signal) (Action, bool) {
	if sig == nil || sig.Name != dbusActionInvoked || len(sig.Body) != 2 {
		return Action{}, false
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return Action{}, false
	}
	key, ok := sig.Body[1].(string)
	if !ok {
		return Action{}, false
	}
	return Action{ID: id, Key: key}, true
}

// Notify sends a notification via D-Bus.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
		"category":      dbus.MakeVariant(category),
	}
	actions := notif.Actions
	if actions == nil {
		actions = []string{}
	}

	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		actions,
		hints,
		notif.Timeout,
	)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close closes a notification by ID.
func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err
}

func (n *dbusNotifier) Actions() <-chan Action {
	return n.actions
}

// stubNotifier is used when D-Bus is unavailable.
type stubNotifier struct{}

func (s *stubNotifier) Notify(_ Notification) (uint32, error) {
	return 0, nil
}

func (s *stubNotifier) Close(_ uint32) error {
	return nil
}

func (s *stubNotifier) Actions() <-chan Action {
	return nil
}
