// Package notify raises desktop notifications for timer completions.
// Delivery is best-effort: a notification that cannot be shown is
// dropped silently, the app never blocks or errors on it.
package notify

import "github.com/gen2brain/beeep"

// Permission mirrors the usual notification permission states. Desktop
// backends cannot actually prompt, so a request resolves immediately.
type Permission string

const (
	PermissionUndetermined Permission = "undetermined"
	PermissionProvisional  Permission = "provisional"
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
)

// Notifier gates notifications behind a user toggle and a permission
// state. The zero value is disabled and undetermined.
type Notifier struct {
	enabled    bool
	permission Permission
}

func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled, permission: PermissionUndetermined}
}

// RequestPermission resolves the permission state. Explicitly denied
// stays denied; anything else becomes granted.
func (n *Notifier) RequestPermission() Permission {
	if n.permission != PermissionDenied {
		n.permission = PermissionGranted
	}
	return n.permission
}

func (n *Notifier) Permission() Permission { return n.permission }

func (n *Notifier) SetEnabled(enabled bool) { n.enabled = enabled }

func (n *Notifier) Enabled() bool { return n.enabled }

func (n *Notifier) canNotify() bool {
	return n.enabled && (n.permission == PermissionGranted || n.permission == PermissionProvisional)
}

// TimerDone announces a finished focus timer.
func (n *Notifier) TimerDone(activity string) {
	if !n.canNotify() {
		return
	}
	body := "Focus block finished"
	if activity != "" {
		body = "Finished: " + activity
	}
	beeep.Notify("Tasker", body, "")
	beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}
