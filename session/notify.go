package session

import "github.com/yhkl-dev/zencli/domain"

// NotificationKind tells the user-facing sink what happened
type NotificationKind int

const (
	NotifyLoadFailed NotificationKind = iota
	NotifyCompleted
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyLoadFailed:
		return "load_failed"
	case NotifyCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Notification is delivered fire-and-forget to a Notifier
type Notification struct {
	Kind  NotificationKind
	Track domain.Track
	Err   error // set for NotifyLoadFailed
}

// Notifier receives notifications on the controller goroutine. It must not
// block and must not call back into the controller synchronously.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
