package events

import (
	"context"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
)

// SessionListener turns session changes into activity events
func SessionListener(emitter *Emitter) session.Listener {
	return func(ctx context.Context, change session.Change) {
		var t Type
		switch change.Kind {
		case session.LoggedIn:
			t = UserLoggedIn
		case session.LoggedOut:
			t = UserLoggedOut
		case session.ProfileUpdated:
			t = ProfileUpdated
		default:
			return
		}

		event := emitter.NewEvent(t)
		event.SessionID = change.SessionID
		event.UserID = change.User.ID
		event.Email = change.User.Email
		emitter.Emit(event)
	}
}
