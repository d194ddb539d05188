package types

// SessionStatus is the lifecycle state of a manually verified payment
// session. Admin verification moves a session from pending to authorized;
// captured, refunded, canceled, failed and expired are terminal.
type SessionStatus int32

const (
	SessionStatusUnspecified SessionStatus = 0
	SessionStatusPending     SessionStatus = 1
	SessionStatusAuthorized  SessionStatus = 2
	SessionStatusCaptured    SessionStatus = 3
	SessionStatusRefunded    SessionStatus = 4
	SessionStatusCanceled    SessionStatus = 5
	SessionStatusFailed      SessionStatus = 6
	SessionStatusExpired     SessionStatus = 7
)

func (s SessionStatus) String() string {
	switch s {
	case SessionStatusPending:
		return "pending"
	case SessionStatusAuthorized:
		return "authorized"
	case SessionStatusCaptured:
		return "captured"
	case SessionStatusRefunded:
		return "refunded"
	case SessionStatusCanceled:
		return "canceled"
	case SessionStatusFailed:
		return "failed"
	case SessionStatusExpired:
		return "expired"
	default:
		return "unspecified"
	}
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusPending,
		SessionStatusAuthorized,
		SessionStatusCaptured,
		SessionStatusRefunded,
		SessionStatusCanceled,
		SessionStatusFailed,
		SessionStatusExpired:
		return true
	default:
		return false
	}
}

func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionStatusCaptured,
		SessionStatusRefunded,
		SessionStatusCanceled,
		SessionStatusFailed,
		SessionStatusExpired:
		return true
	default:
		return false
	}
}

// ParseSessionStatus maps the wire name of a status back to its value.
func ParseSessionStatus(raw string) (SessionStatus, bool) {
	switch raw {
	case "pending":
		return SessionStatusPending, true
	case "authorized":
		return SessionStatusAuthorized, true
	case "captured":
		return SessionStatusCaptured, true
	case "refunded":
		return SessionStatusRefunded, true
	case "canceled":
		return SessionStatusCanceled, true
	case "failed":
		return SessionStatusFailed, true
	case "expired":
		return SessionStatusExpired, true
	default:
		return SessionStatusUnspecified, false
	}
}

// ParseAdminStatus maps the admin status vocabulary onto the session enum.
// "verified" is the admin name for the authorized state.
func ParseAdminStatus(raw string) (SessionStatus, bool) {
	switch raw {
	case "pending":
		return SessionStatusPending, true
	case "verified":
		return SessionStatusAuthorized, true
	case "failed":
		return SessionStatusFailed, true
	case "refunded":
		return SessionStatusRefunded, true
	case "canceled":
		return SessionStatusCanceled, true
	default:
		return SessionStatusUnspecified, false
	}
}
