package domain

// DeleteOutcome is the tagged result of a password-gated thread deletion.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	DeleteBoardNotFound
	DeleteThreadNotFound
	DeletePasswordRequired
	DeleteInvalidPassword
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case DeleteBoardNotFound:
		return "board_not_found"
	case DeleteThreadNotFound:
		return "thread_not_found"
	case DeletePasswordRequired:
		return "password_required"
	case DeleteInvalidPassword:
		return "invalid_password"
	default:
		return "unknown"
	}
}
