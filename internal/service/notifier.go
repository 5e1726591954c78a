package service

const (
	EventMatchUpdated     = "MATCH_UPDATED"
	EventMatchReady       = "MATCH_READY"
	EventBracketGenerated = "BRACKET_GENERATED"
)

// Notifier is told about changes that viewers of a tournament should see.
type Notifier interface {
	Notify(tournamentID int64, event string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(int64, string, any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
