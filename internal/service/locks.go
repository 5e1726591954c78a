package service

import "sync"

// TournamentLocks serializes mutations of one tournament's match set. Sibling matches
// completing at the same time would otherwise race for the same next-round slot.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the tournament's mutex and returns its unlock function.
func (l *TournamentLocks) Lock(tournamentID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the mutex of a deleted tournament.
func (l *TournamentLocks) Forget(tournamentID int64) {
	l.mu.Lock()
	delete(l.locks, tournamentID)
	l.mu.Unlock()
}
