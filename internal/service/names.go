package service

import (
	"context"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/store"
	"github.com/cockroachdb/errors"
)

const (
	unknownTeam       = "Unknown Team"
	unresolvedTeam    = "TBD"
	unknownTournament = "Unknown Tournament"
)

// teamNames maps every stored team id to its name.
func teamNames(ctx context.Context, teams store.Repository[bracket.Team]) (map[int64]string, error) {
	all, err := teams.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(all))
	for _, t := range all {
		names[t.ID] = t.Name
	}
	return names, nil
}

func nameOr(names map[int64]string, id *int64, fallback string) string {
	if id == nil {
		return fallback
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return fallback
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// repoError maps a repository failure to a caller-facing error.
func repoError(err error, notFoundMsg, internalMsg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if isNotFound(err) {
		return apperr.NotFound("%s", notFoundMsg)
	}
	return apperr.Internal(err, internalMsg)
}
