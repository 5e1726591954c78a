package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

const (
	TournamentsCollection = "tournaments"
	MatchesCollection     = "matches"
	TeamsCollection       = "teams"
	PlayersCollection     = "players"
)

// Repository is the persistence port the services depend on.
type Repository[T any] interface {
	Create(ctx context.Context, value T) (T, error)
	// ReadAll returns every entity in ascending id order.
	ReadAll(ctx context.Context) ([]T, error)
	// ReadByID returns ErrNotFound when no entity has the id.
	ReadByID(ctx context.Context, id int64) (T, error)
	// Update applies patch to the stored entity and bumps its update time. Fields the patch
	// leaves alone keep their values.
	Update(ctx context.Context, id int64, patch func(*T) error) (T, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// Filter returns the entities matching keep in ascending id order.
	Filter(ctx context.Context, keep func(T) bool) ([]T, error)
}

// Document is implemented by entities whose metadata is assigned by the store.
type Document interface {
	SetMeta(id int64, createdAt, updatedAt time.Time)
}

// Collection implements Repository for one entity type on top of a DocumentStore.
type Collection[T any, PT interface {
	*T
	Document
}] struct {
	docs DocumentStore
	name string
}

func NewCollection[T any, PT interface {
	*T
	Document
}](docs DocumentStore, name string) *Collection[T, PT] {
	return &Collection[T, PT]{docs: docs, name: name}
}

func (c *Collection[T, PT]) Create(ctx context.Context, value T) (T, error) {
	body, err := sonic.Marshal(value)
	if err != nil {
		return value, errors.Wrapf(err, "failed to encode %s document", c.name)
	}

	env, err := c.docs.Insert(ctx, c.name, body)
	if err != nil {
		return value, errors.Wrapf(err, "failed to insert into %s", c.name)
	}

	PT(&value).SetMeta(env.ID, env.CreatedAt, env.UpdatedAt)
	return value, nil
}

func (c *Collection[T, PT]) ReadAll(ctx context.Context) ([]T, error) {
	return c.Filter(ctx, nil)
}

func (c *Collection[T, PT]) ReadByID(ctx context.Context, id int64) (T, error) {
	env, err := c.docs.Get(ctx, c.name, id)
	if err != nil {
		var zero T
		return zero, errors.Wrapf(err, "failed to read %s %d", c.name, id)
	}
	return c.decode(env)
}

func (c *Collection[T, PT]) Update(ctx context.Context, id int64, patch func(*T) error) (T, error) {
	env, err := c.docs.Modify(ctx, c.name, id, func(current Envelope) ([]byte, error) {
		value, err := c.decode(current)
		if err != nil {
			return nil, err
		}
		if err := patch(&value); err != nil {
			return nil, err
		}
		return sonic.Marshal(value)
	})
	if err != nil {
		var zero T
		return zero, errors.Wrapf(err, "failed to update %s %d", c.name, id)
	}
	return c.decode(env)
}

func (c *Collection[T, PT]) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := c.docs.Remove(ctx, c.name, id)
	if err != nil {
		return false, errors.Wrapf(err, "failed to delete %s %d", c.name, id)
	}
	return deleted, nil
}

func (c *Collection[T, PT]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	envs, err := c.docs.List(ctx, c.name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", c.name)
	}

	out := make([]T, 0, len(envs))
	for _, env := range envs {
		value, err := c.decode(env)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(value) {
			out = append(out, value)
		}
	}
	return out, nil
}

func (c *Collection[T, PT]) decode(env Envelope) (T, error) {
	var value T
	if err := sonic.Unmarshal(env.Body, &value); err != nil {
		return value, errors.Wrapf(err, "failed to decode %s %d", c.name, env.ID)
	}
	PT(&value).SetMeta(env.ID, env.CreatedAt, env.UpdatedAt)
	return value, nil
}

// Repositories groups the repositories of every domain collection.
type Repositories struct {
	Tournaments Repository[bracket.Tournament]
	Matches     Repository[bracket.Match]
	Teams       Repository[bracket.Team]
	Players     Repository[bracket.Player]
}

func NewRepositories(docs DocumentStore) Repositories {
	return Repositories{
		Tournaments: NewCollection[bracket.Tournament](docs, TournamentsCollection),
		Matches:     NewCollection[bracket.Match](docs, MatchesCollection),
		Teams:       NewCollection[bracket.Team](docs, TeamsCollection),
		Players:     NewCollection[bracket.Player](docs, PlayersCollection),
	}
}
