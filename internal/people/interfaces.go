package people

import (
	"context"

	"github.com/kapu/cantina-go/internal/domain"
)

// PeopleSource fetches one page of people. Pages are 1-based.
type PeopleSource interface {
	Fetch(ctx context.Context, page int) (*domain.PageResult, error)
}

// MusicController drives background music. Play loops until Stop, and Play
// without a successful Load must be harmless.
type MusicController interface {
	Load(ctx context.Context) error
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
}
