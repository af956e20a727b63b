package sign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("sign not found")

// Sign is a row of the static zodiac reference table.
type Sign struct {
	Name        string `json:"nome" db:"name"`
	Personality string `json:"personalidade" db:"personality"`
}

type Repository interface {
	List(ctx context.Context) ([]Sign, error)
	GetByName(ctx context.Context, name string) (*Sign, error)
}

type sqlxRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &sqlxRepository{db: db}
}

func (r *sqlxRepository) List(ctx context.Context) ([]Sign, error) {
	signs := make([]Sign, 0, 12)
	if err := r.db.SelectContext(ctx, &signs, `SELECT name, personality FROM signs ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("repository: failed to select signs: %w", err)
	}
	return signs, nil
}

func (r *sqlxRepository) GetByName(ctx context.Context, name string) (*Sign, error) {
	var s Sign
	err := r.db.GetContext(ctx, &s, `SELECT name, personality FROM signs WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select sign %q: %w", name, err)
	}
	return &s, nil
}

type Service interface {
	List(ctx context.Context) ([]Sign, error)
	Get(ctx context.Context, name string) (*Sign, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Sign, error) {
	signs, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list signs")
		return nil, err
	}
	return signs, nil
}

// Get is an exact, case-sensitive match on the stored name.
func (s *service) Get(ctx context.Context, name string) (*Sign, error) {
	if name == "" {
		return nil, ErrNotFound
	}

	found, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("sign", name).Msg("failed to get sign")
		}
		return nil, err
	}
	return found, nil
}
