package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
	"github.com/ericfisherdev/reviewrot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoStore = (*RepoRepo)(nil)

const repoColumns = `id, full_name, owner, name, added_at`

// RepoRepo stores the repositories the GitHub source watches. Their id order
// is the order their pull requests appear on the page.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a RepoRepo backed by db.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Add starts watching repo. A zero AddedAt is stamped with the current time.
func (r *RepoRepo) Add(ctx context.Context, repo model.Repository) error {
	const query = `INSERT INTO repositories (full_name, owner, name, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (full_name) DO NOTHING`

	addedAt := repo.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}

	n, err := execRows(ctx, r.db.Writer, query, repo.FullName, repo.Owner, repo.Name, addedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add repository %s: %w", repo.FullName, err)
	}
	if n == 0 {
		return fmt.Errorf("add repository %s: %w", repo.FullName, driven.ErrRepoAlreadyExists)
	}
	return nil
}

// Remove stops watching the repository named fullName.
func (r *RepoRepo) Remove(ctx context.Context, fullName string) error {
	n, err := execRows(ctx, r.db.Writer, `DELETE FROM repositories WHERE full_name = ?`, fullName)
	if err != nil {
		return fmt.Errorf("remove repository %s: %w", fullName, err)
	}
	if n == 0 {
		return fmt.Errorf("remove repository %s: %w", fullName, driven.ErrRepoNotFound)
	}
	return nil
}

// GetByFullName returns the watched repository named fullName, or nil when
// it is not watched.
func (r *RepoRepo) GetByFullName(ctx context.Context, fullName string) (*model.Repository, error) {
	row := r.db.Reader.QueryRowContext(ctx, `SELECT `+repoColumns+` FROM repositories WHERE full_name = ?`, fullName)

	repo, err := scanRepository(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get repository %s: %w", fullName, err)
	}
	return &repo, nil
}

// ListAll returns every watched repository in the order it was added.
func (r *RepoRepo) ListAll(ctx context.Context) ([]model.Repository, error) {
	rows, err := r.db.Reader.QueryContext(ctx, `SELECT `+repoColumns+` FROM repositories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	repos := []model.Repository{}
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}

// execRows runs a write statement and reports how many rows it touched.
func execRows(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepository(s rowScanner) (model.Repository, error) {
	var (
		repo    model.Repository
		addedAt string
	)
	if err := s.Scan(&repo.ID, &repo.FullName, &repo.Owner, &repo.Name, &addedAt); err != nil {
		return model.Repository{}, err
	}

	t, err := time.Parse(time.RFC3339, addedAt)
	if err != nil {
		return model.Repository{}, fmt.Errorf("repository %s: added_at: %w", repo.FullName, err)
	}
	repo.AddedAt = t
	return repo, nil
}
