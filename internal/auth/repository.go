package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound indicates no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// User is a back-office operator account. Passwords are stored only as
// bcrypt hashes.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

// Repository persists operator accounts.
type Repository interface {
	Create(ctx context.Context, username, passwordHash string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	UpdateTokenVersion(ctx context.Context, id int64, version int) error
}

// PostgresRepository implements Repository on the users table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, username, passwordHash string) (User, error) {
	var u User
	err := r.db.QueryRow(ctx, `INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, password_hash, token_version, created_at`,
		username, passwordHash).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt)
	return u, err
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, username, password_hash, token_version, created_at
		FROM users WHERE username = $1`, username))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT id, username, password_hash, token_version, created_at
		FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id int64, version int) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET token_version = $1 WHERE id = $2`, version, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]User
	byName map[string]int64
}

// NewMemoryRepository builds an in-memory user store for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, byID: make(map[int64]User), byName: make(map[string]int64)}
}

func (r *memoryRepository) Create(_ context.Context, username, passwordHash string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[username]; ok {
		return r.byID[id], nil
	}
	u := User{ID: r.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.nextID++
	r.byID[u.ID] = u
	r.byName[username] = u.ID
	return u, nil
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *memoryRepository) UpdateTokenVersion(_ context.Context, id int64, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.TokenVersion = version
	r.byID[id] = u
	return nil
}
