package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const userColumns = `id, email, phone_number, password_hash, first_name, last_name, picture, provider, provider_id, created_at`

// SQL is a UserDirectory over database/sql. Postgres goes through the pgx
// stdlib driver, SQLite through modernc.org/sqlite.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ multiAuth.UserDirectory = (*SQL)(nil)

// Open connects to dsn with the driver for dialect and checks the
// connection. Call Migrate before first use on an empty database.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQL, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}

	var driver string
	switch dialect {
	case DialectPostgres:
		driver = "pgx"
	case DialectSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// One writer keeps SQLite from returning SQLITE_BUSY under load.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return &SQL{db: db, dialect: dialect, now: time.Now}, nil
}

// Close releases the connection pool.
func (s *SQL) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) FindByEmail(ctx context.Context, email string) (*multiAuth.User, error) {
	if email == "" {
		return nil, nil
	}
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *SQL) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*multiAuth.User, error) {
	if phoneNumber == "" {
		return nil, nil
	}
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = ?`, phoneNumber)
}

func (s *SQL) FindByProviderID(ctx context.Context, providerID, provider string) (*multiAuth.User, error) {
	if providerID == "" || provider == "" {
		return nil, nil
	}
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE provider_id = ? AND provider = ?`, providerID, provider)
}

// Create inserts a user. Unique violations on email or phone number map to
// the directory duplicate errors.
func (s *SQL) Create(ctx context.Context, in multiAuth.CreateUserInput) (*multiAuth.User, error) {
	if in.Email == "" && in.PhoneNumber == "" {
		return nil, errors.New("email or phone number required")
	}

	u := &multiAuth.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Picture:      in.Picture,
		Provider:     in.Provider,
		ProviderID:   in.ProviderID,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID,
		nullable(u.Email),
		nullable(u.PhoneNumber),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Picture,
		u.Provider,
		u.ProviderID,
		u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "email"):
			return nil, multiAuth.ErrDuplicateEmail
		case isUniqueViolation(err, "phone_number"):
			return nil, multiAuth.ErrDuplicatePhoneNumber
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *SQL) findOne(ctx context.Context, query string, args ...any) (*multiAuth.User, error) {
	var (
		u         multiAuth.User
		email     sql.NullString
		phone     sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(
		&u.ID,
		&email,
		&phone,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Picture,
		&u.Provider,
		&u.ProviderID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Email = email.String
	u.PhoneNumber = phone.String
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}

// rebind rewrites ? placeholders as $n for Postgres.
func (s *SQL) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func isUniqueViolation(err error, column string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, column)
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: users."+column)
}
