package userstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	multiAuth "github.com/MrEthical07/multiAuth"
)

func newSQLiteStore(t *testing.T) *SQL {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "users.db")
	s, err := Open(context.Background(), DialectSQLite, dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate("up"); err != nil {
		t.Fatalf("Migrate up failed: %v", err)
	}
	return s
}

func directories(t *testing.T) map[string]multiAuth.UserDirectory {
	return map[string]multiAuth.UserDirectory{
		"memory": NewMemory(),
		"sqlite": newSQLiteStore(t),
	}
}

func TestDirectoryCreateAndFind(t *testing.T) {
	for name, dir := range directories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := dir.Create(ctx, multiAuth.CreateUserInput{
				Email:        "ada@example.com",
				PasswordHash: "hash",
				FirstName:    "Ada",
				LastName:     "Lovelace",
			})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if created.ID == "" || created.CreatedAt.IsZero() {
				t.Fatalf("expected id and timestamp, got %+v", created)
			}

			got, err := dir.FindByEmail(ctx, "ada@example.com")
			if err != nil {
				t.Fatalf("FindByEmail failed: %v", err)
			}
			if got == nil || got.ID != created.ID || got.PasswordHash != "hash" || got.LastName != "Lovelace" {
				t.Fatalf("unexpected user %+v", got)
			}
			if got.PhoneNumber != "" {
				t.Fatalf("expected empty phone number, got %q", got.PhoneNumber)
			}

			missing, err := dir.FindByEmail(ctx, "nobody@example.com")
			if err != nil || missing != nil {
				t.Fatalf("expected (nil, nil), got (%v, %v)", missing, err)
			}
		})
	}
}

func TestDirectoryPhoneAndProvider(t *testing.T) {
	for name, dir := range directories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := dir.Create(ctx, multiAuth.CreateUserInput{PhoneNumber: "+15550001", FirstName: "P"}); err != nil {
				t.Fatalf("Create phone user failed: %v", err)
			}
			// A second user without email must not collide on the empty email.
			if _, err := dir.Create(ctx, multiAuth.CreateUserInput{PhoneNumber: "+15550002", FirstName: "Q"}); err != nil {
				t.Fatalf("Create second phone user failed: %v", err)
			}
			fed, err := dir.Create(ctx, multiAuth.CreateUserInput{
				Email: "g@example.com", Provider: "google", ProviderID: "g-1",
			})
			if err != nil {
				t.Fatalf("Create federated user failed: %v", err)
			}

			byPhone, err := dir.FindByPhoneNumber(ctx, "+15550001")
			if err != nil || byPhone == nil || byPhone.FirstName != "P" {
				t.Fatalf("FindByPhoneNumber = %+v, %v", byPhone, err)
			}

			byProvider, err := dir.FindByProviderID(ctx, "g-1", "google")
			if err != nil || byProvider == nil || byProvider.ID != fed.ID {
				t.Fatalf("FindByProviderID = %+v, %v", byProvider, err)
			}
			if byProvider.PasswordHash != "" {
				t.Fatal("federated user must have no password hash")
			}

			other, err := dir.FindByProviderID(ctx, "g-1", "apple")
			if err != nil || other != nil {
				t.Fatalf("expected no apple match, got %+v, %v", other, err)
			}
		})
	}
}

func TestDirectoryDuplicates(t *testing.T) {
	for name, dir := range directories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := dir.Create(ctx, multiAuth.CreateUserInput{Email: "a@example.com", PhoneNumber: "+1555"}); err != nil {
				t.Fatal(err)
			}

			_, err := dir.Create(ctx, multiAuth.CreateUserInput{Email: "a@example.com"})
			if !errors.Is(err, multiAuth.ErrDuplicateEmail) {
				t.Fatalf("expected ErrDuplicateEmail, got %v", err)
			}

			_, err = dir.Create(ctx, multiAuth.CreateUserInput{Email: "b@example.com", PhoneNumber: "+1555"})
			if !errors.Is(err, multiAuth.ErrDuplicatePhoneNumber) {
				t.Fatalf("expected ErrDuplicatePhoneNumber, got %v", err)
			}

			if _, err := dir.Create(ctx, multiAuth.CreateUserInput{FirstName: "nobody"}); err == nil {
				t.Fatal("expected error without identifier")
			}
		})
	}
}

func TestSQLMigrateIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	if err := s.Migrate("up"); err != nil {
		t.Fatalf("second Migrate up failed: %v", err)
	}
	if err := s.Migrate("sideways"); err == nil {
		t.Fatal("expected invalid direction error")
	}
}

func TestRebind(t *testing.T) {
	pg := &SQL{dialect: DialectPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("unexpected rebind %q", got)
	}
	lite := &SQL{dialect: DialectSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite query must be unchanged, got %q", got)
	}
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "dsn"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Open(context.Background(), DialectSQLite, " "); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
