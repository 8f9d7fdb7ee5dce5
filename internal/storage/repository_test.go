package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
	"github.com/google/uuid"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository) core.User {
	t.Helper()
	user := core.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func seedCategory(t *testing.T, repo *Repository, userID string) core.Category {
	t.Helper()
	cat := core.Category{ID: uuid.NewString(), UserID: userID, Name: "Food"}
	if err := repo.CreateCategory(context.Background(), cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return cat
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := core.User{ID: uuid.NewString(), Email: "Alice@Example.com", PasswordHash: "hash"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Email lookup is case-insensitive.
	found, err := repo.FindUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("found.ID = %q, want %q", found.ID, user.ID)
	}

	if _, err := repo.FindUserByEmail(ctx, "nobody@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, core.User{ID: "u1", Email: "a@b.c", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := repo.CreateUser(ctx, core.User{ID: "u2", Email: "A@B.C", PasswordHash: "x"}); err == nil {
		t.Fatal("duplicate email (case-insensitive) must be rejected by the unique index")
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo)
	cat := seedCategory(t, repo, user.ID)

	start, _ := core.ParseDate("2024-03-01")
	end, _ := core.ParseDate("2024-05-31")
	exp := core.Expense{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Amount:     core.Money{Cents: 10000},
		Type:       core.Recurring,
		CategoryID: cat.ID,
		StartDate:  start,
		EndDate:    end,
		Receipt: &core.Receipt{
			Filename:     "abc.pdf",
			OriginalName: "facture.pdf",
			MimeType:     "application/pdf",
			Size:         1234,
		},
	}
	if err := repo.CreateExpense(ctx, exp); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	got, err := repo.GetExpense(ctx, user.ID, exp.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Type != core.Recurring || got.StartDate.String() != "2024-03-01" || got.EndDate.String() != "2024-05-31" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Date.IsZero() {
		t.Fatal("recurring expense must have no one-time date")
	}
	if got.Receipt == nil || got.Receipt.Filename != "abc.pdf" || got.Receipt.Size != 1234 {
		t.Fatalf("receipt round trip mismatch: %+v", got.Receipt)
	}

	// Ownership scoping: another user cannot see or delete it.
	other := seedUser(t, repo)
	if _, err := repo.GetExpense(ctx, other.ID, exp.ID); err != ErrNotFound {
		t.Fatalf("cross-user GetExpense err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, other.ID, exp.ID); err != ErrNotFound {
		t.Fatalf("cross-user DeleteExpense err = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteExpense(ctx, user.ID, exp.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, user.ID, exp.ID); err != ErrNotFound {
		t.Fatalf("after delete err = %v, want ErrNotFound", err)
	}
}

func TestIncomeUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo)

	date, _ := core.ParseDate("2024-04-01")
	inc := core.Income{ID: uuid.NewString(), UserID: user.ID, Amount: core.Money{Cents: 5000}, Date: date, Source: "salary"}
	if err := repo.CreateIncome(ctx, inc); err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	inc.Amount = core.Money{Cents: 7500}
	inc.Description = "raise"
	if err := repo.UpdateIncome(ctx, inc); err != nil {
		t.Fatalf("UpdateIncome: %v", err)
	}

	got, err := repo.GetIncome(ctx, user.ID, inc.ID)
	if err != nil {
		t.Fatalf("GetIncome: %v", err)
	}
	if got.Amount.Cents != 7500 || got.Description != "raise" {
		t.Fatalf("update not persisted: %+v", got)
	}

	list, err := repo.ListIncomesByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListIncomesByUser: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}
}

func TestCategoryInUse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo)
	cat := seedCategory(t, repo, user.ID)

	used, err := repo.CategoryInUse(ctx, user.ID, cat.ID)
	if err != nil {
		t.Fatalf("CategoryInUse: %v", err)
	}
	if used {
		t.Fatal("unused category reported as in use")
	}

	date, _ := core.ParseDate("2024-04-10")
	exp := core.Expense{
		ID: uuid.NewString(), UserID: user.ID, Amount: core.Money{Cents: 100},
		Type: core.OneTime, Date: date, CategoryID: cat.ID,
	}
	if err := repo.CreateExpense(ctx, exp); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	used, err = repo.CategoryInUse(ctx, user.ID, cat.ID)
	if err != nil {
		t.Fatalf("CategoryInUse: %v", err)
	}
	if !used {
		t.Fatal("referenced category must be reported as in use")
	}
}

func TestExportStatusFlow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo)
	cat := seedCategory(t, repo, user.ID)

	date, _ := core.ParseDate("2024-04-10")
	exp := core.Expense{
		ID: uuid.NewString(), UserID: user.ID, Amount: core.Money{Cents: 100},
		Type: core.OneTime, Date: date, CategoryID: cat.ID,
	}
	if err := repo.CreateExpense(ctx, exp); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingExport: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != exp.ID {
		t.Fatalf("pending = %+v", pending)
	}

	if err := repo.MarkExported(ctx, exp.ID); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
	pending, err = repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingExport: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after sync = %d, want 0", len(pending))
	}
}
