package db

import (
	"context"
	"testing"

	"appraisal/internal/platform/config"
	"appraisal/internal/store"
	"appraisal/internal/store/memstore"
)

func seedConfig() config.Config {
	return config.Config{
		SeedAdminUsername: "admin",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
	}
}

func TestSeedBaseline(t *testing.T) {
	m := memstore.New()
	ctx := context.Background()

	if err := Seed(ctx, m, seedConfig()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	roles, err := m.ListRoles(ctx)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != len(defaultRoles) {
		t.Fatalf("expected %d roles, got %d", len(defaultRoles), len(roles))
	}

	criteria, err := m.ListActiveCriteria(ctx)
	if err != nil {
		t.Fatalf("list criteria: %v", err)
	}
	if len(criteria) != len(defaultCriteria) {
		t.Fatalf("expected %d active criteria, got %d", len(defaultCriteria), len(criteria))
	}

	admin, err := m.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin user missing: %v", err)
	}
	adminRoles, err := m.ListUserRoles(ctx, admin.ID)
	if err != nil {
		t.Fatalf("list admin roles: %v", err)
	}
	if len(adminRoles) != 1 || adminRoles[0].Name != store.RoleAdministrator {
		t.Fatalf("expected the Administrator role assigned, got %+v", adminRoles)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	m := memstore.New()
	ctx := context.Background()

	if err := Seed(ctx, m, seedConfig()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(ctx, m, seedConfig()); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	roles, _ := m.ListRoles(ctx)
	criteria, _ := m.ListCriteria(ctx)
	users, _ := m.ListUsers(ctx)
	if len(roles) != len(defaultRoles) || len(criteria) != len(defaultCriteria) || len(users) != 1 {
		t.Fatalf("re-seed duplicated data: %d roles, %d criteria, %d users", len(roles), len(criteria), len(users))
	}
}

func TestSeedLeavesOperatorCatalogAlone(t *testing.T) {
	m := memstore.New()
	ctx := context.Background()

	if _, err := m.CreateCriterion(ctx, store.Criterion{Name: "Custom", Weight: 1, MaxScore: 5, IsActive: true}); err != nil {
		t.Fatalf("create criterion: %v", err)
	}
	if err := Seed(ctx, m, seedConfig()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	criteria, err := m.ListCriteria(ctx)
	if err != nil {
		t.Fatalf("list criteria: %v", err)
	}
	if len(criteria) != 1 || criteria[0].Name != "Custom" {
		t.Fatalf("expected the existing catalog untouched, got %+v", criteria)
	}
}
