package db

import (
	"context"
	"errors"
	"strings"

	"appraisal/internal/auth"
	"appraisal/internal/platform/config"
	"appraisal/internal/store"
)

var defaultRoles = []store.Role{
	{Name: store.RoleAdministrator, Description: "Full access to every module"},
	{Name: store.RoleHRManager, Description: "Manages evaluations, employees and catalog data"},
	{Name: store.RoleDepartmentManager, Description: "Evaluates employees of the own department"},
	{Name: store.RoleEmployee, Description: "Views own profile and dashboard"},
}

var defaultCriteria = []store.Criterion{
	{Name: "Work Quality", Description: "Accuracy and quality of the delivered work", Weight: 2.0, MaxScore: 10, IsActive: true},
	{Name: "Work Quantity", Description: "Volume of work delivered against expectations", Weight: 1.5, MaxScore: 10, IsActive: true},
	{Name: "Punctuality", Description: "Meeting deadlines and attendance", Weight: 1.0, MaxScore: 10, IsActive: true},
	{Name: "Teamwork", Description: "Working within the team and cooperating with colleagues", Weight: 1.0, MaxScore: 10, IsActive: true},
	{Name: "Initiative and Creativity", Description: "Bringing up creative ideas and taking initiative", Weight: 1.5, MaxScore: 10, IsActive: true},
	{Name: "Communication Skills", Description: "Communicating effectively with colleagues and clients", Weight: 1.0, MaxScore: 10, IsActive: true},
	{Name: "Problem Solving", Description: "Solving problems and making sound decisions", Weight: 1.5, MaxScore: 10, IsActive: true},
	{Name: "Technical Skills", Description: "Command of the technical skills the job requires", Weight: 1.5, MaxScore: 10, IsActive: true},
}

// Seed is idempotent and works against any Store implementation, so both the
// memory and the postgres drivers start with the same baseline data.
func Seed(ctx context.Context, s store.Store, cfg config.Config) error {
	if err := ensureRoles(ctx, s); err != nil {
		return err
	}
	if err := ensureCriteria(ctx, s); err != nil {
		return err
	}
	return ensureAdminUser(ctx, s, cfg)
}

func ensureRoles(ctx context.Context, s store.Store) error {
	for _, role := range defaultRoles {
		_, err := s.GetRoleByName(ctx, role.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := s.CreateRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

// ensureCriteria installs the default criteria catalog on an empty store.
// Any existing criterion, active or not, marks the catalog as operator-owned
// and the seed leaves it alone.
func ensureCriteria(ctx context.Context, s store.Store) error {
	existing, err := s.ListCriteria(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, criterion := range defaultCriteria {
		if _, err := s.CreateCriterion(ctx, criterion); err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, s store.Store, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedAdminUsername) == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	if _, err := s.GetUserByUsername(ctx, cfg.SeedAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	userID, err := s.CreateUser(ctx, store.User{
		Username:     cfg.SeedAdminUsername,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: hash,
		FullName:     "System Administrator",
		IsActive:     true,
	})
	if err != nil {
		return err
	}

	adminRole, err := s.GetRoleByName(ctx, store.RoleAdministrator)
	if err != nil {
		return err
	}
	return s.AssignRole(ctx, userID, adminRole.ID)
}
