package pgstore

import (
	"context"

	"appraisal/internal/store"
)

const userColumns = "id, username, password_hash, email, full_name, is_active, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, translate(err)
}

func (p *PG) ListUsers(ctx context.Context) ([]store.User, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT `+userColumns+`
    FROM users
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []store.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (p *PG) GetUser(ctx context.Context, id int64) (store.User, error) {
	return scanUser(p.DB.QueryRow(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE id = $1
  `, id))
}

func (p *PG) GetUserByUsername(ctx context.Context, username string) (store.User, error) {
	return scanUser(p.DB.QueryRow(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE lower(username) = lower($1)
  `, username))
}

func (p *PG) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return scanUser(p.DB.QueryRow(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE lower(email) = lower($1)
  `, email))
}

func (p *PG) CreateUser(ctx context.Context, user store.User) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO users (username, password_hash, email, full_name, is_active)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, user.Username, user.PasswordHash, user.Email, user.FullName, user.IsActive).Scan(&id)
	return id, err
}

func (p *PG) UpdateUser(ctx context.Context, id int64, patch store.UserPatch) error {
	tag, err := p.DB.Exec(ctx, `
    UPDATE users
    SET username      = COALESCE($2, username),
        password_hash = COALESCE($3, password_hash),
        email         = COALESCE($4, email),
        full_name     = COALESCE($5, full_name),
        is_active     = COALESCE($6, is_active),
        updated_at    = now()
    WHERE id = $1
  `, id, patch.Username, patch.PasswordHash, patch.Email, patch.FullName, patch.IsActive)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) DeleteUser(ctx context.Context, id int64) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) ListRoles(ctx context.Context) ([]store.Role, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT id, name, description
    FROM roles
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []store.Role
	for rows.Next() {
		var role store.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (p *PG) GetRoleByName(ctx context.Context, name string) (store.Role, error) {
	var role store.Role
	err := p.DB.QueryRow(ctx, `
    SELECT id, name, description
    FROM roles
    WHERE name = $1
  `, name).Scan(&role.ID, &role.Name, &role.Description)
	return role, translate(err)
}

func (p *PG) CreateRole(ctx context.Context, role store.Role) (int64, error) {
	var id int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO roles (name, description)
    VALUES ($1,$2)
    RETURNING id
  `, role.Name, role.Description).Scan(&id)
	return id, err
}

func (p *PG) ListUserRoles(ctx context.Context, userID int64) ([]store.Role, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT r.id, r.name, r.description
    FROM user_roles ur
    JOIN roles r ON r.id = ur.role_id
    WHERE ur.user_id = $1
    ORDER BY r.id
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []store.Role
	for rows.Next() {
		var role store.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (p *PG) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := p.DB.Exec(ctx, `
    INSERT INTO user_roles (user_id, role_id)
    VALUES ($1,$2)
    ON CONFLICT DO NOTHING
  `, userID, roleID)
	return err
}

func (p *PG) RemoveRole(ctx context.Context, userID, roleID int64) error {
	tag, err := p.DB.Exec(ctx, `
    DELETE FROM user_roles
    WHERE user_id = $1 AND role_id = $2
  `, userID, roleID)
	if err != nil {
		return err
	}
	return rowsAffected(tag)
}

func (p *PG) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, `
      INSERT INTO user_roles (user_id, role_id) VALUES ($1,$2)
    `, userID, roleID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
