package mysql

import (
	"context"
	"database/sql"
	"errors"
	"job-portal/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
        SELECT id, name, email, role, created_at
        FROM users WHERE id = ?
    `

	var user domain.User
	var role string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user.Role = domain.Role(role)
	return &user, nil
}

func (r *MySQLUserRepository) ListUserIDsByRole(ctx context.Context, role domain.Role) ([]string, error) {
	query := `SELECT id FROM users WHERE role = ? ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
