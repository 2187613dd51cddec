package mysql

import (
	"context"
	"database/sql"
)

type MySQLApplicationRepository struct {
	db *sql.DB
}

func NewMySQLApplicationRepository(db *sql.DB) *MySQLApplicationRepository {
	return &MySQLApplicationRepository{db: db}
}

// ListApplicantIDs returns each applicant once, even if they applied twice.
func (r *MySQLApplicationRepository) ListApplicantIDs(ctx context.Context, jobID string) ([]string, error) {
	query := `
        SELECT DISTINCT applicant_id
        FROM applications
        WHERE job_id = ?
        ORDER BY applicant_id ASC
    `

	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIDs(rows)
}
