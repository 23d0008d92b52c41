package bulk

import (
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("bulk job not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(job *Job) error {
	_, err := r.db.Exec(`
		INSERT INTO bulk_jobs (id, user_id, status, file_path, result_path, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.UserID, job.Status, job.FilePath, job.ResultPath, job.ErrorMessage, job.CreatedAt)
	return err
}

func (r *Repository) GetByID(id string) (*Job, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, status, file_path, result_path, error_message, created_at, completed_at
		FROM bulk_jobs WHERE id = ?
	`, id)
	return scanJob(row)
}

func (r *Repository) ListByUser(userID string, limit, offset int) ([]*Job, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, status, file_path, result_path, error_message, created_at, completed_at
		FROM bulk_jobs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ClaimNext moves the oldest pending job to processing and returns it. The
// conditional UPDATE makes the claim safe when several workers poll the same
// table; a nil job means the queue is empty.
func (r *Repository) ClaimNext() (*Job, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM bulk_jobs WHERE status = ? ORDER BY created_at ASC LIMIT 1
	`, StatusPending).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := r.db.Exec(`
		UPDATE bulk_jobs SET status = ? WHERE id = ? AND status = ?
	`, StatusProcessing, id, StatusPending)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Another worker got there first.
		return nil, nil
	}

	return r.GetByID(id)
}

// MarkCompleted persists the result path together with the terminal status so
// a completed job never lacks its archive.
func (r *Repository) MarkCompleted(id, resultPath string) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE bulk_jobs SET status = ?, result_path = ?, completed_at = ? WHERE id = ?
	`, StatusCompleted, resultPath, now, id)
	return err
}

func (r *Repository) MarkFailed(id, message string) error {
	now := time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE bulk_jobs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?
	`, StatusFailed, message, now, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var completedAt sql.NullInt64
	err := row.Scan(&job.ID, &job.UserID, &job.Status, &job.FilePath, &job.ResultPath, &job.ErrorMessage, &job.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Int64
	}
	return &job, nil
}
