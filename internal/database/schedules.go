package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ScheduleRecord represents a task/schedule row. Optional columns are nil when NULL.
type ScheduleRecord struct {
	ID           int64
	UserID       string
	Title        string
	Description  *string
	DueDate      *string
	Category     *string
	Completed    bool
	Priority     *string
	ReminderTime *string
	Recurring    *string
}

const scheduleColumns = `id, user_id, title, description, due_date, category, completed, priority, reminder_time, recurring`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*ScheduleRecord, error) {
	var s ScheduleRecord
	var description, dueDate, category, priority, reminderTime, recurring sql.NullString
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &description, &dueDate, &category,
		&s.Completed, &priority, &reminderTime, &recurring)
	if err != nil {
		return nil, err
	}
	s.Description = nullStringToPtr(description)
	s.DueDate = nullStringToPtr(dueDate)
	s.Category = nullStringToPtr(category)
	s.Priority = nullStringToPtr(priority)
	s.ReminderTime = nullStringToPtr(reminderTime)
	s.Recurring = nullStringToPtr(recurring)
	return &s, nil
}

// ListSchedules returns every schedule owned by userID ordered by id
func (db *DB) ListSchedules(ctx context.Context, userID string) ([]*ScheduleRecord, error) {
	rows, err := db.query(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]*ScheduleRecord, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// GetSchedule retrieves a schedule by id scoped to userID. It returns nil when
// no such schedule exists for that owner.
func (db *DB) GetSchedule(ctx context.Context, id int64, userID string) (*ScheduleRecord, error) {
	s, err := scanSchedule(db.queryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return s, nil
}

// CreateSchedule inserts s and sets its ID
func (db *DB) CreateSchedule(ctx context.Context, s *ScheduleRecord) error {
	result, err := db.exec(ctx, `
		INSERT INTO schedules (user_id, title, description, due_date, category, completed, priority, reminder_time, recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.UserID, s.Title, s.Description, s.DueDate, s.Category, s.Completed, s.Priority, s.ReminderTime, s.Recurring)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get schedule id: %w", err)
	}
	s.ID = id
	return nil
}

// UpdateSchedule loads the schedule, passes it to apply and writes the result
// back, all inside one transaction. It returns nil when the schedule does not
// exist for userID. An error from apply aborts the update and is returned as is.
func (db *DB) UpdateSchedule(ctx context.Context, id int64, userID string, apply func(*ScheduleRecord) error) (*ScheduleRecord, error) {
	var updated *ScheduleRecord
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		s, err := scanSchedule(tx.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ? AND user_id = ?`, id, userID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get schedule: %w", err)
		}

		if err := apply(s); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE schedules SET title = ?, description = ?, due_date = ?, category = ?, completed = ?,
				priority = ?, reminder_time = ?, recurring = ?
			WHERE id = ? AND user_id = ?
		`, s.Title, s.Description, s.DueDate, s.Category, s.Completed, s.Priority, s.ReminderTime, s.Recurring, id, userID)
		if err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}

		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSchedule removes a schedule scoped to userID and reports whether a row was deleted
func (db *DB) DeleteSchedule(ctx context.Context, id int64, userID string) (bool, error) {
	result, err := db.exec(ctx, "DELETE FROM schedules WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
