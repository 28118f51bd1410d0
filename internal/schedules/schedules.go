// Package schedules implements the per-owner task/schedule store on top of the
// database package.
package schedules

import (
	"context"
	"errors"

	"github.com/saltyorg/schedulr/internal/database"
)

const (
	DefaultPriority  = "medium"
	DefaultRecurring = "none"
)

// ErrTitleRequired is returned when an update would leave a schedule without a title
var ErrTitleRequired = errors.New("title cannot be empty")

// Schedule is the JSON representation of a stored schedule
type Schedule struct {
	ID           int64   `json:"id"`
	UserID       string  `json:"user_id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	DueDate      *string `json:"due_date"`
	Category     *string `json:"category"`
	Completed    bool    `json:"completed"`
	Priority     *string `json:"priority"`
	ReminderTime *string `json:"reminder_time"`
	Recurring    *string `json:"recurring"`
}

// NewSchedule is the body of a create request. Omitted or null priority and
// recurring fall back to their defaults.
type NewSchedule struct {
	Title        string  `json:"title" validate:"required"`
	Description  *string `json:"description"`
	DueDate      *string `json:"due_date"`
	Category     *string `json:"category"`
	Completed    bool    `json:"completed"`
	Priority     *string `json:"priority"`
	ReminderTime *string `json:"reminder_time"`
	Recurring    *string `json:"recurring"`
}

// Patch is the body of an update request. Only keys present in the body are written.
type Patch struct {
	Title        Field[string] `json:"title"`
	Description  Field[string] `json:"description"`
	DueDate      Field[string] `json:"due_date"`
	Category     Field[string] `json:"category"`
	Completed    Field[bool]   `json:"completed"`
	Priority     Field[string] `json:"priority"`
	ReminderTime Field[string] `json:"reminder_time"`
	Recurring    Field[string] `json:"recurring"`
}

// Apply writes the set fields of p onto s. A null completed flag clears it.
func (p Patch) Apply(s *database.ScheduleRecord) error {
	if p.Title.Set {
		if p.Title.Value == nil || *p.Title.Value == "" {
			return ErrTitleRequired
		}
		s.Title = *p.Title.Value
	}
	if p.Completed.Set {
		s.Completed = p.Completed.Value != nil && *p.Completed.Value
	}
	p.Description.apply(&s.Description)
	p.DueDate.apply(&s.DueDate)
	p.Category.apply(&s.Category)
	p.Priority.apply(&s.Priority)
	p.ReminderTime.apply(&s.ReminderTime)
	p.Recurring.apply(&s.Recurring)
	return nil
}

// Service stores schedules for a single owner
type Service struct {
	db    *database.DB
	owner string
}

// NewService creates a schedule service that scopes every operation to owner
func NewService(db *database.DB, owner string) *Service {
	return &Service{db: db, owner: owner}
}

// Owner returns the owner every schedule is stored under
func (s *Service) Owner() string {
	return s.owner
}

// List returns the owner's schedules ordered by id
func (s *Service) List(ctx context.Context) ([]*Schedule, error) {
	records, err := s.db.ListSchedules(ctx, s.owner)
	if err != nil {
		return nil, err
	}
	schedules := make([]*Schedule, 0, len(records))
	for _, r := range records {
		schedules = append(schedules, fromRecord(r))
	}
	return schedules, nil
}

// Get returns a schedule by id, or nil when the owner has no such schedule
func (s *Service) Get(ctx context.Context, id int64) (*Schedule, error) {
	record, err := s.db.GetSchedule(ctx, id, s.owner)
	if err != nil || record == nil {
		return nil, err
	}
	return fromRecord(record), nil
}

// Create stores a new schedule and returns it with its id
func (s *Service) Create(ctx context.Context, in NewSchedule) (*Schedule, error) {
	record := &database.ScheduleRecord{
		UserID:       s.owner,
		Title:        in.Title,
		Description:  in.Description,
		DueDate:      in.DueDate,
		Category:     in.Category,
		Completed:    in.Completed,
		Priority:     orDefault(in.Priority, DefaultPriority),
		ReminderTime: in.ReminderTime,
		Recurring:    orDefault(in.Recurring, DefaultRecurring),
	}
	if err := s.db.CreateSchedule(ctx, record); err != nil {
		return nil, err
	}
	return fromRecord(record), nil
}

// Update applies patch to the schedule with the given id. It returns nil when
// the owner has no such schedule and ErrTitleRequired when the patch clears the title.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*Schedule, error) {
	record, err := s.db.UpdateSchedule(ctx, id, s.owner, patch.Apply)
	if err != nil || record == nil {
		return nil, err
	}
	return fromRecord(record), nil
}

// Delete removes a schedule and reports whether it existed
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.db.DeleteSchedule(ctx, id, s.owner)
}

func orDefault(v *string, def string) *string {
	if v == nil {
		return &def
	}
	return v
}

func fromRecord(r *database.ScheduleRecord) *Schedule {
	return &Schedule{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Description:  r.Description,
		DueDate:      r.DueDate,
		Category:     r.Category,
		Completed:    r.Completed,
		Priority:     r.Priority,
		ReminderTime: r.ReminderTime,
		Recurring:    r.Recurring,
	}
}
