package event

import (
	"errors"

	"gorm.io/gorm"
)

// EventRepository defines the interface for event lookups.
type EventRepository interface {
	CreateEvent(event *Event) error
	GetEventByID(id uint) (*Event, error)
	GetAllEvents(page, limit int) ([]Event, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new instance of EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(event *Event) error {
	return r.db.Create(event).Error
}

func (r *eventRepository) GetEventByID(id uint) (*Event, error) {
	var event Event
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) GetAllEvents(page, limit int) ([]Event, int64, error) {
	var events []Event
	var total int64
	query := r.db.Model(&Event{})
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("starts_at desc").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
