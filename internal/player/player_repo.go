package player

import (
	"errors"

	"gorm.io/gorm"
)

// PlayerRepository defines the interface for registration data operations
type PlayerRepository interface {
	CreateRegistration(reg *Registration) error
	GetRegistrationByID(id uint) (*Registration, error)
	GetAllRegistrations(page, limit int, filters map[string]interface{}) ([]Registration, int64, error)
	UpdateRegistration(reg *Registration) error
}

type playerRepository struct {
	db *gorm.DB
}

// NewPlayerRepository creates a new instance of PlayerRepository
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) CreateRegistration(reg *Registration) error {
	return r.db.Create(reg).Error
}

func (r *playerRepository) GetRegistrationByID(id uint) (*Registration, error) {
	var reg Registration
	if err := r.db.First(&reg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *playerRepository) GetAllRegistrations(page, limit int, filters map[string]interface{}) ([]Registration, int64, error) {
	var regs []Registration
	var total int64

	query := r.db.Model(&Registration{})

	if category, ok := filters["category"]; ok {
		query = query.Where("category = ?", category)
	}
	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if icon, ok := filters["icon_player_request"]; ok {
		query = query.Where("icon_player_request = ?", icon)
	}

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&regs).Error; err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *playerRepository) UpdateRegistration(reg *Registration) error {
	return r.db.Save(reg).Error
}
