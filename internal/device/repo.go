package device

import (
	"errors"

	"github.com/robgonnella/aegis/internal/exception"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SqliteRepo is our repo implementation for sqlite
type SqliteRepo struct {
	db *gorm.DB
}

// NewSqliteRepo returns a new device sqlite repo
func NewSqliteRepo(db *gorm.DB) *SqliteRepo {
	return &SqliteRepo{
		db: db,
	}
}

// GetAll returns all devices, most recently seen first
func (r *SqliteRepo) GetAll() ([]*Device, error) {
	models := []DeviceModel{}

	if result := r.db.Order("last_seen desc").Find(&models); result.Error != nil {
		return nil, result.Error
	}

	devices := []*Device{}

	for i := range models {
		d, err := modelToDevice(&models[i])

		if err != nil {
			return nil, err
		}

		devices = append(devices, d)
	}

	return devices, nil
}

// GetByMAC returns a device by its hardware address
func (r *SqliteRepo) GetByMAC(mac string) (*Device, error) {
	if mac == "" {
		return nil, errors.New("device mac cannot be empty")
	}

	model := DeviceModel{}

	if result := r.db.Where("mac = ?", mac).First(&model); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, exception.ErrRecordNotFound
		}

		return nil, result.Error
	}

	return modelToDevice(&model)
}

// GetByIP returns the most recently seen device holding the given ip
func (r *SqliteRepo) GetByIP(ip string) (*Device, error) {
	model := DeviceModel{}

	result := r.db.Where("ip = ?", ip).Order("last_seen desc").First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, exception.ErrRecordNotFound
		}

		return nil, result.Error
	}

	return modelToDevice(&model)
}

// Save creates or fully replaces a device keyed by mac
func (r *SqliteRepo) Save(d *Device) (*Device, error) {
	if d.MAC == "" {
		return nil, errors.New("device mac cannot be empty")
	}

	model, err := deviceToModel(d)

	if err != nil {
		return nil, err
	}

	result := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(model)

	if result.Error != nil {
		return nil, result.Error
	}

	return modelToDevice(model)
}

// Count returns the number of stored devices
func (r *SqliteRepo) Count() (int64, error) {
	var count int64

	if result := r.db.Model(&DeviceModel{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// DeleteAll removes every stored device
func (r *SqliteRepo) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&DeviceModel{}).Error
}
