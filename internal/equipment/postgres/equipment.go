package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	equipmentDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/equipment"
	"github.com/dmitrivolkov/safety-management/internal/equipment"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) equipment.RepositoryAPI {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) List(ctx context.Context, scope *accessctl.Scope) ([]*equipmentDatamodel.Equipment, error) {
	query := r.db.Model(&equipmentDatamodel.Equipment{})

	query, err := accessctl.FilterQuery(ctx, query, equipment.Descriptor(), scope)
	if err != nil {
		return nil, err
	}

	var items []*equipmentDatamodel.Equipment
	err = query.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *EquipmentRepository) ListDue(ctx context.Context, scope *accessctl.Scope, deadline time.Time) ([]*equipmentDatamodel.Equipment, error) {
	query := r.db.Model(&equipmentDatamodel.Equipment{}).
		Where("next_maintenance_date IS NOT NULL AND next_maintenance_date <= ?", deadline)

	query, err := accessctl.FilterQuery(ctx, query, equipment.Descriptor(), scope)
	if err != nil {
		return nil, err
	}

	var items []*equipmentDatamodel.Equipment
	err = query.Order("next_maintenance_date ASC").Find(&items).Error
	return items, err
}

func (r *EquipmentRepository) ListAllDue(deadline time.Time) ([]*equipmentDatamodel.Equipment, error) {
	var items []*equipmentDatamodel.Equipment
	err := r.db.
		Where("next_maintenance_date IS NOT NULL AND next_maintenance_date <= ?", deadline).
		Order("next_maintenance_date ASC").
		Find(&items).Error
	return items, err
}

func (r *EquipmentRepository) GetByID(id int64) (*equipmentDatamodel.Equipment, error) {
	var item equipmentDatamodel.Equipment
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *EquipmentRepository) Create(eq *equipmentDatamodel.Equipment) error {
	return r.db.Create(eq).Error
}

func (r *EquipmentRepository) Update(eq *equipmentDatamodel.Equipment) error {
	return r.db.Save(eq).Error
}

func (r *EquipmentRepository) Delete(id int64) error {
	return r.db.Delete(&equipmentDatamodel.Equipment{}, id).Error
}
