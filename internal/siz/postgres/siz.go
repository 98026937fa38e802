package postgres

import (
	"errors"

	"gorm.io/gorm"

	sizDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/siz"
	"github.com/dmitrivolkov/safety-management/internal/siz"
)

type SIZRepository struct {
	db *gorm.DB
}

func NewSIZRepository(db *gorm.DB) siz.RepositoryAPI {
	return &SIZRepository{db: db}
}

func (r *SIZRepository) GetAll() ([]*sizDatamodel.SIZ, error) {
	var items []*sizDatamodel.SIZ
	err := r.db.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *SIZRepository) GetByID(id int64) (*sizDatamodel.SIZ, error) {
	var item sizDatamodel.SIZ
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *SIZRepository) Create(item *sizDatamodel.SIZ) error {
	return r.db.Create(item).Error
}

func (r *SIZRepository) Update(item *sizDatamodel.SIZ) error {
	return r.db.Save(item).Error
}

func (r *SIZRepository) Delete(id int64) error {
	return r.db.Delete(&sizDatamodel.SIZ{}, id).Error
}

func (r *SIZRepository) CountReferences(id int64) (int64, error) {
	var total int64

	var norms int64
	if err := r.db.Model(&sizDatamodel.SIZNorm{}).Where("siz_id = ?", id).Count(&norms).Error; err != nil {
		return 0, err
	}
	total += norms

	var issued int64
	if err := r.db.Model(&sizDatamodel.SIZIssued{}).Where("siz_id = ?", id).Count(&issued).Error; err != nil {
		return 0, err
	}
	total += issued

	return total, nil
}

func (r *SIZRepository) GetNormsForPosition(positionID int64) ([]*sizDatamodel.SIZNorm, error) {
	var norms []*sizDatamodel.SIZNorm
	err := r.db.Where("position_id = ?", positionID).Order("id ASC").Find(&norms).Error
	return norms, err
}

func (r *SIZRepository) GetNormByID(id int64) (*sizDatamodel.SIZNorm, error) {
	var norm sizDatamodel.SIZNorm
	err := r.db.Where("id = ?", id).First(&norm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &norm, nil
}

func (r *SIZRepository) CreateNorm(norm *sizDatamodel.SIZNorm) error {
	return r.db.Create(norm).Error
}

func (r *SIZRepository) DeleteNorm(id int64) error {
	return r.db.Delete(&sizDatamodel.SIZNorm{}, id).Error
}

func (r *SIZRepository) CreateIssued(issued *sizDatamodel.SIZIssued) error {
	return r.db.Create(issued).Error
}

func (r *SIZRepository) GetIssuedByID(id int64) (*sizDatamodel.SIZIssued, error) {
	var issued sizDatamodel.SIZIssued
	err := r.db.Where("id = ?", id).First(&issued).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &issued, nil
}

func (r *SIZRepository) UpdateIssued(issued *sizDatamodel.SIZIssued) error {
	return r.db.Save(issued).Error
}

func (r *SIZRepository) GetIssuedForEmployee(employeeID int64) ([]*sizDatamodel.SIZIssued, error) {
	var issued []*sizDatamodel.SIZIssued
	err := r.db.Where("employee_id = ?", employeeID).Order("issue_date DESC").Find(&issued).Error
	return issued, err
}
