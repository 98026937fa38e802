package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	employeeDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/employee"
	"github.com/dmitrivolkov/safety-management/internal/employee"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) List(ctx context.Context, scope *accessctl.Scope, filter employee.ListFilter) ([]*employeeDatamodel.Employee, error) {
	query := r.db.Model(&employeeDatamodel.Employee{})

	query, err := accessctl.FilterQuery(ctx, query, employee.Descriptor(), scope)
	if err != nil {
		return nil, err
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PositionID > 0 {
		query = query.Where("position_id = ?", filter.PositionID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var employees []*employeeDatamodel.Employee
	err = query.Order("full_name ASC").Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) GetByID(id int64) (*employeeDatamodel.Employee, error) {
	var emp employeeDatamodel.Employee
	err := r.db.Where("id = ?", id).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) Create(emp *employeeDatamodel.Employee) error {
	return r.db.Create(emp).Error
}

func (r *EmployeeRepository) Update(emp *employeeDatamodel.Employee) error {
	return r.db.Save(emp).Error
}

func (r *EmployeeRepository) Delete(id int64) error {
	return r.db.Delete(&employeeDatamodel.Employee{}, id).Error
}

func (r *EmployeeRepository) GetPositions() ([]*employeeDatamodel.Position, error) {
	var positions []*employeeDatamodel.Position
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&positions).Error
	return positions, err
}

func (r *EmployeeRepository) GetPositionByID(id int64) (*employeeDatamodel.Position, error) {
	var pos employeeDatamodel.Position
	err := r.db.Where("id = ?", id).First(&pos).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pos, nil
}

func (r *EmployeeRepository) CreatePosition(pos *employeeDatamodel.Position) error {
	return r.db.Create(pos).Error
}

func (r *EmployeeRepository) UpdatePosition(pos *employeeDatamodel.Position) error {
	return r.db.Save(pos).Error
}
