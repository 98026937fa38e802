package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	medicalDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/medical"
	"github.com/dmitrivolkov/safety-management/internal/medical"
)

type MedicalRepository struct {
	db *gorm.DB
}

func NewMedicalRepository(db *gorm.DB) medical.RepositoryAPI {
	return &MedicalRepository{db: db}
}

// employeeDescriptor qualifies attribution columns for queries joined onto
// employees.
func employeeDescriptor() accessctl.Descriptor {
	return accessctl.Descriptor{
		Capabilities: accessctl.Capabilities{
			HasOrganization: true,
			HasSubdivision:  true,
			HasDepartment:   true,
		},
		OrganizationColumn: "employees.organization_id",
		SubdivisionColumn:  "employees.subdivision_id",
		DepartmentColumn:   "employees.department_id",
	}
}

func (r *MedicalRepository) GetTypes() ([]*medicalDatamodel.ExaminationType, error) {
	var types []*medicalDatamodel.ExaminationType
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *MedicalRepository) GetTypeByID(id int64) (*medicalDatamodel.ExaminationType, error) {
	var t medicalDatamodel.ExaminationType
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *MedicalRepository) CreateType(t *medicalDatamodel.ExaminationType) error {
	return r.db.Create(t).Error
}

func (r *MedicalRepository) UpdateType(t *medicalDatamodel.ExaminationType) error {
	return r.db.Save(t).Error
}

func (r *MedicalRepository) CreateExamination(e *medicalDatamodel.MedicalExamination) error {
	return r.db.Create(e).Error
}

func (r *MedicalRepository) GetExaminationByID(id int64) (*medicalDatamodel.MedicalExamination, error) {
	var e medicalDatamodel.MedicalExamination
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *MedicalRepository) GetExaminationsForEmployee(employeeID int64) ([]*medicalDatamodel.MedicalExamination, error) {
	var exams []*medicalDatamodel.MedicalExamination
	err := r.db.Where("employee_id = ?", employeeID).Order("exam_date DESC").Find(&exams).Error
	return exams, err
}

func (r *MedicalRepository) ListDue(ctx context.Context, scope *accessctl.Scope, deadline time.Time) ([]*medicalDatamodel.MedicalExamination, error) {
	query := r.db.Model(&medicalDatamodel.MedicalExamination{}).
		Joins("JOIN employees ON employees.id = medical_examinations.employee_id").
		Where("medical_examinations.next_exam_date IS NOT NULL AND medical_examinations.next_exam_date <= ?", deadline)

	query, err := accessctl.FilterQuery(ctx, query, employeeDescriptor(), scope)
	if err != nil {
		return nil, err
	}

	var exams []*medicalDatamodel.MedicalExamination
	err = query.Order("medical_examinations.next_exam_date ASC").Find(&exams).Error
	return exams, err
}
