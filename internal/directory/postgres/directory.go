package postgres

import (
	"errors"

	"gorm.io/gorm"

	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
	"github.com/dmitrivolkov/safety-management/internal/directory"
)

type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) directory.RepositoryAPI {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) GetOrganizations(ids []int64) ([]*directoryDatamodel.Organization, error) {
	var orgs []*directoryDatamodel.Organization
	err := r.db.Where("id IN ?", ids).Order("short_name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *DirectoryRepository) GetOrganizationByID(id int64) (*directoryDatamodel.Organization, error) {
	var org directoryDatamodel.Organization
	err := r.db.Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *DirectoryRepository) CreateOrganization(org *directoryDatamodel.Organization) error {
	return r.db.Create(org).Error
}

func (r *DirectoryRepository) UpdateOrganization(org *directoryDatamodel.Organization) error {
	return r.db.Save(org).Error
}

func (r *DirectoryRepository) DeleteOrganization(id int64) error {
	return r.db.Delete(&directoryDatamodel.Organization{}, id).Error
}

// CountOrganizationReferences counts child rows that would dangle if the
// organization were removed.
func (r *DirectoryRepository) CountOrganizationReferences(id int64) (int64, error) {
	var total int64

	var subs int64
	if err := r.db.Model(&directoryDatamodel.Subdivision{}).Where("organization_id = ?", id).Count(&subs).Error; err != nil {
		return 0, err
	}
	total += subs

	var depts int64
	if err := r.db.Model(&directoryDatamodel.Department{}).Where("organization_id = ?", id).Count(&depts).Error; err != nil {
		return 0, err
	}
	total += depts

	var employees int64
	if err := r.db.Table("employees").Where("organization_id = ?", id).Count(&employees).Error; err != nil {
		return 0, err
	}
	total += employees

	return total, nil
}

func (r *DirectoryRepository) GetSubdivisions(ids []int64) ([]*directoryDatamodel.Subdivision, error) {
	var subs []*directoryDatamodel.Subdivision
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&subs).Error
	return subs, err
}

func (r *DirectoryRepository) GetSubdivisionByID(id int64) (*directoryDatamodel.Subdivision, error) {
	var sub directoryDatamodel.Subdivision
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *DirectoryRepository) CreateSubdivision(sub *directoryDatamodel.Subdivision) error {
	return r.db.Create(sub).Error
}

func (r *DirectoryRepository) UpdateSubdivision(sub *directoryDatamodel.Subdivision) error {
	return r.db.Save(sub).Error
}

func (r *DirectoryRepository) DeleteSubdivision(id int64) error {
	return r.db.Delete(&directoryDatamodel.Subdivision{}, id).Error
}

func (r *DirectoryRepository) CountSubdivisionReferences(id int64) (int64, error) {
	var total int64

	var depts int64
	if err := r.db.Model(&directoryDatamodel.Department{}).Where("subdivision_id = ?", id).Count(&depts).Error; err != nil {
		return 0, err
	}
	total += depts

	var employees int64
	if err := r.db.Table("employees").Where("subdivision_id = ?", id).Count(&employees).Error; err != nil {
		return 0, err
	}
	total += employees

	return total, nil
}

func (r *DirectoryRepository) GetDepartments(ids []int64) ([]*directoryDatamodel.Department, error) {
	var depts []*directoryDatamodel.Department
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&depts).Error
	return depts, err
}

func (r *DirectoryRepository) GetDepartmentByID(id int64) (*directoryDatamodel.Department, error) {
	var dept directoryDatamodel.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DirectoryRepository) CreateDepartment(dept *directoryDatamodel.Department) error {
	return r.db.Create(dept).Error
}

func (r *DirectoryRepository) UpdateDepartment(dept *directoryDatamodel.Department) error {
	return r.db.Save(dept).Error
}

func (r *DirectoryRepository) DeleteDepartment(id int64) error {
	return r.db.Delete(&directoryDatamodel.Department{}, id).Error
}

func (r *DirectoryRepository) CountDepartmentReferences(id int64) (int64, error) {
	var employees int64
	if err := r.db.Table("employees").Where("department_id = ?", id).Count(&employees).Error; err != nil {
		return 0, err
	}
	return employees, nil
}
