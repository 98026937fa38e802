package directory

import (
	"time"

	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
)

type Organization struct {
	ID         int64     `json:"id"`
	FullName   string    `json:"full_name"`
	ShortName  string    `json:"short_name"`
	Requisites string    `json:"requisites,omitempty"`
	Location   string    `json:"location,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Subdivision struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ShortName      string    `json:"short_name,omitempty"`
	OrganizationID int64     `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Department struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ShortName      string    `json:"short_name,omitempty"`
	OrganizationID int64     `json:"organization_id"`
	SubdivisionID  *int64    `json:"subdivision_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func OrganizationFromDataModel(o *directoryDatamodel.Organization) *Organization {
	return &Organization{
		ID:         o.ID,
		FullName:   o.FullName,
		ShortName:  o.ShortName,
		Requisites: o.Requisites,
		Location:   o.Location,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func SubdivisionFromDataModel(s *directoryDatamodel.Subdivision) *Subdivision {
	return &Subdivision{
		ID:             s.ID,
		Name:           s.Name,
		ShortName:      s.ShortName,
		OrganizationID: s.OrganizationID,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func DepartmentFromDataModel(d *directoryDatamodel.Department) *Department {
	return &Department{
		ID:             d.ID,
		Name:           d.Name,
		ShortName:      d.ShortName,
		OrganizationID: d.OrganizationID,
		SubdivisionID:  d.SubdivisionID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
