package accessctl

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// FilterQuery narrows a gorm query to the rows visible to the scope's user,
// using the record type's descriptor. Visibility follows the
// most-specific-field-wins rule: when the department column is populated only
// department-level access decides, then subdivision, then organization.
// Superusers get the query back unchanged; a user without a profile matches
// nothing. An empty result is a normal outcome, not an error.
func FilterQuery(ctx context.Context, db *gorm.DB, desc Descriptor, scope *Scope) (*gorm.DB, error) {
	if scope.Superuser() {
		return db, nil
	}

	grants, err := scope.Grants(ctx)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		return db.Where("1 = 0"), nil
	}

	if desc.None() {
		return db.Where("1 = 0"), nil
	}

	// Profiles granted only at the department level are pinned strictly to
	// records with a populated department field in the granted set; there is
	// no fallback to coarser fields.
	if grants.DepartmentOnly() && desc.HasDepartment {
		return db.Where(
			fmt.Sprintf("%s IS NOT NULL AND %s IN ?", desc.DepartmentColumn, desc.DepartmentColumn),
			grants.Departments.IDs(),
		), nil
	}

	var (
		orgs, subs, depts IDSet
	)
	if desc.HasOrganization {
		if orgs, err = scope.Organizations(ctx); err != nil {
			return nil, err
		}
	}
	if desc.HasSubdivision {
		if subs, err = scope.Subdivisions(ctx); err != nil {
			return nil, err
		}
	}
	if desc.HasDepartment {
		if depts, err = scope.Departments(ctx); err != nil {
			return nil, err
		}
	}

	org, sub, dept := desc.OrganizationColumn, desc.SubdivisionColumn, desc.DepartmentColumn

	switch {
	case desc.HasDepartment && desc.HasSubdivision && desc.HasOrganization:
		return db.Where(
			fmt.Sprintf(
				"(%s IS NOT NULL AND %s IN ?) OR (%s IS NULL AND %s IS NOT NULL AND %s IN ?) OR (%s IS NULL AND %s IS NULL AND %s IN ?)",
				dept, dept, dept, sub, sub, dept, sub, org,
			),
			inList(depts), inList(subs), inList(orgs),
		), nil

	case desc.HasSubdivision && desc.HasOrganization:
		return db.Where(
			fmt.Sprintf(
				"(%s IS NOT NULL AND %s IN ?) OR (%s IS NULL AND %s IN ?)",
				sub, sub, sub, org,
			),
			inList(subs), inList(orgs),
		), nil

	case desc.HasDepartment && desc.HasOrganization:
		return db.Where(
			fmt.Sprintf(
				"(%s IS NOT NULL AND %s IN ?) OR (%s IS NULL AND %s IN ?)",
				dept, dept, dept, org,
			),
			inList(depts), inList(orgs),
		), nil

	case desc.HasOrganization:
		return db.Where(fmt.Sprintf("%s IN ?", org), inList(orgs)), nil

	case desc.HasSubdivision:
		return db.Where(fmt.Sprintf("%s IN ?", sub), inList(subs)), nil

	default:
		return db.Where(fmt.Sprintf("%s IN ?", dept), inList(depts)), nil
	}
}

// inList keeps IN clauses valid for empty sets; gorm renders an empty slice
// as IN (NULL), which matches nothing.
func inList(s IDSet) []int64 {
	if s == nil {
		return []int64{}
	}
	return s.IDs()
}

// FilterRecords applies the same visibility rule to an already loaded
// collection. Calling it twice with unchanged grants yields the same result.
func FilterRecords[T Attributed](ctx context.Context, scope *Scope, caps Capabilities, records []T) ([]T, error) {
	if scope.Superuser() {
		return records, nil
	}

	grants, err := scope.Grants(ctx)
	if err != nil {
		return nil, err
	}
	if grants == nil || caps.None() {
		return []T{}, nil
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		visible, err := visible(ctx, scope, grants, caps, rec.AccessAttribution())
		if err != nil {
			return nil, err
		}
		if visible {
			out = append(out, rec)
		}
	}
	return out, nil
}

func visible(ctx context.Context, scope *Scope, grants *Grants, caps Capabilities, attr Attribution) (bool, error) {
	if grants.DepartmentOnly() && caps.HasDepartment {
		return attr.DepartmentID != nil && grants.Departments.Has(*attr.DepartmentID), nil
	}

	if caps.HasDepartment && attr.DepartmentID != nil {
		depts, err := scope.Departments(ctx)
		if err != nil {
			return false, err
		}
		return depts.Has(*attr.DepartmentID), nil
	}

	if caps.HasSubdivision && attr.SubdivisionID != nil {
		subs, err := scope.Subdivisions(ctx)
		if err != nil {
			return false, err
		}
		return subs.Has(*attr.SubdivisionID), nil
	}

	if caps.HasOrganization && attr.OrganizationID != nil {
		orgs, err := scope.Organizations(ctx)
		if err != nil {
			return false, err
		}
		return orgs.Has(*attr.OrganizationID), nil
	}

	return false, nil
}
