package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGormDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			clearTables(db)
		}

		password := "password"
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		adminEmail := "admin@safety.local"
		seedUser(db, adminEmail, "Administrator", string(hash), true)

		engineerEmail := "engineer@safety.local"
		seedUser(db, engineerEmail, "Safety Engineer", string(hash), false)

		permissions := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"directory:write", "Can manage organizations, subdivisions and departments"},
			{"access:admin", "Can manage access profiles and grants"},
			{"employees:write", "Can manage employees and positions"},
			{"siz:write", "Can manage protective gear catalog, norms and issuance"},
			{"medical:write", "Can record medical examinations"},
			{"equipment:write", "Can manage equipment and maintenance"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		adminID := lookupUserID(db, adminEmail)
		for _, p := range permissions {
			grantPermission(db, adminID, p.Name)
		}
		fmt.Println("Granted all permissions to admin user:", adminEmail)

		engineerID := lookupUserID(db, engineerEmail)
		for _, name := range []string{"siz:write", "medical:write", "equipment:write"} {
			grantPermission(db, engineerID, name)
		}
		fmt.Println("Granted safety permissions to engineer user:", engineerEmail)

		orgID := seedOrganization(db, "Severstal Mining LLC", "Severstal", "Cherepovets, Industrial district 1")
		secondOrgID := seedOrganization(db, "Northern Energy JSC", "NorthEnergy", "Murmansk, Portovaya st. 14")

		subID := seedSubdivision(db, "Processing Plant", "PP", orgID)
		seedSubdivision(db, "Transport Division", "TD", orgID)
		seedSubdivision(db, "Generation Unit", "GU", secondOrgID)

		seedDepartment(db, "Crushing Department", orgID, &subID)
		seedDepartment(db, "Quality Control Lab", orgID, nil)

		positions := []string{"Electrician", "Machine Operator", "Safety Engineer", "Lab Technician"}
		for _, name := range positions {
			var pid int64
			if err := db.Raw("SELECT id FROM positions WHERE name = ?", name).Row().Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO positions (name, is_active, created_at, updated_at) VALUES (?, true, now(), now())", name).Error; err != nil {
					log.Fatalf("failed to insert position %s: %v", name, err)
				}
			}
		}

		seedEngineerProfile(db, engineerID, orgID)

		examTypes := []struct {
			Name   string
			Months int
		}{
			{"Periodic medical examination", 12},
			{"Psychiatric examination", 60},
			{"Pre-shift examination", 0},
		}
		for _, t := range examTypes {
			var tid int64
			if err := db.Raw("SELECT id FROM examination_types WHERE name = ?", t.Name).Row().Scan(&tid); err != nil {
				if err := db.Exec("INSERT INTO examination_types (name, periodicity_months, is_active, created_at) VALUES (?, ?, true, now())", t.Name, t.Months).Error; err != nil {
					log.Fatalf("failed to insert examination type %s: %v", t.Name, err)
				}
			}
		}

		fmt.Println("Seed completed")
	},
}

func clearTables(db *gorm.DB) {
	tables := []string{
		"siz_issued", "siz_norms", "siz",
		"medical_examinations", "examination_types",
		"equipment", "employees", "positions",
		"access_profile_departments", "access_profile_subdivisions", "access_profile_organizations", "access_profiles",
		"departments", "subdivisions", "organizations",
		"user_permissions", "permissions", "users",
	}
	for _, t := range tables {
		if err := db.Exec("DELETE FROM " + t).Error; err != nil {
			log.Fatalf("failed to clear table %s: %v", t, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedUser(db *gorm.DB, email, name, hash string, superuser bool) {
	var exists int
	if err := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row().Scan(&exists); err == nil {
		fmt.Println("user already exists:", email)
		return
	}
	if err := db.Exec("INSERT INTO users (email, name, password_hash, is_superuser, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
		email, name, hash, superuser).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}

func lookupUserID(db *gorm.DB, email string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
		log.Fatalf("failed to lookup user id for %s: %v", email, err)
	}
	return id
}

func grantPermission(db *gorm.DB, userID int64, permName string) {
	var pid int64
	if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&pid); err != nil {
		log.Fatalf("permission not found %s: %v", permName, err)
	}
	var exists int
	if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, pid).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id) VALUES (?, ?)", userID, pid).Error; err != nil {
		log.Fatalf("failed to grant permission %s: %v", permName, err)
	}
}

func seedOrganization(db *gorm.DB, fullName, shortName, location string) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM organizations WHERE full_name = ?", fullName).Row().Scan(&id); err == nil {
		return id
	}
	if err := db.Exec("INSERT INTO organizations (full_name, short_name, location, created_at, updated_at) VALUES (?, ?, ?, now(), now())",
		fullName, shortName, location).Error; err != nil {
		log.Fatalf("failed to insert organization %s: %v", fullName, err)
	}
	fmt.Println("Seeded organization:", shortName)
	return lookupID(db, "SELECT id FROM organizations WHERE full_name = ?", fullName)
}

func seedSubdivision(db *gorm.DB, name, shortName string, orgID int64) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM subdivisions WHERE name = ? AND organization_id = ?", name, orgID).Row().Scan(&id); err == nil {
		return id
	}
	if err := db.Exec("INSERT INTO subdivisions (name, short_name, organization_id, created_at, updated_at) VALUES (?, ?, ?, now(), now())",
		name, shortName, orgID).Error; err != nil {
		log.Fatalf("failed to insert subdivision %s: %v", name, err)
	}
	return lookupID(db, "SELECT id FROM subdivisions WHERE name = ? AND organization_id = ?", name, orgID)
}

func seedDepartment(db *gorm.DB, name string, orgID int64, subID *int64) {
	var id int64
	if err := db.Raw("SELECT id FROM departments WHERE name = ? AND organization_id = ?", name, orgID).Row().Scan(&id); err == nil {
		return
	}
	if err := db.Exec("INSERT INTO departments (name, organization_id, subdivision_id, created_at, updated_at) VALUES (?, ?, ?, now(), now())",
		name, orgID, subID).Error; err != nil {
		log.Fatalf("failed to insert department %s: %v", name, err)
	}
}

func seedEngineerProfile(db *gorm.DB, userID, orgID int64) {
	var profileID int64
	if err := db.Raw("SELECT id FROM access_profiles WHERE user_id = ?", userID).Row().Scan(&profileID); err != nil {
		if err := db.Exec("INSERT INTO access_profiles (user_id, is_active, created_at, updated_at) VALUES (?, true, now(), now())", userID).Error; err != nil {
			log.Fatalf("failed to insert access profile: %v", err)
		}
		profileID = lookupID(db, "SELECT id FROM access_profiles WHERE user_id = ?", userID)
	}

	var exists int
	if err := db.Raw("SELECT 1 FROM access_profile_organizations WHERE profile_id = ? AND organization_id = ?", profileID, orgID).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec("INSERT INTO access_profile_organizations (profile_id, organization_id) VALUES (?, ?)", profileID, orgID).Error; err != nil {
		log.Fatalf("failed to insert organization grant: %v", err)
	}
	fmt.Println("Granted engineer access to organization", orgID)
}

func lookupID(db *gorm.DB, query string, args ...interface{}) int64 {
	var id int64
	if err := db.Raw(query, args...).Row().Scan(&id); err != nil {
		log.Fatalf("lookup failed: %v", err)
	}
	return id
}
