package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	"github.com/dmitrivolkov/safety-management/internal/auth"
	"github.com/dmitrivolkov/safety-management/internal/directory"
	"github.com/dmitrivolkov/safety-management/internal/employee"
	"github.com/dmitrivolkov/safety-management/internal/equipment"
	"github.com/dmitrivolkov/safety-management/internal/medical"
	"github.com/dmitrivolkov/safety-management/internal/siz"
	"github.com/dmitrivolkov/safety-management/internal/transport/middleware"
	"github.com/dmitrivolkov/safety-management/internal/transport/swagger"
	"github.com/dmitrivolkov/safety-management/internal/user"
)

// Permission names used by route guards. The seeder creates them.
const (
	PermDirectoryWrite = "directory:write"
	PermAccessAdmin    = "access:admin"
	PermEmployeeWrite  = "employees:write"
	PermSIZWrite       = "siz:write"
	PermMedicalWrite   = "medical:write"
	PermEquipmentWrite = "equipment:write"
)

type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	Directory *directory.Handler
	Employee  *employee.Handler
	SIZ       *siz.Handler
	Medical   *medical.Handler
	Equipment *equipment.Handler
}

// RegisterAllRoutes wires the HTTP surface: global middleware, public auth
// and health routes, then the authenticated API with per-request access
// scopes and permission guards on mutating routes.
func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, resolver *accessctl.Resolver, handlers Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db.DB)

	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Post("/logout", handlers.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)
			pr.Use(accessctl.Middleware(resolver))

			pr.Get("/users/me", handlers.User.GetCurrentUser)

			pr.Route("/organizations", func(or chi.Router) {
				or.Get("/", handlers.Directory.ListOrganizations)
				or.Get("/{id}", handlers.Directory.GetOrganization)

				or.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermDirectoryWrite))
					wr.Post("/", handlers.Directory.CreateOrganization)
					wr.Put("/{id}", handlers.Directory.UpdateOrganization)
					wr.Delete("/{id}", handlers.Directory.DeleteOrganization)
				})
			})

			pr.Route("/subdivisions", func(sr chi.Router) {
				sr.Get("/", handlers.Directory.ListSubdivisions)
				sr.Get("/{id}", handlers.Directory.GetSubdivision)

				sr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermDirectoryWrite))
					wr.Post("/", handlers.Directory.CreateSubdivision)
					wr.Put("/{id}", handlers.Directory.UpdateSubdivision)
					wr.Delete("/{id}", handlers.Directory.DeleteSubdivision)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", handlers.Directory.ListDepartments)
				dr.Get("/{id}", handlers.Directory.GetDepartment)

				dr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermDirectoryWrite))
					wr.Post("/", handlers.Directory.CreateDepartment)
					wr.Put("/{id}", handlers.Directory.UpdateDepartment)
					wr.Delete("/{id}", handlers.Directory.DeleteDepartment)
				})
			})

			pr.Route("/access-profiles", func(ar chi.Router) {
				ar.Use(middleware.RequirePermissions(PermAccessAdmin))
				ar.Post("/grant", handlers.Directory.GrantAccess)
				ar.Post("/revoke", handlers.Directory.RevokeAccess)
				ar.Get("/{userID}", handlers.Directory.GetUserGrants)
				ar.Patch("/{userID}/active", handlers.Directory.SetProfileActive)
			})

			pr.Route("/employees", func(er chi.Router) {
				er.Get("/", handlers.Employee.ListEmployees)

				er.Group(func(gr chi.Router) {
					gr.Use(accessctl.RequireObjectAccess(db, "employees", employee.Descriptor()))
					gr.Get("/{id}", handlers.Employee.GetEmployee)
				})

				er.Get("/{employeeID}/siz", handlers.SIZ.ListIssuedForEmployee)
				er.Get("/{employeeID}/examinations", handlers.Medical.ListForEmployee)

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermEmployeeWrite))
					wr.Post("/", handlers.Employee.CreateEmployee)
					wr.Put("/{id}", handlers.Employee.UpdateEmployee)
					wr.Patch("/{id}/status", handlers.Employee.UpdateEmployeeStatus)
					wr.Delete("/{id}", handlers.Employee.DeleteEmployee)
				})
			})

			pr.Route("/positions", func(psr chi.Router) {
				psr.Get("/", handlers.Employee.ListPositions)
				psr.Get("/{positionID}/siz-norms", handlers.SIZ.ListNorms)

				psr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermEmployeeWrite))
					wr.Post("/", handlers.Employee.CreatePosition)
				})
			})

			pr.Route("/siz", func(zr chi.Router) {
				zr.Get("/", handlers.SIZ.ListSIZ)
				zr.Get("/{id}", handlers.SIZ.GetSIZ)

				zr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermSIZWrite))
					wr.Post("/", handlers.SIZ.CreateSIZ)
					wr.Put("/{id}", handlers.SIZ.UpdateSIZ)
					wr.Delete("/{id}", handlers.SIZ.DeleteSIZ)
					wr.Post("/norms", handlers.SIZ.CreateNorm)
					wr.Delete("/norms/{id}", handlers.SIZ.DeleteNorm)
					wr.Post("/issue", handlers.SIZ.IssueSIZ)
					wr.Patch("/issued/{id}/return", handlers.SIZ.ReturnSIZ)
				})
			})

			pr.Route("/medical", func(mr chi.Router) {
				mr.Get("/types", handlers.Medical.ListTypes)
				mr.Get("/due", handlers.Medical.ListDue)

				mr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermMedicalWrite))
					wr.Post("/types", handlers.Medical.CreateType)
					wr.Post("/examinations", handlers.Medical.RecordExamination)
				})
			})

			pr.Route("/equipment", func(qr chi.Router) {
				qr.Get("/", handlers.Equipment.ListEquipment)
				qr.Get("/due", handlers.Equipment.ListDue)

				qr.Group(func(gr chi.Router) {
					gr.Use(accessctl.RequireObjectAccess(db, "equipment", equipment.Descriptor()))
					gr.Get("/{id}", handlers.Equipment.GetEquipment)
				})

				qr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(PermEquipmentWrite))
					wr.Post("/", handlers.Equipment.CreateEquipment)
					wr.Put("/{id}", handlers.Equipment.UpdateEquipment)
					wr.Patch("/{id}/maintenance", handlers.Equipment.CompleteMaintenance)
					wr.Delete("/{id}", handlers.Equipment.DeleteEquipment)
				})
			})
		})
	})
}
