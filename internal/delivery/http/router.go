package http

import (
	"net/http"

	"csystem-sip/internal/delivery/http/handler"
	"csystem-sip/internal/delivery/http/middleware"
	"csystem-sip/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router           *mux.Router
	authHandler      *handler.AuthHandler
	profileHandler   *handler.ProfileHandler
	clubHandler      *handler.ClubHandler
	moduleHandler    *handler.ModuleHandler
	documentHandler  *handler.DocumentHandler
	orderHandler     *handler.OrderHandler
	auditLogHandler  *handler.AuditLogHandler
	authMiddleware   *middleware.AuthMiddleware
	corsMiddleware   *middleware.CORSMiddleware
	loggerMiddleware *middleware.LoggerMiddleware
	uploads          http.Handler
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	clubHandler *handler.ClubHandler,
	moduleHandler *handler.ModuleHandler,
	documentHandler *handler.DocumentHandler,
	orderHandler *handler.OrderHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggerMiddleware *middleware.LoggerMiddleware,
	uploads http.Handler,
) *Router {
	return &Router{
		router:           mux.NewRouter(),
		authHandler:      authHandler,
		profileHandler:   profileHandler,
		clubHandler:      clubHandler,
		moduleHandler:    moduleHandler,
		documentHandler:  documentHandler,
		orderHandler:     orderHandler,
		auditLogHandler:  auditLogHandler,
		authMiddleware:   authMiddleware,
		corsMiddleware:   corsMiddleware,
		loggerMiddleware: loggerMiddleware,
		uploads:          uploads,
	}
}

func (r *Router) Setup() *mux.Router {
	// Stored avatars and documents
	if r.uploads != nil {
		r.router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", r.uploads)).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/check-email", r.authHandler.CheckEmail).Methods(http.MethodPost)
	auth.HandleFunc("/verify-existing", r.authHandler.VerifyExisting).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)
	auth.HandleFunc("/roles", r.authHandler.ListRoles).Methods(http.MethodGet)
	auth.HandleFunc("/clubs", r.authHandler.ListClubs).Methods(http.MethodGet)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Profile
	profile := api.PathPrefix("/profile").Subrouter()
	profile.Use(r.authMiddleware.Authenticate)
	profile.HandleFunc("", r.profileHandler.GetMyProfile).Methods(http.MethodGet)
	profile.HandleFunc("", r.profileHandler.UpdateMyProfile).Methods(http.MethodPut)
	profile.HandleFunc("/avatar", r.profileHandler.UploadAvatar).Methods(http.MethodPost)
	profile.HandleFunc("/respond-integration", r.profileHandler.RespondIntegration).Methods(http.MethodPost)
	profile.HandleFunc("/integrations", r.profileHandler.GetIntegrationRequests).Methods(http.MethodGet)
	profile.Handle("/link-child", middleware.RequireParent(http.HandlerFunc(r.profileHandler.LinkChild))).Methods(http.MethodPost)
	profile.Handle("/children", middleware.RequireParent(http.HandlerFunc(r.profileHandler.GetChildren))).Methods(http.MethodGet)
	profile.Handle("/referral", middleware.RequireParent(http.HandlerFunc(r.profileHandler.CreateReferral))).Methods(http.MethodPost)
	profile.HandleFunc("/{userId}", r.profileHandler.GetProfile).Methods(http.MethodGet)
	profile.HandleFunc("/{userId}", r.profileHandler.UpdateProfile).Methods(http.MethodPut)

	// Club affiliation
	clubs := api.PathPrefix("/clubs").Subrouter()
	clubs.Use(r.authMiddleware.Authenticate)
	clubs.HandleFunc("/status", r.clubHandler.GetStatus).Methods(http.MethodGet)
	clubs.HandleFunc("/join", r.clubHandler.Join).Methods(http.MethodPost)
	clubs.HandleFunc("/leave", r.clubHandler.Leave).Methods(http.MethodPost)
	clubs.HandleFunc("/requests", r.clubHandler.ListRequests).Methods(http.MethodGet)
	clubs.HandleFunc("/requests/{id}/approve", r.clubHandler.Approve).Methods(http.MethodPost)
	clubs.HandleFunc("/requests/{id}/reject", r.clubHandler.Reject).Methods(http.MethodPost)

	// Module builder: everyone may read what is visible to them, admins author
	modules := api.PathPrefix("/modules").Subrouter()
	modules.Use(r.authMiddleware.Authenticate)
	modules.HandleFunc("", r.moduleHandler.ListModules).Methods(http.MethodGet)
	modules.HandleFunc("/field-types", r.moduleHandler.GetFieldTypes).Methods(http.MethodGet)
	modules.HandleFunc("/{id}", r.moduleHandler.GetModule).Methods(http.MethodGet)

	moduleAdmin := api.PathPrefix("/modules").Subrouter()
	moduleAdmin.Use(r.authMiddleware.Authenticate)
	moduleAdmin.Use(middleware.RequireAdmin)
	moduleAdmin.HandleFunc("", r.moduleHandler.CreateModule).Methods(http.MethodPost)
	moduleAdmin.HandleFunc("/{id}", r.moduleHandler.UpdateModule).Methods(http.MethodPut)
	moduleAdmin.HandleFunc("/{id}", r.moduleHandler.DeleteModule).Methods(http.MethodDelete)
	moduleAdmin.HandleFunc("/{id}/sections", r.moduleHandler.CreateSection).Methods(http.MethodPost)
	moduleAdmin.HandleFunc("/{id}/fields", r.moduleHandler.CreateField).Methods(http.MethodPost)
	moduleAdmin.HandleFunc("/{id}/fields/{fieldId}", r.moduleHandler.UpdateField).Methods(http.MethodPut)
	moduleAdmin.HandleFunc("/{id}/fields/{fieldId}", r.moduleHandler.DeleteField).Methods(http.MethodDelete)

	// Documents
	documents := api.PathPrefix("/documents").Subrouter()
	documents.Use(r.authMiddleware.Authenticate)
	documents.HandleFunc("", r.documentHandler.Upload).Methods(http.MethodPost)
	documents.HandleFunc("", r.documentHandler.ListByCoreID).Methods(http.MethodGet)
	documents.HandleFunc("/{id}", r.documentHandler.Delete).Methods(http.MethodDelete)

	// Orders (supplier or admin)
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(r.authMiddleware.Authenticate)
	orders.Use(middleware.RequireAdminOrSupplier)
	orders.HandleFunc("", r.orderHandler.ListOrders).Methods(http.MethodGet)
	orders.HandleFunc("/{id}/courier", r.orderHandler.UpsertCourier).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(r.loggerMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
