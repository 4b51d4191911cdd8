package www

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"shopcore/engine"
	"shopcore/ocr"
)

type Handlers struct {
	engine   *engine.Engine
	ocr      *ocr.Client
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine, ocrClient *ocr.Client) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		ocr:      ocrClient,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	// Session
	r.Post("/api/login", h.apiLogin)
	r.Post("/api/logout", h.apiLogout)
	r.Get("/api/session", h.apiSession)

	// Read API (no auth, kiosk dashboards on the floor)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealthCheck)
		r.Get("/dashboard", h.apiDashboard)
		r.Get("/machines", h.apiListMachines)
		r.Get("/machines/{id}/downtime", h.apiMachineDowntime)
		r.Get("/workorders", h.apiListWorkOrders)
		r.Get("/workorders/{id}", h.apiGetWorkOrder)
		r.Get("/workorders/{id}/status-counts", h.apiWorkOrderStatusCounts)
		r.Get("/assemblies/board", h.apiAssemblyBoard)
		r.Get("/jobs", h.apiListJobs)
		r.Get("/jobs/{id}", h.apiGetJob)
		r.Get("/parts", h.apiListParts)
		r.Get("/parts/{id}/bom", h.apiGetBOM)
		r.Get("/masterdata", h.apiMasterData)
		r.Get("/audit", h.apiAuditLog)
		r.Get("/export/workorders", h.apiExportWorkOrders)
		r.Get("/export/jobs", h.apiExportJobs)
	})

	// Mutating API
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/machines", h.apiCreateMachine)
		r.Put("/api/machines/{id}", h.apiUpdateMachine)
		r.Post("/api/machines/{id}/status", h.apiSetMachineStatus)
		r.Post("/api/machines/{id}/downtime/close", h.apiCloseDowntime)

		r.Post("/api/workorders", h.apiCreateWorkOrder)
		r.Post("/api/maintenance/plan", h.apiPlanMaintenance)
		r.Post("/api/maintenance/resolve", h.apiResolveMaintenance)

		r.Post("/api/assemblies/start", h.apiStartAssembly)
		r.Post("/api/assemblies/complete", h.apiCompleteAssembly)

		r.Post("/api/jobs/{id}/advance", h.apiAdvanceJob)
		r.Post("/api/jobs/{id}/complete", h.apiCompleteJobManufacturing)
		r.Post("/api/jobs/{id}/edit", h.apiEditJob)
		r.Post("/api/jobs/{id}/cancel", h.apiCancelJob)
		r.Post("/api/jobs/{id}/schedule", h.apiScheduleJob)
		r.Post("/api/jobs/{id}/requeue", h.apiRequeueJob)

		r.Post("/api/parts", h.apiCreatePart)
		r.Put("/api/parts/{id}", h.apiUpdatePart)
		r.Post("/api/parts/{id}/bom", h.apiAddBOMEdge)
		r.Delete("/api/bom/{id}", h.apiDeleteBOMEdge)
		r.Post("/api/masterdata/locations", h.apiCreateLocation)
		r.Post("/api/masterdata/material-types", h.apiCreateMaterialType)
		r.Post("/api/masterdata/bar-sizes", h.apiCreateBarSize)

		r.Post("/api/bom/import/text", h.apiBOMImportText)
		r.Post("/api/bom/import/document", h.apiBOMImportDocument)
		r.Post("/api/bom/import/save", h.apiBOMImportSave)

		r.Get("/api/config", h.apiGetConfig)
		r.Post("/api/config", h.apiSaveConfig)
	})

	// TCO closeout is compliance-only.
	r.Group(func(r chi.Router) {
		r.Use(h.requireCompliance)
		r.Post("/api/workorders/{id}/approve-tco", h.apiApproveTCO)
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn
}

func (h *Handlers) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	user, err := h.engine.DB().GetAdminUser(req.Username)
	if err != nil || user == nil || !checkPassword(user.PasswordHash, req.Password) {
		h.jsonError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["username"] = user.Username
	session.Values["role"] = user.Role
	if err := session.Save(r, w); err != nil {
		log.Printf("auth: session save error: %v", err)
	}

	h.jsonOK(w, map[string]string{"username": user.Username, "role": user.Role})
}

func (h *Handlers) apiLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Values["username"] = ""
	session.Values["role"] = ""
	session.Save(r, w)
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiSession(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, map[string]any{
		"authenticated": h.isAuthenticated(r),
		"username":      h.getUsername(r),
		"role":          h.getRole(r),
	})
}
