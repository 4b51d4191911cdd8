package www

import (
	"net/http"

	"shopcore/config"
)

// configView is the runtime config with secrets blanked.
type configView struct {
	Database  config.DatabaseConfig  `json:"database"`
	Redis     config.RedisConfig     `json:"redis"`
	Web       config.WebConfig       `json:"web"`
	Messaging config.MessagingConfig `json:"messaging"`
	OCR       config.OCRConfig       `json:"ocr"`
}

func (h *Handlers) apiGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.AppConfig()
	view := configView{
		Database:  cfg.Database,
		Redis:     cfg.Redis,
		Web:       cfg.Web,
		Messaging: cfg.Messaging,
		OCR:       cfg.OCR,
	}
	view.Database.Postgres.Password = ""
	view.Redis.Password = ""
	view.Web.SessionSecret = ""
	h.jsonOK(w, view)
}

// configUpdate carries the sections editable at runtime. Database and web
// bind settings require a restart and are not accepted here.
type configUpdate struct {
	Redis     *config.RedisConfig     `json:"redis,omitempty"`
	Messaging *config.MessagingConfig `json:"messaging,omitempty"`
	OCR       *config.OCRConfig       `json:"ocr,omitempty"`
}

func (h *Handlers) apiSaveConfig(w http.ResponseWriter, r *http.Request) {
	var in configUpdate
	if !h.decodeBody(w, r, &in) {
		return
	}

	cfg := h.engine.AppConfig()
	messagingChanged := false
	cfg.Lock()
	if in.Redis != nil {
		if in.Redis.Password == "" {
			in.Redis.Password = cfg.Redis.Password
		}
		cfg.Redis = *in.Redis
	}
	if in.Messaging != nil {
		if in.Messaging.Backend != "kafka" && in.Messaging.Backend != "mqtt" {
			cfg.Unlock()
			h.jsonError(w, "messaging backend must be kafka or mqtt", http.StatusBadRequest)
			return
		}
		cfg.Messaging = *in.Messaging
		messagingChanged = true
	}
	if in.OCR != nil {
		cfg.OCR = *in.OCR
	}
	cfg.Unlock()

	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		h.jsonError(w, "save config: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if messagingChanged {
		h.engine.ReconfigureMessaging()
	}
	if in.OCR != nil && h.ocr != nil {
		h.ocr.Reconfigure(cfg.OCR.BaseURL, cfg.OCR.Timeout)
	}

	h.jsonOK(w, map[string]any{"ok": true})
}
