package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplecrm/records-api/internal/auth"
	"github.com/maplecrm/records-api/internal/storage"
)

type settingDTO struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSettingDTO(st *storage.Setting) settingDTO {
	return settingDTO{Key: st.Key, Value: st.Value, UpdatedAt: st.UpdatedAt}
}

// handleListSettings returns all tenant configuration values.
// GET /v1/settings
func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	settings, err := s.store.ListSettings(r.Context(), id.Actor.TenantID)
	if err != nil {
		s.writeStorageError(w, err, "settings")
		return
	}

	out := make([]settingDTO, 0, len(settings))
	for _, st := range settings {
		out = append(out, toSettingDTO(st))
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": out})
}

// handleGetSetting returns one configuration value.
// GET /v1/settings/{key}
func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	st, err := s.store.GetSetting(r.Context(), id.Actor.TenantID, chi.URLParam(r, "key"))
	if err != nil {
		s.writeStorageError(w, err, "setting")
		return
	}
	writeJSON(w, http.StatusOK, toSettingDTO(st))
}

type setSettingRequest struct {
	Value string `json:"value"`
}

// handleSetSetting creates or replaces a configuration value.
// PUT /v1/settings/{key}
func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	key := chi.URLParam(r, "key")

	var req setSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	st, err := s.store.SetSetting(r.Context(), id.Actor.TenantID, key, req.Value)
	if err != nil {
		s.writeStorageError(w, err, "setting")
		return
	}

	s.recorder.Record(r.Context(), id.Actor.TenantID, id.Actor.ID, "setting.set", "setting", key, "")
	writeJSON(w, http.StatusOK, toSettingDTO(st))
}
