package handlers

import (
	"net/http"

	"github.com/linkhoard/linkhoard/internal/domain"
	"github.com/linkhoard/linkhoard/internal/httpserver/deps"
)

func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := d.Store.GetSettings(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]domain.Settings{"settings": settings})
	}
}

// UpdateSettings accepts a partial settings object. Unknown keys and
// out-of-range values are dropped, not rejected; the response carries the
// full resulting set.
func UpdateSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Settings map[string]interface{} `json:"settings"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if len(req.Settings) == 0 {
			writeError(w, d.Logger, domain.Validationf("settings", "no settings provided"))
			return
		}

		values := make(map[string]string, len(req.Settings))
		for key, raw := range req.Settings {
			if v, ok := domain.CoerceSetting(key, raw); ok {
				values[key] = v
			}
		}
		if len(values) > 0 {
			if err := d.Store.UpsertSettings(r.Context(), values); err != nil {
				writeError(w, d.Logger, err)
				return
			}
		}

		settings, err := d.Store.GetSettings(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]domain.Settings{"settings": settings})
	}
}
