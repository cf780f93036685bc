package httpapi

import (
	"net/http"
	"path"

	"ricemill/backend/internal/domain"
)

func (a *API) handleReconciliations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	views, err := a.service.ListReconciliations(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reconciliations": views})
}

func (a *API) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	view, err := a.service.GetReconciliation(r.Context(), r.PathValue("key"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reconciliation": view})
}

func (a *API) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}
	var req domain.ReconcileRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.service.Reconcile(r.Context(), r.PathValue("key"), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReconciliationDocument stores multipart field "document" (with optional
// "notes") on POST and streams the stored document back on GET.
func (a *API) handleReconciliationDocument(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	switch r.Method {
	case http.MethodGet:
		data, ref, err := a.service.ReconciliationDocument(r.Context(), key)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeFile(w, http.DetectContentType(data), path.Base(ref), data)
	case http.MethodPost:
		filename, data, err := readUpload(r, "document")
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := a.service.AttachReconciliationDocument(r.Context(), key, filename, data, r.FormValue("notes"))
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reconciliation": view})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleGunnyDispatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dispatches, err := a.service.ListGunnyDispatches(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dispatches": dispatches})
	case http.MethodPost:
		var req domain.GunnyDispatchRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		dispatch, err := a.service.CreateGunnyDispatch(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"dispatch": dispatch})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleGunnyAcknowledgement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		a.writeMethodNotAllowed(w)
		return
	}
	var req domain.GunnyAckRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	dispatch, err := a.service.SetGunnyAcknowledgement(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dispatch": dispatch})
}

func (a *API) handleGunnyPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		data, ref, err := a.service.GunnyPhoto(r.Context(), id)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeFile(w, "image/jpeg", path.Base(ref), data)
	case http.MethodPost:
		filename, data, err := readUpload(r, "photo")
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		dispatch, err := a.service.AttachGunnyPhoto(r.Context(), id, filename, data)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dispatch": dispatch})
	default:
		a.writeMethodNotAllowed(w)
	}
}
