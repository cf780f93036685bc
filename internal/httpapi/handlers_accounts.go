package httpapi

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"ricemill/backend/internal/domain"
)

func (a *API) handleReadings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		readings, err := a.service.ListReadings(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"readings": readings})
	case http.MethodPost:
		var req domain.ElectricityReadingRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		reading, err := a.service.CreateReading(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"reading": reading})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleLiveReading(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		live, err := a.service.LiveReading(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"live": live})
	case http.MethodPut:
		var req domain.LiveReadingRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		live, err := a.service.UpdateLiveReading(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"live": live})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleBillEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	estimate, err := a.service.EstimateCurrentBill(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"estimate": estimate, "tariff": a.service.Tariff()})
}

// handleBillImport accepts a saved HTML bill page as multipart field "bill".
func (a *API) handleBillImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}

	filename, data, err := readUpload(r, "bill")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".html") && !strings.HasSuffix(lower, ".htm") {
		a.writeServiceError(w, domain.Invalid("bill must be an .html or .htm file"))
		return
	}
	apply, _ := strconv.ParseBool(r.FormValue("apply"))

	result, err := a.service.ImportBill(r.Context(), bytes.NewReader(data), apply)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleHamaliRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rates": a.service.HamaliRates()})
}

func (a *API) handleHamaliWork(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := a.service.ListHamaliWork(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"work": entries})
	case http.MethodPost:
		var req domain.HamaliWorkRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := a.service.RecordHamaliWork(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleHamaliWorkEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		a.writeMethodNotAllowed(w)
		return
	}
	var req domain.HamaliWorkRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := a.service.EditHamaliWork(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

func (a *API) handleHamaliPayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		payments, err := a.service.ListHamaliPayments(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	case http.MethodPost:
		var req domain.HamaliPaymentRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		payment, err := a.service.RecordHamaliPayment(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleHamaliSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	summary, err := a.service.HamaliSummary(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleSalaries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		salaries, err := a.service.ListSalaries(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"salaries": salaries})
	case http.MethodPost:
		var req domain.SupervisorSalaryRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		salary, err := a.service.CreateSalary(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"salary": salary})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleSalaryPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}
	var req domain.SalaryPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	salary, err := a.service.PaySalary(r.Context(), r.PathValue("id"), req)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"salary": salary})
}
