package httpapi

import (
	"bytes"
	"net/http"
	"strconv"

	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *API) handleConsignments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		consignments, err := a.service.ListConsignments(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"consignments": consignments})
	case http.MethodPost:
		var req domain.ConsignmentRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		consignment, err := a.service.CreateConsignment(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"consignment": consignment})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handlePackagingMovements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		movements, err := a.service.ListPackagingMovements(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"movements": movements})
	case http.MethodPost:
		var req domain.PackagingMovementRequest
		if err := decodeJSON(r, &req); err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		movement, err := a.service.RecordPackagingMovement(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"movement": movement})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handlePackagingLevels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	levels, err := a.service.PackagingLevels(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"levels": levels})
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	summary, err := a.service.Summary(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleBottleneck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	analysis, err := a.service.Bottleneck(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// handleDigest returns the last scheduled digest, or builds one when none
// exists yet or ?refresh=true is passed.
func (a *API) handleDigest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	if a.digests == nil {
		digest, err := a.service.DailyDigest(r.Context())
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, digest)
		return
	}

	if !refresh {
		if digest, ok := a.digests.Latest(); ok {
			writeJSON(w, http.StatusOK, digest)
			return
		}
	}
	digest, err := a.digests.RunNow(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, digest)
}

func (a *API) handleTableExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	table, err := a.service.ExportTable(r.Context(), r.PathValue("name"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeFile(w, "text/csv; charset=utf-8", table.Name+".csv", buf.Bytes())
}

func (a *API) handleWorkbookExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	tables, err := a.service.ExportAll(r.Context())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, tables); err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeFile(w, xlsxContentType, "ricemill-export.xlsx", buf.Bytes())
}
