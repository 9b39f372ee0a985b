package http

import (
	"net/http"

	"masarif/internal/store"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user store.User) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.dashboards.Overview(r.Context(), user.ID, year, month)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}
