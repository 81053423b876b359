package internal

import (
	"net/http"
	"strings"

	"asset-angel-api/internal/models"
)

// listDepartments returns the departments derived from user records, each
// with its employees and the assets they hold
func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	departments := s.Store.ListDepartments()
	if params.q != "" {
		filtered := departments[:0]
		for _, d := range departments {
			if strings.Contains(strings.ToLower(d.Name), strings.ToLower(params.q)) {
				filtered = append(filtered, d)
			}
		}
		departments = filtered
	}
	sortItems(departments, params.sort, map[string]comparator[models.Department]{
		"name":      byString(func(d models.Department) string { return d.Name }),
		"employees": func(a, b models.Department) int { return len(a.Employees) - len(b.Employees) },
		"assets":    func(a, b models.Department) int { return len(a.Assets) - len(b.Assets) },
	})
	sendListResponse(w, departments, params)
}

func (s *Server) getDashboardStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Stats())
}
