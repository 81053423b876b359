package store

import "asset-angel-api/internal/models"

// ListDepartments groups users by their department field in order of first
// appearance. Each group carries the assets its members actively hold.
func (s *Store) ListDepartments() []models.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := map[string]int{}
	out := []models.Department{}
	for _, u := range s.users {
		i, ok := index[u.Department]
		if !ok {
			i = len(out)
			index[u.Department] = i
			out = append(out, models.Department{
				Name:      u.Department,
				Employees: []models.User{},
				Assets:    []models.Asset{},
			})
		}
		out[i].Employees = append(out[i].Employees, u)
		out[i].Assets = append(out[i].Assets, s.userActiveAssets(u.ID)...)
	}
	return out
}

// Stats computes the admin dashboard counters
func (s *Store) Stats() models.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.DashboardStats{
		TotalAssets: len(s.assets),
		TotalUsers:  len(s.users),
	}
	for _, a := range s.assets {
		switch a.Status {
		case models.StatusAssigned:
			st.AssignedAssets++
		case models.StatusAvailable:
			st.AvailableAssets++
		case models.StatusMaintenance:
			st.AssetsInMaintenance++
		}
	}
	for _, u := range s.users {
		if u.Role == models.RoleEmployee {
			st.TotalEmployees++
		}
	}
	for _, r := range s.repairs {
		if r.Status == models.IssuePending {
			st.PendingRepairRequests++
		}
	}
	return st
}

// EmployeeStats computes the employee dashboard counters for userID
func (s *Store) EmployeeStats(userID string) models.EmployeeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := s.userActiveAssets(userID)
	st := models.EmployeeStats{AssignedAssets: len(assets), Assets: assets}
	for _, r := range s.repairs {
		if r.UserID != userID {
			continue
		}
		switch {
		case r.Status.Open():
			st.OpenRequests++
		case r.Status == models.IssueResolved:
			st.ResolvedRequests++
		}
	}
	return st
}
