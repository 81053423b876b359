package models

// Department groups the users sharing a department name with the assets
// they currently hold. It is derived on every read and never stored.
type Department struct {
	Name      string  `json:"name"`
	Employees []User  `json:"employees"`
	Assets    []Asset `json:"assets"`
}

// DashboardStats summarises the inventory for the admin dashboard
type DashboardStats struct {
	TotalAssets           int `json:"totalAssets"`
	AssignedAssets        int `json:"assignedAssets"`
	AvailableAssets       int `json:"availableAssets"`
	TotalUsers            int `json:"totalUsers"`
	TotalEmployees        int `json:"totalEmployees"`
	AssetsInMaintenance   int `json:"assetsInMaintenance"`
	PendingRepairRequests int `json:"pendingRepairRequests"`
}

// EmployeeStats summarises one user's holdings for the employee dashboard
type EmployeeStats struct {
	AssignedAssets   int     `json:"assignedAssets"`
	OpenRequests     int     `json:"openRequests"`
	ResolvedRequests int     `json:"resolvedRequests"`
	Assets           []Asset `json:"assets"`
}
