package internal

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"asset-angel-api/internal/models"
)

// listParams holds common query parameters for list endpoints
type listParams struct {
	q    string
	sort string
}

// parseListParams parses q and sort from the request
func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()
	return listParams{
		q:    strings.TrimSpace(values.Get("q")),
		sort: strings.TrimSpace(values.Get("sort")),
	}
}

// comparator orders two list items for one sort key
type comparator[T any] func(a, b T) int

// sortItems orders items by a comma-separated list of keys from allowed.
// A '-' prefix sorts that key descending. Unknown keys are ignored and an
// empty sort keeps the store's insertion order.
func sortItems[T any](items []T, sortParam string, allowed map[string]comparator[T]) {
	if sortParam == "" {
		return
	}

	var keys []comparator[T]
	for _, raw := range strings.Split(sortParam, ",") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		desc := false
		if strings.HasPrefix(s, "-") {
			desc = true
			s = strings.TrimPrefix(s, "-")
		}
		cmpFn, ok := allowed[s]
		if !ok {
			continue
		}
		if desc {
			asc := cmpFn
			cmpFn = func(a, b T) int { return asc(b, a) }
		}
		keys = append(keys, cmpFn)
	}
	if len(keys) == 0 {
		return
	}

	slices.SortStableFunc(items, func(a, b T) int {
		for _, k := range keys {
			if c := k(a, b); c != 0 {
				return c
			}
		}
		return 0
	})
}

func byString[T any](get func(T) string) comparator[T] {
	return func(a, b T) int { return cmp.Compare(strings.ToLower(get(a)), strings.ToLower(get(b))) }
}

func byTime[T any](get func(T) time.Time) comparator[T] {
	return func(a, b T) int { return get(a).Compare(get(b)) }
}

func byFloat[T any](get func(T) float64) comparator[T] {
	return func(a, b T) int { return cmp.Compare(get(a), get(b)) }
}

var userSort = map[string]comparator[models.User]{
	"name":       byString(func(u models.User) string { return u.Name }),
	"email":      byString(func(u models.User) string { return u.Email }),
	"department": byString(func(u models.User) string { return u.Department }),
	"role":       byString(func(u models.User) string { return string(u.Role) }),
	"createdAt":  byTime(func(u models.User) time.Time { return u.CreatedAt }),
}

var assetSort = map[string]comparator[models.Asset]{
	"id":            byString(func(a models.Asset) string { return a.ID }),
	"name":          byString(func(a models.Asset) string { return a.Name }),
	"serialNumber":  byString(func(a models.Asset) string { return a.SerialNumber }),
	"category":      byString(func(a models.Asset) string { return string(a.Category) }),
	"status":        byString(func(a models.Asset) string { return string(a.Status) }),
	"purchaseDate":  byTime(func(a models.Asset) time.Time { return a.PurchaseDate.Time }),
	"purchasePrice": byFloat(func(a models.Asset) float64 { return a.PurchasePrice }),
	"createdAt":     byTime(func(a models.Asset) time.Time { return a.CreatedAt }),
}

func assignmentAssetName(v models.AssignmentView) string {
	if v.Asset == nil {
		return ""
	}
	return v.Asset.Name
}

func assignmentUserName(v models.AssignmentView) string {
	if v.User == nil {
		return ""
	}
	return v.User.Name
}

var assignmentSort = map[string]comparator[models.AssignmentView]{
	"id":         byString(func(v models.AssignmentView) string { return v.ID }),
	"assignedAt": byTime(func(v models.AssignmentView) time.Time { return v.AssignedAt }),
	"returnedAt": byTime(func(v models.AssignmentView) time.Time {
		if v.ReturnedAt == nil {
			return time.Time{}
		}
		return *v.ReturnedAt
	}),
	"asset": byString(assignmentAssetName),
	"user":  byString(assignmentUserName),
}

var priorityRank = map[models.IssuePriority]int{
	models.PriorityLow:    0,
	models.PriorityMedium: 1,
	models.PriorityHigh:   2,
}

var repairSort = map[string]comparator[models.RepairRequestView]{
	"id":        byString(func(v models.RepairRequestView) string { return v.ID }),
	"createdAt": byTime(func(v models.RepairRequestView) time.Time { return v.CreatedAt }),
	"updatedAt": byTime(func(v models.RepairRequestView) time.Time { return v.UpdatedAt }),
	"status":    byString(func(v models.RepairRequestView) string { return string(v.Status) }),
	"priority": func(a, b models.RepairRequestView) int {
		return cmp.Compare(priorityRank[a.Priority], priorityRank[b.Priority])
	},
}

// listMeta describes a list response
type listMeta struct {
	Total int    `json:"total"`
	Query string `json:"q,omitempty"`
	Sort  string `json:"sort,omitempty"`
}

// listResponse is the envelope every list endpoint returns
type listResponse[T any] struct {
	Data []T      `json:"data"`
	Meta listMeta `json:"meta"`
}

// sendListResponse writes items in the list envelope
func sendListResponse[T any](w http.ResponseWriter, items []T, params listParams) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{
		Data: items,
		Meta: listMeta{Total: len(items), Query: params.q, Sort: params.sort},
	})
}
