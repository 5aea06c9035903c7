package internal

import (
	"net/http"
	"time"
)

// countRow is one bucket of a GROUP BY aggregation
type countRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// costRow is one bucket of a cost aggregation
type costRow struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// costSummary holds the cost aggregates over priced resources. Resources
// with zero cost are excluded from the averages and reported separately.
type costSummary struct {
	TotalCost     float64 `json:"total_cost"`
	AverageCost   float64 `json:"average_cost"`
	MinCost       float64 `json:"min_cost"`
	MaxCost       float64 `json:"max_cost"`
	PricedCount   int     `json:"priced_count"`
	ExcludedCount int     `json:"excluded_count"`
}

func (s *Server) groupCounts(r *http.Request, column string) ([]countRow, error) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT `+column+`, COUNT(*) FROM resources
		WHERE `+column+` <> ''
		GROUP BY `+column+`
		ORDER BY COUNT(*) DESC, `+column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []countRow{}
	for rows.Next() {
		var row countRow
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// topCounts is groupCounts capped to the biggest buckets, for dashboards
func (s *Server) topCounts(r *http.Request, column string, limit int) ([]countRow, error) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT `+column+`, COUNT(*) FROM resources
		WHERE `+column+` <> ''
		GROUP BY `+column+`
		ORDER BY COUNT(*) DESC, `+column+`
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []countRow{}
	for rows.Next() {
		var row countRow
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Server) groupCosts(r *http.Request, column string) ([]costRow, error) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT `+column+`, COALESCE(SUM(cost), 0) FROM resources
		WHERE `+column+` <> ''
		GROUP BY `+column+`
		ORDER BY SUM(cost) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []costRow{}
	for rows.Next() {
		var row costRow
		if err := rows.Scan(&row.Label, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Server) costSummary(r *http.Request) (costSummary, error) {
	var cs costSummary
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT
			COALESCE(SUM(cost), 0),
			COALESCE(AVG(cost) FILTER (WHERE cost > 0), 0),
			COALESCE(MIN(cost) FILTER (WHERE cost > 0), 0),
			COALESCE(MAX(cost), 0),
			COUNT(*) FILTER (WHERE cost > 0),
			COUNT(*) FILTER (WHERE cost = 0)
		FROM resources`).Scan(
		&cs.TotalCost, &cs.AverageCost, &cs.MinCost, &cs.MaxCost,
		&cs.PricedCount, &cs.ExcludedCount)
	return cs, err
}

// resourceStats aggregates the whole inventory: counts per grouping column
// plus the cost summary.
func (s *Server) resourceStats(w http.ResponseWriter, r *http.Request) {
	var total int
	if err := s.DB.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM resources`).Scan(&total); err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byDepartment, err := s.groupCounts(r, "department")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byParent, err := s.groupCounts(r, "parent_department")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byCategory, err := s.groupCounts(r, "product_category")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	bySection, err := s.groupCounts(r, "section_location")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	costByDepartment, err := s.groupCosts(r, "department")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	costs, err := s.costSummary(r)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"total_resources":      total,
		"by_department":        byDepartment,
		"by_parent_department": byParent,
		"by_product_category":  byCategory,
		"by_section_location":  bySection,
		"cost_by_department":   costByDepartment,
		"cost_summary":         costs,
	}, "")
}

// dashboardStats is the compact headline card for the dashboard
func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	var total, departments, locations, recentAdditions int
	var totalCost float64
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT
			COUNT(*),
			COUNT(DISTINCT department),
			COUNT(DISTINCT location),
			COALESCE(SUM(cost), 0),
			COUNT(*) FILTER (WHERE created_at >= now() - interval '7 days')
		FROM resources`).Scan(&total, &departments, &locations, &totalCost, &recentAdditions)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"total_resources":  total,
		"departments":      departments,
		"locations":        locations,
		"total_cost":       totalCost,
		"recent_additions": recentAdditions,
	}, "")
}

// monthlyCostTrend sums cost per calendar month of insertion, newest 12
// buckets in chronological order.
func (s *Server) monthlyCostTrend(r *http.Request) ([]costRow, error) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT month, total FROM (
			SELECT to_char(created_at, 'YYYY-MM') AS month,
			       COALESCE(SUM(cost), 0) AS total
			FROM resources
			GROUP BY to_char(created_at, 'YYYY-MM')
			ORDER BY month DESC
			LIMIT 12
		) recent
		ORDER BY month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []costRow{}
	for rows.Next() {
		var row costRow
		if err := rows.Scan(&row.Label, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// dashboardCharts returns the datasets the dashboard charts render
func (s *Server) dashboardCharts(w http.ResponseWriter, r *http.Request) {
	byDepartment, err := s.topCounts(r, "department", 10)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byLocation, err := s.topCounts(r, "location", 10)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byCategory, err := s.groupCounts(r, "product_category")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	costByDepartment, err := s.groupCosts(r, "department")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	costTrend, err := s.monthlyCostTrend(r)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"by_department":       byDepartment,
		"by_location":         byLocation,
		"by_product_category": byCategory,
		"cost_by_department":  costByDepartment,
		"monthly_cost_trend":  costTrend,
	}, "")
}

// recentActivity returns the most recently added resources
func (s *Server) recentActivity(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT id, description, department, cost, created_by, created_at
		FROM resources
		ORDER BY created_at DESC, id DESC
		LIMIT 10`)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	type activity struct {
		ID          int64     `json:"id"`
		Description string    `json:"description"`
		Department  string    `json:"department"`
		Cost        float64   `json:"cost"`
		CreatedBy   string    `json:"created_by"`
		CreatedAt   time.Time `json:"created_at"`
	}
	items := []activity{}
	for rows.Next() {
		var a activity
		if err := rows.Scan(&a.ID, &a.Description, &a.Department, &a.Cost, &a.CreatedBy, &a.CreatedAt); err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, items, "")
}
