package internal

import (
	"encoding/json"
	"net/http"
	"time"

	"campus-assets-api/internal/auth"
	"campus-assets-api/internal/report"
)

// generateReport renders the inventory summary PDF and streams it as an
// attachment.
func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	var total, departments, locations int
	var totalCost float64
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT COUNT(*), COUNT(DISTINCT department), COUNT(DISTINCT location), COALESCE(SUM(cost), 0)
		FROM resources`).Scan(&total, &departments, &locations, &totalCost)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if total == 0 {
		sendError(w, http.StatusNotFound, "no resources to report on")
		return
	}

	countByDept, err := s.groupCounts(r, "department")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	costByDept, err := s.groupCosts(r, "department")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	countByCategory, err := s.groupCounts(r, "product_category")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	countByParent, err := s.groupCounts(r, "parent_department")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	topLocations, err := s.topCounts(r, "location", 15)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data := report.Data{
		GeneratedAt:       time.Now(),
		TotalResources:    total,
		TotalCost:         totalCost,
		DepartmentCount:   departments,
		LocationCount:     locations,
		CountByDepartment: countBars(countByDept),
		CountByParent:     countBars(countByParent),
		TopLocations:      countBars(topLocations),
		CostByDepartment:  costBars(costByDept),
		CountByCategory:   countBars(countByCategory),
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		data.GeneratedBy = claims.Email
	}

	// The executive summary is a nicety; the report ships without it when
	// the model is unavailable.
	if s.LLM != nil {
		statsJSON, err := json.Marshal(map[string]interface{}{
			"total_resources":    total,
			"total_cost":         totalCost,
			"by_department":      countByDept,
			"cost_by_department": costByDept,
		})
		if err == nil {
			if summary, err := s.LLM.Summarize(r.Context(), string(statsJSON)); err == nil {
				data.Summary = summary
			} else {
				s.Logger.Warn("report summary", "err", err)
			}
		}
	}

	pdf, err := report.Build(data, s.Config.ReportFontPath)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+"inventory_report_"+time.Now().Format("20060102_150405")+`.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		s.Logger.Error("write report", "err", err)
	}
}

func countBars(rows []countRow) []report.Bar {
	bars := make([]report.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, report.Bar{Label: row.Label, Value: float64(row.Count)})
	}
	return bars
}

func costBars(rows []costRow) []report.Bar {
	bars := make([]report.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, report.Bar{Label: row.Label, Value: row.Total})
	}
	return bars
}
