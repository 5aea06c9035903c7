package internal

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus-assets-api/internal/models"

	"github.com/tealeg/xlsx/v3"
)

var exportHeader = []string{
	"SL No", "Description", "Service Tag", "Identification Number",
	"Procurement Date", "Cost", "Location", "Section Location",
	"Product Category", "Department", "Parent Department",
}

// exportRows fetches the resources matching the request filters in a stable
// order. Exports honor the same filters as the list endpoint.
func (s *Server) exportRows(r *http.Request) ([]models.Resource, error) {
	q := strings.TrimSpace(r.URL.Query().Get("search"))
	clauses, args := resourceFilterClauses(r, q)
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := s.DB.QueryContext(r.Context(), fmt.Sprintf(`
		SELECT %s FROM resources%s ORDER BY id`, resourceColumns, whereClause), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := scanResource(rows, &res); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func exportFilename(ext string) string {
	return "resources_" + time.Now().Format("20060102_150405") + ext
}

func resourceCells(res models.Resource) []string {
	return []string{
		res.SlNo, res.Description, res.ServiceTag, res.IdentificationNumber,
		res.ProcurementDate, strconv.FormatFloat(res.Cost, 'f', 2, 64),
		res.Location, res.SectionLocation, res.ProductCategory,
		res.Department, res.ParentDepartment,
	}
}

// exportCSV streams the filtered resources as a CSV attachment
func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	resources, err := s.exportRows(r)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(resources) == 0 {
		sendError(w, http.StatusNotFound, "no resources match the requested filters")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(".csv")+`"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, res := range resources {
		if err := cw.Write(resourceCells(res)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// exportExcel streams the filtered resources as an Excel workbook
func (s *Server) exportExcel(w http.ResponseWriter, r *http.Request) {
	resources, err := s.exportRows(r)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(resources) == 0 {
		sendError(w, http.StatusNotFound, "no resources match the requested filters")
		return
	}

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Resources")
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeader {
		headerRow.AddCell().SetString(h)
	}
	for _, res := range resources {
		row := sheet.AddRow()
		row.AddCell().SetString(res.SlNo)
		row.AddCell().SetString(res.Description)
		row.AddCell().SetString(res.ServiceTag)
		row.AddCell().SetString(res.IdentificationNumber)
		row.AddCell().SetString(res.ProcurementDate)
		row.AddCell().SetFloat(res.Cost)
		row.AddCell().SetString(res.Location)
		row.AddCell().SetString(res.SectionLocation)
		row.AddCell().SetString(res.ProductCategory)
		row.AddCell().SetString(res.Department)
		row.AddCell().SetString(res.ParentDepartment)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(".xlsx")+`"`)

	if err := wb.Write(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
