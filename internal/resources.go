package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus-assets-api/internal/auth"
	"campus-assets-api/internal/models"

	"github.com/go-chi/chi/v5"
)

const resourceColumns = `id, sl_no, description, service_tag, identification_number,
	procurement_date, cost, location, section_location, product_category,
	department, parent_department, created_by, created_at, updated_at`

func scanResource(scanner interface{ Scan(...interface{}) error }, res *models.Resource, extra ...interface{}) error {
	dest := []interface{}{
		&res.ID, &res.SlNo, &res.Description, &res.ServiceTag,
		&res.IdentificationNumber, &res.ProcurementDate, &res.Cost,
		&res.Location, &res.SectionLocation, &res.ProductCategory,
		&res.Department, &res.ParentDepartment, &res.CreatedBy,
		&res.CreatedAt, &res.UpdatedAt,
	}
	dest = append(dest, extra...)
	return scanner.Scan(dest...)
}

// resourceFilterClauses translates the query-string filters into WHERE
// clauses. Free-text search spans the descriptive columns; the rest are
// exact matches.
func resourceFilterClauses(r *http.Request, q string) (clauses []string, args []interface{}) {
	arg := 1
	add := func(clause string, value interface{}) {
		clauses = append(clauses, fmt.Sprintf(clause, arg))
		args = append(args, value)
		arg++
	}

	if q != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(description ILIKE $%d OR service_tag ILIKE $%d OR identification_number ILIKE $%d OR location ILIKE $%d OR department ILIKE $%d)",
			arg, arg, arg, arg, arg))
		args = append(args, "%"+q+"%")
		arg++
	}
	if v := strings.TrimSpace(r.URL.Query().Get("location")); v != "" {
		add("location = $%d", v)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("department")); v != "" {
		add("department = $%d", v)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("parent_department")); v != "" {
		add("parent_department = $%d", v)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("product_category")); v != "" {
		add("product_category = $%d", v)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("cost_min")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			add("cost >= $%d", f)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("cost_max")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			add("cost <= $%d", f)
		}
	}
	return clauses, args
}

// listResources handles resource listing with filters and pagination
func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses, args := resourceFilterClauses(r, params.q)
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total_count
		FROM resources%s`, resourceColumns, whereClause)

	allowedSort := map[string]string{
		"id":               "id",
		"sl_no":            "sl_no",
		"description":      "description",
		"cost":             "cost",
		"location":         "location",
		"department":       "department",
		"procurement_date": "procurement_date",
		"created_at":       "created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	resources := []models.Resource{}
	var totalCount int
	for rows.Next() {
		var res models.Resource
		if err := scanResource(rows, &res, &totalCount); err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendListResponse(w, resources, totalCount, params)
}

// getResource handles getting a single resource by ID
func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var res models.Resource
	err := scanResource(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
		SELECT %s FROM resources WHERE id = $1`, resourceColumns), id), &res)
	if err == sql.ErrNoRows {
		sendError(w, http.StatusNotFound, "resource not found")
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, res, "")
}

// createResource handles creating a new resource
func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	var req models.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Description == "" || req.IdentificationNumber == "" {
		sendError(w, http.StatusBadRequest, "description and identification_number are required")
		return
	}
	if req.ParentDepartment == "" {
		sendError(w, http.StatusBadRequest, "parent_department is required")
		return
	}
	if req.ProcurementDate == "" {
		req.ProcurementDate = time.Now().Format("2006-01-02")
	}

	claims := auth.ClaimsFromContext(r.Context())
	createdBy := ""
	if claims != nil {
		createdBy = claims.Email
	}

	var res models.Resource
	err := scanResource(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
		INSERT INTO resources (
			sl_no, description, service_tag, identification_number,
			procurement_date, cost, location, section_location,
			product_category, department, parent_department, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING %s`, resourceColumns),
		req.SlNo, req.Description, req.ServiceTag, req.IdentificationNumber,
		req.ProcurementDate, req.Cost, req.Location, req.SectionLocation,
		req.ProductCategory, req.Department, req.ParentDepartment, createdBy), &res)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusCreated, res, "resource created")
}

// updateResource handles partial updates of a resource
func (s *Server) updateResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sets := []string{}
	args := []interface{}{}
	arg := 1
	set := func(col string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, arg))
		args = append(args, v)
		arg++
	}

	if req.SlNo != nil {
		set("sl_no", *req.SlNo)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.ServiceTag != nil {
		set("service_tag", *req.ServiceTag)
	}
	if req.IdentificationNumber != nil {
		set("identification_number", *req.IdentificationNumber)
	}
	if req.ProcurementDate != nil {
		set("procurement_date", *req.ProcurementDate)
	}
	if req.Cost != nil {
		set("cost", *req.Cost)
	}
	if req.Location != nil {
		set("location", *req.Location)
	}
	if req.SectionLocation != nil {
		set("section_location", *req.SectionLocation)
	}
	if req.ProductCategory != nil {
		set("product_category", *req.ProductCategory)
	}
	if req.Department != nil {
		set("department", *req.Department)
	}
	if req.ParentDepartment != nil {
		set("parent_department", *req.ParentDepartment)
	}

	if len(sets) == 0 {
		sendError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	var res models.Resource
	err := scanResource(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
		UPDATE resources SET %s WHERE id = $%d
		RETURNING %s`, strings.Join(sets, ", "), arg, resourceColumns), args...), &res)
	if err == sql.ErrNoRows {
		sendError(w, http.StatusNotFound, "resource not found")
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, res, "resource updated")
}

// deleteResource handles deleting a resource
func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.DB.ExecContext(r.Context(), `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	affected, err := result.RowsAffected()
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if affected == 0 {
		sendError(w, http.StatusNotFound, "resource not found")
		return
	}

	sendJSON(w, http.StatusOK, nil, "resource deleted")
}

// searchResources is a convenience endpoint for free-text search; it reuses
// the list filters with the query taken from ?q=.
func (s *Server) searchResources(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		sendError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	query := r.URL.Query()
	query.Set("search", q)
	r.URL.RawQuery = query.Encode()
	s.listResources(w, r)
}

// distinctValues returns the distinct non-empty values of one column,
// sorted. Only whitelisted columns are reachable through the routes below.
func (s *Server) distinctValues(w http.ResponseWriter, r *http.Request, column string) {
	rows, err := s.DB.QueryContext(r.Context(), fmt.Sprintf(`
		SELECT DISTINCT %s FROM resources WHERE %s <> '' ORDER BY %s`, column, column, column))
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, values, "")
}

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	s.distinctValues(w, r, "department")
}

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	s.distinctValues(w, r, "location")
}

func (s *Server) listParentDepartments(w http.ResponseWriter, r *http.Request) {
	s.distinctValues(w, r, "parent_department")
}

func (s *Server) listProductCategories(w http.ResponseWriter, r *http.Request) {
	s.distinctValues(w, r, "product_category")
}

// filterOptions bundles every distinct-value list the UI needs to build its
// filter dropdowns in one round trip.
func (s *Server) filterOptions(w http.ResponseWriter, r *http.Request) {
	options := map[string][]string{}
	for key, column := range map[string]string{
		"departments":        "department",
		"locations":          "location",
		"parent_departments": "parent_department",
		"product_categories": "product_category",
	} {
		rows, err := s.DB.QueryContext(r.Context(), fmt.Sprintf(`
			SELECT DISTINCT %s FROM resources WHERE %s <> '' ORDER BY %s`, column, column, column))
		if err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		values := []string{}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				sendError(w, http.StatusInternalServerError, err.Error())
				return
			}
			values = append(values, v)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rows.Close()
		options[key] = values
	}

	sendJSON(w, http.StatusOK, options, "")
}
