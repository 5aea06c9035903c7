package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus-assets-api/internal/auth"
	"campus-assets-api/internal/llm"
	"campus-assets-api/internal/models"
)

// naturalCrudReadLimit caps how many rows a READ command returns.
const naturalCrudReadLimit = 20

// crudTextFilters are matched with ILIKE so "cse lab" finds "CSE Lab 1".
var crudTextFilters = map[string]bool{
	"description":      true,
	"location":         true,
	"section_location": true,
	"department":       true,
	"product_category": true,
}

// crudExactFilters are matched verbatim.
var crudExactFilters = map[string]bool{
	"id":                    true,
	"sl_no":                 true,
	"service_tag":           true,
	"identification_number": true,
	"parent_department":     true,
	"procurement_date":      true,
	"cost":                  true,
}

// naturalCrud executes a natural-language inventory instruction. The model
// parses the instruction into a structured command; the command is then run
// against the database with the same column whitelists the REST handlers
// use, never with SQL the model wrote itself.
func (s *Server) naturalCrud(w http.ResponseWriter, r *http.Request) {
	if s.LLM == nil {
		sendError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Instruction = strings.TrimSpace(req.Instruction)
	if req.Instruction == "" {
		sendError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	analysis := llm.AnalyzeQuery(req.Instruction)
	contextJSON, err := s.buildChatContext(r.Context(), analysis)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "failed to build context")
		return
	}

	cmd, err := s.LLM.ParseCommand(r.Context(), req.Instruction, contextJSON)
	if err != nil {
		s.Logger.Error("parse instruction", "err", err)
		sendError(w, http.StatusUnprocessableEntity, "could not interpret the instruction")
		return
	}

	if err := s.resolveLatestFilter(r.Context(), &cmd); err != nil {
		if err == sql.ErrNoRows {
			sendError(w, http.StatusNotFound, "no resources in the inventory yet")
			return
		}
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch cmd.Operation {
	case llm.OpCreate:
		s.crudCreate(w, r, cmd)
	case llm.OpRead:
		s.crudRead(w, r, cmd)
	case llm.OpUpdate:
		s.crudUpdate(w, r, cmd)
	case llm.OpDelete:
		s.crudDelete(w, r, cmd)
	}
}

// resolveLatestFilter replaces the {"created_at": "latest"} marker with the
// id of the newest resource, so "the last entered item" pins one row.
func (s *Server) resolveLatestFilter(ctx context.Context, cmd *llm.Command) error {
	if v, ok := cmd.Filters["created_at"]; !ok || v != "latest" {
		return nil
	}
	var id int64
	if err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM resources ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id); err != nil {
		return err
	}
	delete(cmd.Filters, "created_at")
	cmd.Filters["id"] = id
	return nil
}

// buildCommandWhere translates command filters into WHERE clauses, keeping
// only whitelisted columns. Unknown keys are dropped rather than rejected;
// the model occasionally invents ones.
func buildCommandWhere(filters map[string]interface{}) (clauses []string, args []interface{}) {
	arg := 1
	for _, key := range []string{
		"id", "sl_no", "description", "service_tag", "identification_number",
		"procurement_date", "cost", "location", "section_location",
		"product_category", "department", "parent_department",
	} {
		v, ok := filters[key]
		if !ok || v == nil {
			continue
		}
		switch {
		case crudTextFilters[key]:
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", key, arg))
			args = append(args, "%"+fmt.Sprintf("%v", v)+"%")
		case crudExactFilters[key]:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", key, arg))
			args = append(args, v)
		default:
			continue
		}
		arg++
	}
	return clauses, args
}

func (s *Server) crudCreate(w http.ResponseWriter, r *http.Request, cmd llm.Command) {
	description := cmd.FieldString("description")
	identification := cmd.FieldString("identification_number")
	if description == "" || identification == "" {
		sendError(w, http.StatusBadRequest,
			"the instruction must name at least a description and an identification number")
		return
	}

	parent := cmd.FieldString("parent_department")
	if parent == "" {
		parent = s.Config.DefaultDepartment
	}
	procurementDate := cmd.FieldString("procurement_date")
	if procurementDate == "" {
		procurementDate = time.Now().Format("2006-01-02")
	}
	cost, _ := cmd.FieldFloat("cost")

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
		cmd.FieldString("sl_no"), description, cmd.FieldString("service_tag"),
		identification, procurementDate, cost, cmd.FieldString("location"),
		cmd.FieldString("section_location"), cmd.FieldString("product_category"),
		cmd.FieldString("department"), parent, createdBy), &res)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusCreated, res, "resource created")
}

func (s *Server) crudRead(w http.ResponseWriter, r *http.Request, cmd llm.Command) {
	clauses, args := buildCommandWhere(cmd.Filters)

	query := fmt.Sprintf(`SELECT %s FROM resources`, resourceColumns)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", naturalCrudReadLimit)

	rows, err := s.DB.QueryContext(r.Context(), query, args...)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := scanResource(rows, &res); err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	}, fmt.Sprintf("found %d resource(s)", len(resources)))
}

func (s *Server) crudUpdate(w http.ResponseWriter, r *http.Request, cmd llm.Command) {
	sets := []string{}
	args := []interface{}{}
	arg := 1
	for _, col := range []string{
		"sl_no", "description", "service_tag", "identification_number",
		"procurement_date", "cost", "location", "section_location",
		"product_category", "department", "parent_department",
	} {
		v, ok := cmd.Fields[col]
		if !ok || v == nil {
			continue
		}
		if col == "cost" {
			f, ok := cmd.FieldFloat("cost")
			if !ok {
				sendError(w, http.StatusBadRequest, "cost must be a number")
				return
			}
			v = f
		} else {
			v = cmd.FieldString(col)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, arg))
		args = append(args, v)
		arg++
	}
	if len(sets) == 0 {
		sendError(w, http.StatusBadRequest, "the instruction names no updatable fields")
		return
	}
	sets = append(sets, "updated_at = now()")

	clauses, filterArgs := buildCommandWhere(cmd.Filters)
	if len(clauses) == 0 {
		sendError(w, http.StatusBadRequest, "refusing to update without filters")
		return
	}
	// Filter placeholders continue after the SET placeholders.
	for i, clause := range clauses {
		clauses[i] = renumberPlaceholder(clause, arg+i)
	}
	args = append(args, filterArgs...)

	query := fmt.Sprintf(`UPDATE resources SET %s WHERE %s`,
		strings.Join(sets, ", "), strings.Join(clauses, " AND "))

	result, err := s.DB.ExecContext(r.Context(), query, args...)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		sendError(w, http.StatusNotFound, "no resources match the given filters")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"updated_count": affected,
	}, fmt.Sprintf("updated %d resource(s)", affected))
}

func (s *Server) crudDelete(w http.ResponseWriter, r *http.Request, cmd llm.Command) {
	clauses, args := buildCommandWhere(cmd.Filters)
	if len(clauses) == 0 {
		sendError(w, http.StatusBadRequest, "refusing to delete without filters")
		return
	}

	query := `DELETE FROM resources WHERE ` + strings.Join(clauses, " AND ")
	result, err := s.DB.ExecContext(r.Context(), query, args...)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		sendError(w, http.StatusNotFound, "no resources match the given filters")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"deleted_count": affected,
	}, fmt.Sprintf("deleted %d resource(s)", affected))
}

// renumberPlaceholder rewrites the single $N in clause to $n.
func renumberPlaceholder(clause string, n int) string {
	idx := strings.IndexByte(clause, '$')
	if idx < 0 {
		return clause
	}
	end := idx + 1
	for end < len(clause) && clause[end] >= '0' && clause[end] <= '9' {
		end++
	}
	return clause[:idx] + fmt.Sprintf("$%d", n) + clause[end:]
}
