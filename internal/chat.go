package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus-assets-api/internal/auth"
	"campus-assets-api/internal/llm"
	"campus-assets-api/internal/models"

	"github.com/lib/pq"
)

// chatResourceLimit caps how many matching resources are packed into the
// model context.
const chatResourceLimit = 20

// chatWithInventory answers a natural-language question about the inventory
func (s *Server) chatWithInventory(w http.ResponseWriter, r *http.Request) {
	if s.LLM == nil {
		sendError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		sendError(w, http.StatusBadRequest, "message is required")
		return
	}

	analysis := llm.AnalyzeQuery(req.Message)
	contextJSON, err := s.buildChatContext(r.Context(), analysis)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "failed to build context")
		return
	}

	reply, err := s.LLM.Ask(r.Context(), req.Message, contextJSON)
	if err != nil {
		s.Logger.Error("chat generation", "err", err)
		sendError(w, http.StatusBadGateway, "assistant is unavailable")
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	if _, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO chat_messages (user_id, question, answer, context_type, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		userID, req.Message, reply, string(analysis.Type)); err != nil {
		// History is best effort; the reply still goes out.
		s.Logger.Warn("persist chat message", "err", err, "user_id", userID)
	}

	sendJSON(w, http.StatusOK, models.ChatResponse{
		Reply:       reply,
		ContextType: string(analysis.Type),
	}, "")
}

// buildChatContext assembles the JSON slice of the inventory the question
// needs: headline aggregates for summaries, cost groupings for cost
// questions, and up to chatResourceLimit matching rows for searches.
func (s *Server) buildChatContext(ctx context.Context, analysis llm.Analysis) (string, error) {
	payload := map[string]interface{}{}

	var total int
	var totalCost float64
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(cost), 0) FROM resources`).Scan(&total, &totalCost); err != nil {
		return "", err
	}
	payload["total_resources"] = total
	payload["total_cost"] = totalCost

	switch analysis.Type {
	case llm.ContextCostAnalysis:
		groups, err := s.chatCostGroups(ctx, analysis.Departments)
		if err != nil {
			return "", err
		}
		payload["cost_by_department"] = groups

	case llm.ContextSearch:
		resources, err := s.chatSearchRows(ctx, analysis)
		if err != nil {
			return "", err
		}
		payload["matching_resources"] = resources

	default:
		counts := map[string]int{}
		rows, err := s.DB.QueryContext(ctx, `
			SELECT department, COUNT(*) FROM resources
			WHERE department <> '' GROUP BY department`)
		if err != nil {
			return "", err
		}
		defer rows.Close()
		for rows.Next() {
			var dept string
			var n int
			if err := rows.Scan(&dept, &n); err != nil {
				return "", err
			}
			counts[dept] = n
		}
		if err := rows.Err(); err != nil {
			return "", err
		}
		payload["resources_per_department"] = counts
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Server) chatCostGroups(ctx context.Context, departments []string) ([]costRow, error) {
	query := `
		SELECT department, COALESCE(SUM(cost), 0) FROM resources
		WHERE department <> ''`
	args := []interface{}{}
	if len(departments) > 0 {
		query += ` AND department = ANY($1)`
		args = append(args, pq.Array(departments))
	}
	query += ` GROUP BY department ORDER BY SUM(cost) DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
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

func (s *Server) chatSearchRows(ctx context.Context, analysis llm.Analysis) ([]models.Resource, error) {
	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if len(analysis.Departments) > 0 {
		clauses = append(clauses, fmt.Sprintf("department = ANY($%d)", arg))
		args = append(args, pq.Array(analysis.Departments))
		arg++
	}
	if len(analysis.SearchTerms) > 0 {
		terms := []string{}
		for _, term := range analysis.SearchTerms {
			terms = append(terms, fmt.Sprintf(
				"(description ILIKE $%d OR location ILIKE $%d OR product_category ILIKE $%d)",
				arg, arg, arg))
			args = append(args, "%"+term+"%")
			arg++
		}
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}

	query := fmt.Sprintf(`SELECT %s FROM resources`, resourceColumns)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY cost DESC LIMIT %d", chatResourceLimit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
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

// chatHistory returns a page of the caller's past questions, newest first
func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	params := parseListParams(r)

	var total int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM chat_messages WHERE user_id = $1`, userID).Scan(&total); err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT id, user_id, question, answer, context_type, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, params.limit, params.offset)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var msg models.ChatMessage
		var createdAt time.Time
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Question, &msg.Answer, &msg.Context, &createdAt); err != nil {
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		msg.CreatedAt = createdAt
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sendListResponse(w, messages, total, params)
}
