package internal

import (
	"strings"
	"testing"
)

func TestBuildCommandWhere(t *testing.T) {
	tests := []struct {
		name    string
		filters map[string]interface{}
		wantSQL string
		wantN   int
	}{
		{
			"empty filters",
			map[string]interface{}{},
			"",
			0,
		},
		{
			"text filter uses ILIKE",
			map[string]interface{}{"department": "cse"},
			"department ILIKE $1",
			1,
		},
		{
			"exact filter uses equality",
			map[string]interface{}{"identification_number": "INV/042"},
			"identification_number = $1",
			1,
		},
		{
			"mixed filters numbered in column order",
			map[string]interface{}{"location": "lab", "cost": 45000.0, "id": int64(7)},
			"id = $1 AND cost = $2 AND location ILIKE $3",
			3,
		},
		{
			"unknown keys dropped",
			map[string]interface{}{"created_by": "x", "department": "ECE"},
			"department ILIKE $1",
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clauses, args := buildCommandWhere(tt.filters)
			got := strings.Join(clauses, " AND ")
			if got != tt.wantSQL {
				t.Errorf("got %q, want %q", got, tt.wantSQL)
			}
			if len(args) != tt.wantN {
				t.Errorf("got %d args, want %d", len(args), tt.wantN)
			}
		})
	}
}

func TestBuildCommandWhereWrapsTextValues(t *testing.T) {
	_, args := buildCommandWhere(map[string]interface{}{"location": "CSE Lab"})
	if len(args) != 1 || args[0] != "%CSE Lab%" {
		t.Errorf("got args %v, want [%%CSE Lab%%]", args)
	}
}

func TestRenumberPlaceholder(t *testing.T) {
	tests := []struct {
		clause string
		n      int
		want   string
	}{
		{"department ILIKE $1", 4, "department ILIKE $4"},
		{"cost = $12", 3, "cost = $3"},
		{"updated_at = now()", 2, "updated_at = now()"},
	}
	for _, tt := range tests {
		if got := renumberPlaceholder(tt.clause, tt.n); got != tt.want {
			t.Errorf("renumberPlaceholder(%q, %d) = %q, want %q", tt.clause, tt.n, got, tt.want)
		}
	}
}
