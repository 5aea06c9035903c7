package internal

import (
	"net/http/httptest"
	"testing"
)

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		page   int
		limit  int
		offset int
		q      string
		sort   string
	}{
		{"defaults", "/api/resources", 1, 50, 0, "", ""},
		{"explicit page and limit", "/api/resources?page=3&limit=20", 3, 20, 40, "", ""},
		{"limit capped at 200", "/api/resources?limit=5000", 1, 200, 0, "", ""},
		{"invalid values fall back", "/api/resources?page=zero&limit=-5", 1, 50, 0, "", ""},
		{"search and sort", "/api/resources?search=router&sort=-cost", 1, 50, 0, "router", "-cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p := parseListParams(r)
			if p.page != tt.page || p.limit != tt.limit || p.offset != tt.offset {
				t.Errorf("got page=%d limit=%d offset=%d, want page=%d limit=%d offset=%d",
					p.page, p.limit, p.offset, tt.page, tt.limit, tt.offset)
			}
			if p.q != tt.q {
				t.Errorf("got q=%q, want %q", p.q, tt.q)
			}
			if p.sort != tt.sort {
				t.Errorf("got sort=%q, want %q", p.sort, tt.sort)
			}
		})
	}
}

func TestBuildOrderBy(t *testing.T) {
	allowed := map[string]string{
		"id":         "id",
		"cost":       "cost",
		"department": "department",
	}

	tests := []struct {
		name string
		sort string
		want string
	}{
		{"empty defaults to id", "", " ORDER BY id ASC"},
		{"single ascending", "cost", " ORDER BY cost ASC"},
		{"single descending", "-cost", " ORDER BY cost DESC"},
		{"multiple keys", "department,-cost", " ORDER BY department ASC, cost DESC"},
		{"unknown key ignored", "password", " ORDER BY id ASC"},
		{"mixed known and unknown", "password,cost", " ORDER BY cost ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildOrderBy(tt.sort, allowed); got != tt.want {
				t.Errorf("buildOrderBy(%q) = %q, want %q", tt.sort, got, tt.want)
			}
		})
	}
}
