package llm

import (
	"strings"
)

// ContextType selects which slice of the inventory is sent along with a
// chat question. The question is analyzed first so only the relevant slice
// reaches the model.
type ContextType string

const (
	ContextSummary      ContextType = "summary"
	ContextCostAnalysis ContextType = "cost_analysis"
	ContextSearch       ContextType = "search"
)

// Analysis is the outcome of analyzing one chat question
type Analysis struct {
	Type        ContextType
	Departments []string
	Locations   []string
	SearchTerms []string
}

// departmentKeywords maps question phrasing to canonical department names
var departmentKeywords = map[string]string{
	"cse":             "Computer Science and Engineering",
	"computer":        "Computer Science and Engineering",
	"computing":       "Computer Science and Engineering",
	"ece":             "Electronics and Instrumentation Engineering",
	"electronics":     "Electronics and Instrumentation Engineering",
	"instrumentation": "Electronics and Instrumentation Engineering",
	"mechanical":      "Mechanical Engineering",
	"civil":           "Civil Engineering",
}

var locationKeywords = []string{"lab", "laboratory", "room", "hall", "workshop", "office", "centre", "center"}

var costKeywords = []string{"cost", "price", "expensive", "cheap", "value", "worth", "budget", "spent", "amount", "rupee", "total"}

var searchVerbs = []string{"find", "search", "show", "list", "which", "where", "how many"}

// AnalyzeQuery decides what context a question needs. Cost phrasing wins
// over search phrasing; a question naming neither costs nor anything to
// look up falls back to the summary context.
func AnalyzeQuery(question string) Analysis {
	lower := strings.ToLower(question)

	a := Analysis{Type: ContextSummary}

	for keyword, dept := range departmentKeywords {
		if strings.Contains(lower, keyword) && !contains(a.Departments, dept) {
			a.Departments = append(a.Departments, dept)
		}
	}
	for _, keyword := range locationKeywords {
		if strings.Contains(lower, keyword) {
			a.Locations = append(a.Locations, keyword)
		}
	}

	for _, keyword := range costKeywords {
		if strings.Contains(lower, keyword) {
			a.Type = ContextCostAnalysis
			return a
		}
	}

	for _, verb := range searchVerbs {
		if strings.Contains(lower, verb) {
			a.Type = ContextSearch
			a.SearchTerms = searchTerms(lower)
			return a
		}
	}

	if len(a.Departments) > 0 || len(a.Locations) > 0 {
		a.Type = ContextSearch
		a.SearchTerms = searchTerms(lower)
	}
	return a
}

// searchTerms keeps the words worth matching against the inventory,
// dropping filler and the search verbs themselves.
func searchTerms(lower string) []string {
	stop := map[string]bool{
		"find": true, "search": true, "show": true, "list": true,
		"which": true, "where": true, "how": true, "many": true,
		"the": true, "a": true, "an": true, "in": true, "of": true,
		"me": true, "all": true, "are": true, "is": true, "for": true,
		"what": true, "do": true, "we": true, "have": true,
	}
	var terms []string
	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, "?.,!")
		if len(word) < 3 || stop[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
