// Package validator runs advisory checks over a normalized timetable. Checks
// never modify the document; their findings are stored as warnings next to
// the extraction.
package validator

import (
	"timetabler/internal/domain"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding about a document. Block is the index within the
// day's blocks, or -1 when the issue concerns the day or a template.
type Issue struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Day      string   `json:"day,omitempty"`
	Block    int      `json:"block"`
	Event    string   `json:"event,omitempty"`
	Message  string   `json:"message"`
}

// Rule is a single built-in check.
type Rule interface {
	Key() string
	Check(doc *domain.ScheduleDocument) []Issue
}

// Registry holds rules in registration order.
type Registry struct {
	rules []Rule
	keys  map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{keys: make(map[string]int)}
}

// Register adds a rule, replacing any rule with the same key.
func (r *Registry) Register(rule Rule) {
	if i, ok := r.keys[rule.Key()]; ok {
		r.rules[i] = rule
		return
	}
	r.keys[rule.Key()] = len(r.rules)
	r.rules = append(r.rules, rule)
}

// Get returns the rule for key, or nil if not found.
func (r *Registry) Get(key string) Rule {
	if i, ok := r.keys[key]; ok {
		return r.rules[i]
	}
	return nil
}

// All returns all registered rules in order.
func (r *Registry) All() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Check runs every rule and concatenates the findings. The result is never nil.
func (r *Registry) Check(doc *domain.ScheduleDocument) []Issue {
	issues := []Issue{}
	if doc == nil {
		return issues
	}
	for _, rule := range r.rules {
		issues = append(issues, rule.Check(doc)...)
	}
	return issues
}

// DefaultRegistry returns a registry with all built-in rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range builtinRules() {
		r.Register(rule)
	}
	return r
}

// Check runs the built-in rules against doc.
func Check(doc *domain.ScheduleDocument) []Issue {
	return DefaultRegistry().Check(doc)
}
