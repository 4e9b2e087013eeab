// Package query builds database filter expressions from request query
// parameters. Each resource declares a table of parameter-to-matcher rules
// once; the same builder serves every list endpoint.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Matcher selects how a query parameter constrains its column.
type Matcher int

const (
	// Exact matches the raw string value.
	Exact Matcher = iota
	// Substring matches case-insensitively anywhere in the column.
	Substring
	// Number matches numeric equality and rejects unparseable input.
	Number
	// NumberLoose matches numeric equality and ignores unparseable input.
	NumberLoose
	// IntLoose matches integer equality and ignores unparseable input.
	IntLoose
	// Date matches a YYYY-MM-DD day and rejects unparseable input.
	Date
	// SetContains matches when the column's array contains the value.
	SetContains
	// NormalizedName matches the column with whitespace stripped and case
	// folded.
	NormalizedName
)

// Field binds one query parameter to a column.
type Field struct {
	Column string
	Match  Matcher
	// ErrMsg overrides the client error for strict matchers.
	ErrMsg string
}

// Range binds a min/max parameter pair to inclusive bounds on a column.
// A bound is applied only when it parses as a number.
type Range struct {
	MinParam string
	MaxParam string
	Column   string
}

// Resource is the filter configuration for one resource type.
type Resource struct {
	Fields map[string]Field
	Ranges []Range
	// SearchText columns are OR-matched as case-insensitive substrings
	// against the free-text search parameter.
	SearchText []string
	// SearchNumeric columns are OR-matched with a greater-or-equal floor
	// when the search parameter parses as a number. The asymmetry with the
	// text branch is the established contract.
	SearchNumeric []string
	// Sortable maps sortBy values to columns; unknown values fall back to
	// DefaultSort's column.
	Sortable    map[string]string
	DefaultSort string
	// SoftDelete adds a not-deleted predicate that callers cannot override.
	SoftDelete bool
}

// InvalidQueryError reports malformed filter input supplied by the caller.
type InvalidQueryError struct {
	Message string
}

func (e *InvalidQueryError) Error() string {
	return e.Message
}

func invalidQuery(msg string) error {
	return &InvalidQueryError{Message: msg}
}

// Params is an accessor for raw query parameter values. The signature
// matches fiber's c.Query so handlers can pass it directly.
type Params func(name string, defaultValue ...string) string

// Apply ANDs every configured predicate onto the query.
func (r Resource) Apply(db *gorm.DB, params Params) (*gorm.DB, error) {
	if r.SoftDelete {
		db = db.Scopes(NotDeleted)
	}

	for param, field := range r.Fields {
		value := strings.TrimSpace(params(param))
		if value == "" {
			continue
		}

		switch field.Match {
		case Exact:
			db = db.Where(field.Column+" = ?", value)
		case Substring:
			db = db.Where("LOWER("+field.Column+") LIKE ?", "%"+strings.ToLower(value)+"%")
		case Number:
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				msg := field.ErrMsg
				if msg == "" {
					msg = "Invalid number format"
				}
				return nil, invalidQuery(msg)
			}
			db = db.Where(field.Column+" = ?", parsed)
		case NumberLoose:
			if parsed, err := strconv.ParseFloat(value, 64); err == nil {
				db = db.Where(field.Column+" = ?", parsed)
			}
		case IntLoose:
			if parsed, err := strconv.Atoi(value); err == nil {
				db = db.Where(field.Column+" = ?", parsed)
			}
		case Date:
			parsed, err := time.Parse("2006-01-02", value)
			if err != nil {
				msg := field.ErrMsg
				if msg == "" {
					msg = "Invalid date format. Use YYYY-MM-DD"
				}
				return nil, invalidQuery(msg)
			}
			db = db.Where(field.Column+" = ?", parsed)
		case SetContains:
			db = db.Where("? = ANY("+field.Column+")", value)
		case NormalizedName:
			cleaned := strings.ReplaceAll(strings.ToLower(value), " ", "")
			db = db.Where("REPLACE(LOWER("+field.Column+"), ' ', '') = ?", cleaned)
		}
	}

	for _, rng := range r.Ranges {
		if value := strings.TrimSpace(params(rng.MinParam)); value != "" {
			if parsed, err := strconv.ParseFloat(value, 64); err == nil {
				db = db.Where(rng.Column+" >= ?", parsed)
			}
		}
		if value := strings.TrimSpace(params(rng.MaxParam)); value != "" {
			if parsed, err := strconv.ParseFloat(value, 64); err == nil {
				db = db.Where(rng.Column+" <= ?", parsed)
			}
		}
	}

	if search := strings.TrimSpace(params("search")); search != "" {
		if cond := r.searchCondition(search); cond != "" {
			db = db.Where(cond, searchArgs(r, search)...)
		}
	}

	return db, nil
}

// Sort resolves sortBy/order parameters to an ORDER BY clause, restricted to
// the configured sortable columns.
func (r Resource) Sort(params Params) string {
	if len(r.Sortable) == 0 {
		return r.DefaultSort
	}

	column, ok := r.Sortable[params("sortBy")]
	if !ok {
		return r.DefaultSort
	}

	direction := "asc"
	if params("order") != "asc" {
		direction = "desc"
	}
	return column + " " + direction
}

func (r Resource) searchCondition(search string) string {
	var parts []string
	for _, col := range r.SearchText {
		parts = append(parts, "LOWER("+col+") LIKE ?")
	}
	if _, err := strconv.ParseFloat(search, 64); err == nil {
		for _, col := range r.SearchNumeric {
			parts = append(parts, col+" >= ?")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " OR "))
}

func searchArgs(r Resource, search string) []interface{} {
	var args []interface{}
	for range r.SearchText {
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if parsed, err := strconv.ParseFloat(search, 64); err == nil {
		for range r.SearchNumeric {
			args = append(args, parsed)
		}
	}
	return args
}
