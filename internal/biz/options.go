package biz

import (
	"strings"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 25
)

// now is swapped in tests that need a fixed calendar year.
var now = time.Now

// RawQuery holds listing parameters as received from a caller. Nil means the
// parameter was not supplied.
type RawQuery struct {
	Title    *string
	Year     *int
	SortBy   *string
	Page     *int
	PageSize *int
}

// sortAliases maps lower-cased caller tokens to sortable fields.
var sortAliases = map[string]SortField{
	"title": SortFieldTitle,
	"year":  SortFieldYearOfRelease,
}

// NormalizeQuery validates raw listing parameters and resolves them into a
// QuerySpec. All violations are reported together.
func NormalizeQuery(raw RawQuery) (*QuerySpec, error) {
	verr := &ValidationError{}
	spec := &QuerySpec{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if raw.Title != nil {
		if title := strings.TrimSpace(*raw.Title); title != "" {
			spec.Filter.Title = &title
		}
	}

	if raw.Year != nil {
		year := *raw.Year
		if current := now().UTC().Year(); year > current {
			verr.Add("year", "must be less than or equal to %d", current)
		}
		spec.Filter.Year = &year
	}

	spec.Sort = ParseSort(raw.SortBy)
	if spec.Sort.Field == SortFieldInvalid {
		verr.Add("sortBy", "must be one of title, year optionally prefixed with + or -")
	}

	if raw.Page != nil {
		spec.Page = max(*raw.Page, 1)
	}
	if raw.PageSize != nil {
		size := max(*raw.PageSize, 1)
		if size > MaxPageSize {
			verr.Add("pageSize", "must be between 1 and %d", MaxPageSize)
		}
		spec.PageSize = size
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return spec, nil
}

// ParseSort resolves a sortBy token such as "-title" or "+year" against the
// alias table. Unknown fields resolve to SortFieldInvalid instead of being
// ignored.
func ParseSort(sortBy *string) MovieSort {
	if sortBy == nil || strings.TrimSpace(*sortBy) == "" {
		return MovieSort{Field: SortFieldNone, Order: SortUnsorted}
	}

	token := strings.TrimSpace(*sortBy)
	order := SortAscending
	if strings.HasPrefix(token, "-") {
		order = SortDescending
	}
	token = strings.TrimLeft(token, "+-")

	field, ok := sortAliases[strings.ToLower(token)]
	if !ok {
		field = SortFieldInvalid
	}
	return MovieSort{Field: field, Order: order}
}
