package biz

import (
	"testing"
	"time"
)

func withYear(t *testing.T, year int) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   *string
		want MovieSort
	}{
		{in: nil, want: MovieSort{Field: SortFieldNone, Order: SortUnsorted}},
		{in: ptr("  "), want: MovieSort{Field: SortFieldNone, Order: SortUnsorted}},
		{in: ptr("title"), want: MovieSort{Field: SortFieldTitle, Order: SortAscending}},
		{in: ptr("+title"), want: MovieSort{Field: SortFieldTitle, Order: SortAscending}},
		{in: ptr("-title"), want: MovieSort{Field: SortFieldTitle, Order: SortDescending}},
		{in: ptr("-TITLE"), want: MovieSort{Field: SortFieldTitle, Order: SortDescending}},
		{in: ptr("Year"), want: MovieSort{Field: SortFieldYearOfRelease, Order: SortAscending}},
		{in: ptr("-year"), want: MovieSort{Field: SortFieldYearOfRelease, Order: SortDescending}},
		{in: ptr("yearOfRelease"), want: MovieSort{Field: SortFieldInvalid, Order: SortAscending}},
		{in: ptr("-id; drop table movies"), want: MovieSort{Field: SortFieldInvalid, Order: SortDescending}},
	}
	for _, tt := range tests {
		name := "<nil>"
		if tt.in != nil {
			name = *tt.in
		}
		t.Run(name, func(t *testing.T) {
			if got := ParseSort(tt.in); got != tt.want {
				t.Errorf("ParseSort(%q) = %+v, want %+v", name, got, tt.want)
			}
		})
	}
}

func TestNormalizeQueryDefaults(t *testing.T) {
	spec, err := NormalizeQuery(RawQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Page != DefaultPage || spec.PageSize != DefaultPageSize {
		t.Errorf("page/pageSize = %d/%d", spec.Page, spec.PageSize)
	}
	if !spec.Sort.Unsorted() || spec.Filter.Title != nil || spec.Filter.Year != nil || spec.UserID != nil {
		t.Errorf("unexpected spec %+v", spec)
	}
}

func TestNormalizeQuery(t *testing.T) {
	withYear(t, 2024)

	spec, err := NormalizeQuery(RawQuery{
		Title:    ptr("  matrix "),
		Year:     ptr(1999),
		SortBy:   ptr("-title"),
		Page:     ptr(2),
		PageSize: ptr(25),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *spec.Filter.Title != "matrix" || *spec.Filter.Year != 1999 {
		t.Errorf("filter = %+v", spec.Filter)
	}
	if spec.Sort != (MovieSort{Field: SortFieldTitle, Order: SortDescending}) {
		t.Errorf("sort = %+v", spec.Sort)
	}
	if spec.Page != 2 || spec.PageSize != 25 || spec.Offset() != 25 {
		t.Errorf("page = %d size = %d offset = %d", spec.Page, spec.PageSize, spec.Offset())
	}

	user := "u1"
	if spec.WithUser(&user).UserID != &user {
		t.Error("WithUser did not attach the user")
	}
}

func TestNormalizeQueryClampsLowPagination(t *testing.T) {
	spec, err := NormalizeQuery(RawQuery{Page: ptr(0), PageSize: ptr(-3), Title: ptr("")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Page != 1 || spec.PageSize != 1 {
		t.Errorf("page/pageSize = %d/%d, want 1/1", spec.Page, spec.PageSize)
	}
	if spec.Filter.Title != nil {
		t.Error("blank title should not filter")
	}
}

func TestNormalizeQueryReportsEveryViolation(t *testing.T) {
	withYear(t, 2024)

	_, err := NormalizeQuery(RawQuery{
		Year:     ptr(2025),
		SortBy:   ptr("rating"),
		PageSize: ptr(26),
	})
	verr, ok := IsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}

	fields := map[string]bool{}
	for _, v := range verr.Violations {
		fields[v.Field] = true
	}
	for _, f := range []string{"year", "sortBy", "pageSize"} {
		if !fields[f] {
			t.Errorf("missing violation for %s in %v", f, verr.Violations)
		}
	}
	if len(verr.Violations) != 3 {
		t.Errorf("got %d violations, want 3", len(verr.Violations))
	}
}

func TestNormalizeQueryAcceptsCurrentYear(t *testing.T) {
	withYear(t, 2024)
	if _, err := NormalizeQuery(RawQuery{Year: ptr(2024)}); err != nil {
		t.Fatalf("current year rejected: %v", err)
	}
}
