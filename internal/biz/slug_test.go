package biz

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		year  int
		want  string
	}{
		{title: "The Matrix", year: 1999, want: "the-matrix-1999"},
		{title: "The Matrix", year: 2000, want: "the-matrix-2000"},
		{title: "Spider-Man: No Way Home", year: 2021, want: "spider-man-no-way-home-2021"},
		{title: "Amélie", year: 2001, want: "amlie-2001"},
		{title: "Mission:  Impossible", year: 1996, want: "mission-impossible-1996"},
		{title: "snake_case movie", year: 2010, want: "snake_case-movie-2010"},
		{title: "A . B", year: 1980, want: "a-b-1980"},
		{title: "!!!", year: 2020, want: "-2020"},
		{title: "", year: 1999, want: "-1999"},
		{title: "WALL·E", year: 2008, want: "walle-2008"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Slugify(tt.title, tt.year); got != tt.want {
				t.Errorf("Slugify(%q, %d) = %q, want %q", tt.title, tt.year, got, tt.want)
			}
		})
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	titles := []string{"The Matrix", "  spaced   out  ", "日本語", "x-y_z"}
	for _, title := range titles {
		first := Slugify(title, 1999)
		for i := 0; i < 3; i++ {
			if again := Slugify(title, 1999); again != first {
				t.Fatalf("Slugify(%q) changed from %q to %q", title, first, again)
			}
		}
	}
}

func TestMovieSlugFollowsTitleAndYear(t *testing.T) {
	m := &Movie{Title: "The Matrix", YearOfRelease: 1999}
	if m.Slug() != "the-matrix-1999" {
		t.Fatalf("slug = %q", m.Slug())
	}
	m.YearOfRelease = 2000
	if m.Slug() != "the-matrix-2000" {
		t.Fatalf("slug after year change = %q", m.Slug())
	}
}
