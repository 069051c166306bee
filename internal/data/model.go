package data

// Movie represents the movies table
type Movie struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	Slug          string `gorm:"not null;uniqueIndex:movies_slug_idx"`
	Title         string `gorm:"not null"`
	YearOfRelease int    `gorm:"column:year_of_release;not null;index:idx_movies_year"`

	// Associations are declared for migration constraints only
	Genres  []Genre  `gorm:"foreignKey:MovieID;references:ID;constraint:OnDelete:CASCADE"`
	Ratings []Rating `gorm:"foreignKey:MovieID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}

// Genre represents the genres table
type Genre struct {
	ID      uint   `gorm:"primaryKey"`
	MovieID string `gorm:"type:uuid;not null;index:idx_genres_movie_id"`
	Name    string `gorm:"not null"`
}

// TableName overrides the table name
func (Genre) TableName() string {
	return "genres"
}

// Rating represents the ratings table
type Rating struct {
	UserID  string `gorm:"primaryKey;type:uuid"`
	MovieID string `gorm:"primaryKey;type:uuid;index:idx_ratings_movie_id"`
	Score   int    `gorm:"column:rating;not null;check:chk_ratings_rating,rating >= 1 AND rating <= 5"`
}

// TableName overrides the table name
func (Rating) TableName() string {
	return "ratings"
}
