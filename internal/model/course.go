package model

import "time"

// CourseLevel represents the difficulty of a course
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

// Course represents a catalog entry. Every course is addressed by a unique
// URL-safe slug derived from its title.
type Course struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Description   *string     `json:"description,omitempty"`
	ThumbnailURL  *string     `json:"thumbnail_url,omitempty"`
	InstructorID  int64       `json:"instructor_id"`
	Level         CourseLevel `json:"level"`
	Prerequisites *string     `json:"prerequisites,omitempty"` // JSON array of strings
	IsPublished   bool        `json:"is_published"`
	IsFeatured    bool        `json:"is_featured"`
	Price         float64     `json:"price"`
	Currency      string      `json:"currency"`
	CreatedAt     time.Time   `json:"created_at"`
	PublishedAt   *time.Time  `json:"published_at,omitempty"`
}

// IsFree returns true if the course has no price
func (c *Course) IsFree() bool {
	return c.Price == 0
}
