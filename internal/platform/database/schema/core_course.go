// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreCourseTable represents the 'core.course' table
type CoreCourseTable struct {
	Table           string
	ID              string
	Title           string
	Slug            string
	Description     string
	InstructorID    string
	Level           string
	IsPublished     string
	EnrollmentCount string
	RatingAvg       string
	CreatedAt       string
	UpdatedAt       string
}

// CoreCourse is the schema definition for core.course
var CoreCourse = CoreCourseTable{
	Table:           "core.course",
	ID:              "id",
	Title:           "title",
	Slug:            "slug",
	Description:     "description",
	InstructorID:    "instructorid",
	Level:           "level",
	IsPublished:     "ispublished",
	EnrollmentCount: "enrollmentcount",
	RatingAvg:       "ratingavg",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t CoreCourseTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.InstructorID, t.Level,
		t.IsPublished, t.EnrollmentCount, t.RatingAvg, t.CreatedAt, t.UpdatedAt,
	}
}

// CoreCourseModuleTable represents the 'core.coursemodule' table
type CoreCourseModuleTable struct {
	Table       string
	ID          string
	CourseID    string
	Title       string
	Description string
	Position    string
}

// CoreCourseModule is the schema definition for core.coursemodule
var CoreCourseModule = CoreCourseModuleTable{
	Table:       "core.coursemodule",
	ID:          "id",
	CourseID:    "courseid",
	Title:       "title",
	Description: "description",
	Position:    "position",
}

// Columns returns all standard column names
func (t CoreCourseModuleTable) Columns() []string {
	return []string{t.ID, t.CourseID, t.Title, t.Description, t.Position}
}

// CoreCourseReviewTable represents the 'core.coursereview' table
type CoreCourseReviewTable struct {
	Table     string
	CourseID  string
	UserID    string
	Rating    string
	Comment   string
	CreatedAt string
	UpdatedAt string
}

// CoreCourseReview is the schema definition for core.coursereview
var CoreCourseReview = CoreCourseReviewTable{
	Table:     "core.coursereview",
	CourseID:  "courseid",
	UserID:    "userid",
	Rating:    "rating",
	Comment:   "comment",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t CoreCourseReviewTable) Columns() []string {
	return []string{t.CourseID, t.UserID, t.Rating, t.Comment, t.CreatedAt, t.UpdatedAt}
}
