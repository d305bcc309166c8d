// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserEnrollmentTable represents the 'users.enrollment' table
type UserEnrollmentTable struct {
	Table          string
	UserID         string
	CourseID       string
	Progress       string
	EnrolledAt     string
	LastAccessedAt string
}

// UserEnrollment is the schema definition for users.enrollment
var UserEnrollment = UserEnrollmentTable{
	Table:          "users.enrollment",
	UserID:         "userid",
	CourseID:       "courseid",
	Progress:       "progress",
	EnrolledAt:     "enrolledat",
	LastAccessedAt: "lastaccessedat",
}
