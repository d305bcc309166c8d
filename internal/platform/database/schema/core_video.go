// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreVideoTable represents the 'core.video' table
type CoreVideoTable struct {
	Table           string
	ID              string
	CourseID        string
	ModuleID        string
	Title           string
	Description     string
	StorageKey      string
	DurationSeconds string
	Position        string
	IsPublished     string
	ViewCount       string
	CreatedAt       string
	UpdatedAt       string
}

// CoreVideo is the schema definition for core.video
var CoreVideo = CoreVideoTable{
	Table:           "core.video",
	ID:              "id",
	CourseID:        "courseid",
	ModuleID:        "moduleid",
	Title:           "title",
	Description:     "description",
	StorageKey:      "storagekey",
	DurationSeconds: "durationseconds",
	Position:        "position",
	IsPublished:     "ispublished",
	ViewCount:       "viewcount",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t CoreVideoTable) Columns() []string {
	return []string{
		t.ID, t.CourseID, t.ModuleID, t.Title, t.Description, t.StorageKey,
		t.DurationSeconds, t.Position, t.IsPublished, t.ViewCount, t.CreatedAt, t.UpdatedAt,
	}
}

// CoreVideoViewTable represents the 'core.videoview' table
type CoreVideoViewTable struct {
	Table        string
	VideoID      string
	UserID       string
	Progress     string
	Completed    string
	LastViewedAt string
}

// CoreVideoView is the schema definition for core.videoview
var CoreVideoView = CoreVideoViewTable{
	Table:        "core.videoview",
	VideoID:      "videoid",
	UserID:       "userid",
	Progress:     "progress",
	Completed:    "completed",
	LastViewedAt: "lastviewedat",
}
