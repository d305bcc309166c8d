// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/edustream/internal/platform/database/schema"
)

func TestColumns_MatchScanOrder(t *testing.T) {
	assert.Equal(t,
		"id, name, email, passwordhash, role, isactive, resettokenhash, resettokenexpiresat, createdat, updatedat",
		schema.List(schema.UserAccount.Columns()),
	)
	assert.Len(t, schema.CoreVideo.Columns(), 12)
	assert.Equal(t, "core.coursereview", schema.CoreCourseReview.Table)
}
