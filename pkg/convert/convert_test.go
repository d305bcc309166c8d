// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/edustream/pkg/convert"
)

func TestToIntD(t *testing.T) {
	assert.Equal(t, 42, convert.ToIntD(" 42 ", 0))
	assert.Equal(t, 7, convert.ToIntD("", 7))
	assert.Equal(t, 7, convert.ToIntD("4.5", 7))
	assert.Equal(t, -3, convert.ToIntD("-3", 0))
}

func TestToBool(t *testing.T) {
	for _, value := range []string{"true", "TRUE", "1", "on"} {
		assert.True(t, convert.ToBool(value), value)
	}
	for _, value := range []string{"", "false", "0", "yes-please"} {
		assert.False(t, convert.ToBool(value), value)
	}
}
