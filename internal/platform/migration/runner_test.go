// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestConvertToPgx5DSN checks the scheme rewrite expected by golang-migrate.
*/
func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/edu", "pgx5://u:p@db:5432/edu"},
		{"postgresql://u:p@db:5432/edu", "pgx5://u:p@db:5432/edu"},
		{"pgx5://u:p@db:5432/edu", "pgx5://u:p@db:5432/edu"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convertToPgx5DSN(tt.in))
	}
}
