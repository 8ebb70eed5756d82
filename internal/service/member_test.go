package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampStatementPage(t *testing.T) {
	cases := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -5, 1, 10},
		{"passthrough", 2, 25, 2, 25},
		{"capped", 1, 10_000, 1, 100},
		{"at cap", 1, 100, 1, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, size := clampStatementPage(tc.page, tc.size)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantPageSize, size)
		})
	}
}
