package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPaginationDegenerateLimit(t *testing.T) {
	// A zero limit must not divide by zero.
	block := pagination(10, 1, 0)
	if block["limit"] != 1 {
		t.Errorf("limit = %v, want clamped to 1", block["limit"])
	}
	if block["pages"] != int64(10) {
		t.Errorf("pages = %v, want 10", block["pages"])
	}

	block = pagination(10, -3, -7)
	if block["page"] != 1 || block["limit"] != 1 {
		t.Errorf("negative inputs not clamped: page=%v limit=%v", block["page"], block["limit"])
	}
}

func TestPaginationPageCount(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		pages int64
	}{
		{0, 50, 0},
		{50, 50, 1},
		{51, 50, 2},
		{100, 50, 2},
	}
	for _, tc := range cases {
		block := pagination(tc.total, 1, tc.limit)
		if block["pages"] != tc.pages {
			t.Errorf("pagination(%d, 1, %d): pages = %v, want %d", tc.total, tc.limit, block["pages"], tc.pages)
		}
	}
}

func TestListParamsClamp(t *testing.T) {
	cases := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 50},
		{"?page=3&limit=25", 3, 25},
		{"?page=0&limit=0", 1, 50},
		{"?page=-2&limit=-9", 1, 50},
		{"?limit=1000", 1, 50},
		{"?page=abc&limit=xyz", 1, 50},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/users"+tc.query, nil)
		page, limit := listParams(c, 50)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Errorf("listParams(%q) = (%d, %d), want (%d, %d)", tc.query, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}
