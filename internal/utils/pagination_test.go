package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paramsForQuery(t *testing.T, query string) *PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/rides/unassigned?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	p := paramsForQuery(t, "")

	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
	if p.PageSize != DefaultPageSize {
		t.Errorf("page_size = %d, want %d", p.PageSize, DefaultPageSize)
	}
	if p.Sort != "created_at" || p.Order != "desc" {
		t.Errorf("sort/order = %s/%s, want created_at/desc", p.Sort, p.Order)
	}
}

func TestGetPaginationParamsClamping(t *testing.T) {
	p := paramsForQuery(t, "page=0&page_size=10000&order=sideways")

	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
	if p.PageSize != MaxPageSize {
		t.Errorf("page_size = %d, want %d", p.PageSize, MaxPageSize)
	}
	if p.Order != "desc" {
		t.Errorf("order = %s, want desc", p.Order)
	}
}

func TestGetPaginationParamsSortAllowList(t *testing.T) {
	p := paramsForQuery(t, "sort=ride_number&order=asc")
	if p.Sort != "ride_number" || p.Order != "asc" {
		t.Errorf("sort/order = %s/%s, want ride_number/asc", p.Sort, p.Order)
	}

	// Unknown fields cannot reach the Mongo sort stage.
	p = paramsForQuery(t, "sort=passenger_phone")
	if p.Sort != "created_at" {
		t.Errorf("sort = %s, want fallback created_at", p.Sort)
	}
}
