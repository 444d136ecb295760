package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/internal/testutil"
	"go-flowershop-admin/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// calendarReports records the year it was asked for.
type calendarReports struct {
	service.ReportService
	year int
}

func (r *calendarReports) Calendar(_ context.Context, year int) (service.Calendar, error) {
	r.year = year
	return service.Calendar{}, nil
}

func TestCalendarDefaultsToLocalYear(t *testing.T) {
	// 01:00 on New Year's Day in Manila, still 2026 in UTC
	clk := clock.NewFixed(time.Date(2026, time.December, 31, 17, 0, 0, 0, time.UTC))
	reports := &calendarReports{}
	h := NewDashboardHandler(reports, clk, testutil.Manila(t))

	app := fiber.New()
	app.Get("/calendar", h.GetCalendar)

	status, env := call(t, app, http.MethodGet, "/calendar")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2027, reports.year)
	assert.Equal(t, float64(2027), env.Data.(map[string]any)["year"])

	call(t, app, http.MethodGet, "/calendar?year=2025")
	assert.Equal(t, 2025, reports.year)
}
