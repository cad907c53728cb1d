package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/workforce-analytics/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-analytics/internal/domain/prediction"
)

func TestPrediction_SelfAccess(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, selfEmployeeID, employee.RoleEmployee)

	for _, suffix := range []string{"prediction", "summary", "week", "forecast", "performance", "accuracy"} {
		rec := ts.do(t, http.MethodGet, "/api/v1/analytics/employees/"+selfEmployeeID+"/"+suffix, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code, suffix)

		rec = ts.do(t, http.MethodGet, "/api/v1/analytics/employees/"+otherEmployeeID+"/"+suffix, token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, suffix)
	}
}

func TestPrediction_ManagerAccess(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "", employee.RoleManager)

	rec := ts.do(t, http.MethodGet, "/api/v1/analytics/employees/"+otherEmployeeID+"/performance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var perf performanceResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &perf))
	assert.Equal(t, performanceResponse{EmployeeID: otherEmployeeID, PerformanceScore: 72.5}, perf)
}

func TestPrediction_DaysDefaults(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, selfEmployeeID, employee.RoleEmployee)
	base := "/api/v1/analytics/employees/" + selfEmployeeID

	rec := ts.do(t, http.MethodGet, base+"/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, ts.prediction.lastDays)

	rec = ts.do(t, http.MethodGet, base+"/forecast?days=3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var days []prediction.DayPrediction
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &days))
	assert.Len(t, days, 3)

	rec = ts.do(t, http.MethodGet, base+"/forecast?days=0", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPrediction_InvalidAndUnknownID(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "", employee.RoleAdmin)

	rec := ts.do(t, http.MethodGet, "/api/v1/analytics/employees/not-a-uuid/summary", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Error.Details, "id")

	rec = ts.do(t, http.MethodGet, "/api/v1/analytics/employees/0194f3a0-0000-7000-8000-0000000000ff/summary", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Employee not found", decode(t, rec).Error.Message)
}

func TestPrediction_ServiceFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.prediction.failWith = errBoom

	rec := ts.do(t, http.MethodGet, "/api/v1/analytics/employees/"+selfEmployeeID+"/week", ts.token(t, selfEmployeeID, employee.RoleEmployee), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPrediction_ListAll(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/analytics/predictions", ts.token(t, "", employee.RoleManager), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, int64(2), env.Meta.TotalItems)
}
