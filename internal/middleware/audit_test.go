package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
)

type recordingAudit struct{ logs []*models.AuditLog }

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &recordingAudit{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextIdentityKey, &models.Identity{UserID: "admin-1"})
		c.Next()
	})
	r.GET("/admin/students/export", Audit(repo, nil, models.AuditActionExport, models.AuditResourceStudent), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/admin/fail", Audit(repo, nil, models.AuditActionExport, models.AuditResourceStudent), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/students/export?format=pdf", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/fail", nil))

	require.Len(t, repo.logs, 1)
	entry := repo.logs[0]
	assert.Equal(t, models.AuditActionExport, entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "admin-1", *entry.UserID)

	var values map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.NewValues, &values))
	assert.Equal(t, "format=pdf", values["query"])
}
