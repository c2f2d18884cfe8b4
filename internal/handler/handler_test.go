package handler

import (
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearn-api/internal/middleware"
	"github.com/noah-isme/elearn-api/internal/models"
)

type responseEnvelope struct {
	Data    json.RawMessage        `json:"data"`
	Message string                 `json:"message"`
	Meta    map[string]interface{} `json:"meta"`
	Error   *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(rec *httptest.ResponseRecorder) responseEnvelope {
	var env responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return env
}

func newTestContext(identity *models.Identity) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if identity != nil {
		c.Set(middleware.ContextIdentityKey, identity)
	}
	return c, rec
}

func testStudent() *models.Identity {
	studentID := "student-1"
	return &models.Identity{UserID: "u1", Username: "alice", Role: models.RoleStudent, Active: true, StudentID: &studentID}
}
