package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mboyle/threadline-api/engine"
	"github.com/mboyle/threadline-api/gate"
)

var messagingEngine *engine.Engine

// SetEngine installs the engine instance used by the handlers. Called
// from main at boot and from tests with engines over in-memory databases.
func SetEngine(e *engine.Engine) {
	messagingEngine = e
}

// GetEngine returns the installed engine instance
func GetEngine() *engine.Engine {
	return messagingEngine
}

// submissionSource identifies where a submission came from for
// rate-limiting purposes: the acting user at their network origin
func submissionSource(c *gin.Context, userID string) string {
	return userID + "@" + c.ClientIP()
}

// respondEngineError maps the engine/gate error taxonomy onto the HTTP
// envelope: 400 validation, 403 forbidden, 404 missing, 422 policy,
// 429 throttled, 500 otherwise
func respondEngineError(c *gin.Context, err error) {
	switch {
	case engine.IsValidation(err):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case engine.IsForbidden(err):
		respondError(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case engine.IsNotFound(err):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case gate.IsContentPolicyViolation(err):
		respondError(c, http.StatusUnprocessableEntity, gate.CodeContentPolicy, err.Error())
	case gate.IsRateLimited(err):
		respondError(c, http.StatusTooManyRequests, gate.CodeRateLimited, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.PureJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondData(c *gin.Context, status int, data any) {
	c.PureJSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
