package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openassembly/election-api/src/api/data"
)

// writeError maps engine error kinds to HTTP statuses. Unexpected errors
// are logged and surfaced generically.
func writeError(c *gin.Context, err error) {
	switch data.KindOf(err) {
	case data.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case data.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	case data.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
	case data.KindAuthorization:
		c.JSON(http.StatusForbidden, gin.H{"err": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
	}
}
