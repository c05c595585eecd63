package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

func ok(c *gin.Context, v any) {
	c.JSON(http.StatusOK, v)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
