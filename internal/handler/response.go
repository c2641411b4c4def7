package handler

import (
	"github.com/gin-gonic/gin"
)

// Response is the success envelope every endpoint uses. Errors go
// through the error middleware and its own envelope.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Status: "success", Data: data})
}

// Fail hands the error to the error middleware, which picks the HTTP
// status from the error type.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
