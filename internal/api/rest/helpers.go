package rest

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// SuccessResponse is the envelope every 2xx JSON response uses.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

func respondJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Data: data})
}

func respondAPIError(c *gin.Context, err error) {
	apiErr := TranslateError(err)
	c.JSON(apiErr.HTTPStatus, apiErr)
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(ErrInvalidJSON.HTTPStatus, ErrInvalidJSON)
		return false
	}
	return true
}

func requireParam(c *gin.Context, name string) (string, bool) {
	value := c.Param(name)
	if value == "" {
		c.JSON(ErrMissingParameter.HTTPStatus, ErrMissingParameter)
		return "", false
	}
	return value, true
}

func requireQuery(c *gin.Context, name string) (string, bool) {
	value := c.Query(name)
	if value == "" {
		c.JSON(ErrMissingParameter.HTTPStatus, ErrMissingParameter)
		return "", false
	}
	return value, true
}

func queryInt(c *gin.Context, name string, def int) int {
	value := c.Query(name)
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return i
}
