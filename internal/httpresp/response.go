package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Page[T any] struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Logs  []T   `json:"logs"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type URLResponse struct {
	URL string `json:"url"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Saved answers 201 for a freshly created record and 200 for an update.
func Saved(c *gin.Context, created bool, data any) {
	if created {
		Created(c, data)
		return
	}
	OK(c, data)
}

// List never encodes a nil slice as null.
func List[T any](c *gin.Context, data []T) {
	if data == nil {
		data = []T{}
	}
	c.JSON(http.StatusOK, data)
}

func Paged[T any](c *gin.Context, page, limit int, total int64, logs []T) {
	if logs == nil {
		logs = []T{}
	}
	c.JSON(http.StatusOK, Page[T]{
		Page:  page,
		Limit: limit,
		Total: total,
		Logs:  logs,
	})
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageResponse{Message: msg})
}

func URL(c *gin.Context, url string) {
	c.JSON(http.StatusOK, URLResponse{URL: url})
}
