package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dimission-forecast/pkg/response"
)

// BodyLimit 请求体大小限制
// Content-Length 已超限时直接拒绝，否则包装为 MaxBytesReader，由读取方感知超限
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.PayloadTooLarge(c)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// IsBodyTooLarge 判断错误是否由请求体超限引起
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
