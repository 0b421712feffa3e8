package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reyesbrostec/deceAUM/pkg/response"
)

// BodyLimit 请求体大小限制
// 上传的导出文档与 ICS 文件共用该上限（server.max_body_bytes）
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Cuerpo de la solicitud demasiado grande")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
