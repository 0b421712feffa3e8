package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// readUpload 读取上传内容：multipart/form-data 取 field="file"，否则读取整个请求体。
// 请求体大小由 BodyLimit 中间件限制。
func readUpload(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return c.GetRawData()
}

// isBodyTooLarge BodyLimit 触发的读取错误
func isBodyTooLarge(err error) bool {
	return err != nil && strings.Contains(err.Error(), "request body too large")
}
