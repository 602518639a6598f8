package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	pkgErrors "tms-server/pkg/errors"
)

func badRequestf(format string, args ...interface{}) *pkgErrors.AppError {
	return pkgErrors.New(pkgErrors.CodeBadRequest, fmt.Sprintf(format, args...))
}

// parseOptionalID 解析可选的数字查询参数，未给定时返回 nil
func parseOptionalID(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, badRequestf("无效的 %s 参数", name)
	}
	return &id, nil
}
