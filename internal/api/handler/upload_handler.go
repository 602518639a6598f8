package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tms-server/internal/pkg/config"
	"tms-server/pkg/utils"
)

// allowedImageTypes 允许上传的图片MIME类型 → 扩展名
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadHandler struct {
	cfg *config.UploadConfig
}

func NewUploadHandler(cfg *config.UploadConfig) *UploadHandler {
	return &UploadHandler{cfg: cfg}
}

// UploadImage 上传图片
// @Summary 上传图片
// @Description 支持 jpeg/png/gif/webp，大小限制见配置，文件名用uuid重写
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "图片文件"
// @Success 200 {object} utils.Response
// @Router /api/upload/image [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.ErrorWithCode(c, 400, "缺少上传文件")
		return
	}

	maxSize := int64(h.cfg.MaxSizeMB) * 1024 * 1024
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	if fileHeader.Size > maxSize {
		utils.ErrorWithCode(c, 400, fmt.Sprintf("文件大小超过 %dMB 限制", maxSize/1024/1024))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		utils.ErrorWithCode(c, 400, "仅支持 jpeg/png/gif/webp 图片")
		return
	}

	imageDir := h.cfg.ImageDir
	if imageDir == "" {
		imageDir = "uploads/images"
	}
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		utils.ErrorWithCode(c, 500, "创建上传目录失败")
		return
	}

	filename := uuid.NewString() + ext
	dst := filepath.Join(imageDir, filename)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		utils.ErrorWithCode(c, 500, "保存上传文件失败")
		return
	}

	utils.Success(c, gin.H{
		"filename": filename,
		"url":      "/uploads/images/" + filename,
	})
}
