package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tms-server/internal/dto"
	"tms-server/internal/service"
	"tms-server/pkg/utils"
)

type FolderHandler struct {
	folderService service.FolderService
}

func NewFolderHandler(folderService service.FolderService) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
	}
}

// GetTree 获取文件夹树
// @Summary 获取文件夹树
// @Tags 文件夹
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dto.FolderNode
// @Router /api/folders/tree [get]
func (h *FolderHandler) GetTree(c *gin.Context) {
	tree, err := h.folderService.GetTree()
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, tree)
}

// Create 创建文件夹
// @Summary 创建文件夹
// @Tags 文件夹
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreateFolderRequest true "创建请求"
// @Success 201 {object} model.Folder
// @Router /api/folders [post]
func (h *FolderHandler) Create(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	folder, err := h.folderService.Create(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, folder)
}

// Rename 重命名文件夹
// @Summary 重命名文件夹
// @Tags 文件夹
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "文件夹ID"
// @Param request body dto.RenameFolderRequest true "重命名请求"
// @Success 200 {object} model.Folder
// @Router /api/folders/{id}/rename [patch]
func (h *FolderHandler) Rename(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.Error(c, err)
		return
	}

	var req dto.RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	folder, err := h.folderService.Rename(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, folder)
}

// Move 移动文件夹
// @Summary 移动文件夹到新父级
// @Tags 文件夹
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "文件夹ID"
// @Param request body dto.MoveFolderRequest true "移动请求"
// @Success 200 {object} model.Folder
// @Router /api/folders/{id}/move [patch]
func (h *FolderHandler) Move(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.Error(c, err)
		return
	}

	var req dto.MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	folder, err := h.folderService.Move(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, folder)
}

// Reorder 同级文件夹重排序
// @Summary 同级文件夹重排序
// @Tags 文件夹
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ReorderFoldersRequest true "重排序请求"
// @Success 200 {object} utils.Response
// @Router /api/folders/reorder [patch]
func (h *FolderHandler) Reorder(c *gin.Context) {
	var req dto.ReorderFoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	if err := h.folderService.Reorder(&req); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "排序已更新", nil)
}

// Delete 删除文件夹
// @Summary 删除文件夹（子文件夹与用例迁移到其父级）
// @Tags 文件夹
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "文件夹ID"
// @Success 200 {object} utils.Response
// @Router /api/folders/{id} [delete]
func (h *FolderHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.Error(c, err)
		return
	}

	if err := h.folderService.Delete(id); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "文件夹已删除", nil)
}

// parseIDParam 解析路径中的数字ID
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequestf("无效的 %s 参数", name)
	}
	return id, nil
}
