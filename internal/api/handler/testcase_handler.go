package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"tms-server/internal/dto"
	"tms-server/internal/service"
	"tms-server/pkg/utils"
)

type TestCaseHandler struct {
	testCaseService service.TestCaseService
}

func NewTestCaseHandler(testCaseService service.TestCaseService) *TestCaseHandler {
	return &TestCaseHandler{
		testCaseService: testCaseService,
	}
}

// List 用例列表
// @Summary 用例列表
// @Description 不带 folderId 返回全部用例；folderId=0 表示未归档用例
// @Tags 测试用例
// @Produce json
// @Security ApiKeyAuth
// @Param folderId query int false "文件夹ID，0为未归档"
// @Success 200 {array} model.TestCase
// @Router /api/testcases [get]
func (h *TestCaseHandler) List(c *gin.Context) {
	folderID, all, err := resolveFolderScope(c)
	if err != nil {
		utils.Error(c, err)
		return
	}

	testCases, err := h.testCaseService.List(folderID, all)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, testCases)
}

// ListByFolder 文件夹内用例列表
// @Summary 文件夹内用例列表
// @Tags 测试用例
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "文件夹ID"
// @Success 200 {array} model.TestCase
// @Router /api/folders/{id}/testcases [get]
func (h *TestCaseHandler) ListByFolder(c *gin.Context) {
	folderID, err := parseIDParam(c, "id")
	if err != nil {
		utils.Error(c, err)
		return
	}

	testCases, err := h.testCaseService.List(&folderID, false)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, testCases)
}

// Get 用例详情
// @Summary 用例详情
// @Tags 测试用例
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用例ID"
// @Success 200 {object} model.TestCase
// @Router /api/testcases/{id} [get]
func (h *TestCaseHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.Error(c, err)
		return
	}

	testCase, err := h.testCaseService.Get(id)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, testCase)
}

// Create 创建用例
// @Summary 创建测试用例
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreateTestCaseRequest true "创建请求"
// @Success 201 {object} model.TestCase
// @Router /api/testcases [post]
func (h *TestCaseHandler) Create(c *gin.Context) {
	var req dto.CreateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	testCase, err := h.testCaseService.Create(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, testCase)
}

// Update 更新用例
// @Summary 更新测试用例（部分更新）
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用例ID"
// @Param request body dto.UpdateTestCaseRequest true "更新请求"
// @Success 200 {object} model.TestCase
// @Router /api/testcases/{id} [patch]
func (h *TestCaseHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.Error(c, err)
		return
	}

	var req dto.UpdateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	testCase, err := h.testCaseService.Update(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, testCase)
}

// Delete 删除用例
// @Summary 删除测试用例（级联删除其计划条目）
// @Tags 测试用例
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用例ID"
// @Success 200 {object} utils.Response
// @Router /api/testcases/{id} [delete]
func (h *TestCaseHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.Error(c, err)
		return
	}

	if err := h.testCaseService.Delete(id); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "测试用例已删除", nil)
}

// Reorder 文件夹内重排序
// @Summary 文件夹内重排序
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.ReorderTestCasesRequest true "重排序请求"
// @Success 200 {object} utils.Response
// @Router /api/testcases/reorder [post]
func (h *TestCaseHandler) Reorder(c *gin.Context) {
	var req dto.ReorderTestCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	if err := h.testCaseService.Reorder(&req); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "排序已更新", nil)
}

// BulkUpdate 批量更新用例
// @Summary 批量更新测试用例
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.BulkUpdateTestCasesRequest true "批量更新请求"
// @Success 200 {object} utils.Response
// @Router /api/testcases/bulk [patch]
func (h *TestCaseHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateTestCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	count, err := h.testCaseService.BulkUpdate(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, gin.H{"updatedCount": count})
}

// BulkDelete 批量删除用例
// @Summary 批量删除测试用例
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.BulkDeleteTestCasesRequest true "批量删除请求"
// @Success 200 {object} utils.Response
// @Router /api/testcases/bulk [delete]
func (h *TestCaseHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteTestCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	count, err := h.testCaseService.BulkDelete(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, gin.H{"deletedCount": count})
}

// Move 批量移动用例
// @Summary 批量移动测试用例到目标文件夹
// @Tags 测试用例
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.MoveTestCasesRequest true "移动请求"
// @Success 200 {object} utils.Response
// @Router /api/testcases/move [post]
func (h *TestCaseHandler) Move(c *gin.Context) {
	var req dto.MoveTestCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	count, err := h.testCaseService.MoveToFolder(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, gin.H{"movedCount": count})
}

// Import 导入CSV
// @Summary 从CSV导入测试用例
// @Description multipart上传：file为CSV文件，mapping为可选的 表头→字段 JSON映射
// @Tags 测试用例
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "CSV文件"
// @Param folderId formData int false "目标文件夹ID"
// @Param mapping formData string false "表头映射JSON"
// @Success 200 {object} dto.ImportResult
// @Router /api/testcases/import [post]
func (h *TestCaseHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.ErrorWithCode(c, 400, "缺少上传文件")
		return
	}

	var folderID *int64
	if raw := c.PostForm("folderId"); raw != "" {
		var id int64
		if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id <= 0 {
			utils.ErrorWithCode(c, 400, "无效的 folderId 参数")
			return
		}
		folderID = &id
	}

	var mapping map[string]string
	if raw := c.PostForm("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			utils.ErrorWithCode(c, 400, "无效的 mapping 参数")
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.ErrorWithCode(c, 400, "读取上传文件失败")
		return
	}
	defer file.Close()

	result, err := h.testCaseService.ImportCSV(file, folderID, mapping)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, result)
}

// Export 导出CSV
// @Summary 导出测试用例为CSV
// @Tags 测试用例
// @Produce text/csv
// @Security ApiKeyAuth
// @Param folderId query int false "文件夹ID，0为未归档"
// @Router /api/testcases/export [get]
func (h *TestCaseHandler) Export(c *gin.Context) {
	folderID, all, err := resolveFolderScope(c)
	if err != nil {
		utils.Error(c, err)
		return
	}

	filename := fmt.Sprintf("testcases-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.testCaseService.ExportCSV(c.Writer, folderID, all); err != nil {
		utils.Error(c, err)
		return
	}
}

// resolveFolderScope 解析 folderId 查询参数：缺省为全部，0为未归档
func resolveFolderScope(c *gin.Context) (folderID *int64, all bool, err error) {
	raw, ok := c.GetQuery("folderId")
	if !ok || raw == "" {
		return nil, true, nil
	}
	if raw == "0" {
		return nil, false, nil
	}
	id, parseErr := parseOptionalID(c, "folderId")
	if parseErr != nil {
		return nil, false, parseErr
	}
	return id, false, nil
}
