package handler

import (
	"github.com/gin-gonic/gin"

	"tms-server/internal/api/middleware"
	"tms-server/internal/dto"
	"tms-server/internal/service"
	"tms-server/pkg/constants"
	"tms-server/pkg/utils"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// List 计划列表
// @Summary 计划列表
// @Tags 测试计划
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "状态过滤 ACTIVE/ARCHIVED"
// @Success 200 {array} dto.PlanSummaryResponse
// @Router /api/plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	var status *string
	if raw, ok := c.GetQuery("status"); ok && raw != "" {
		if raw != constants.PlanStatusActive && raw != constants.PlanStatusArchived {
			utils.ErrorWithCode(c, 400, "无效的 status 参数")
			return
		}
		status = &raw
	}

	plans, err := h.planService.List(status)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, plans)
}

// Create 创建计划
// @Summary 创建测试计划
// @Tags 测试计划
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreatePlanRequest true "创建请求"
// @Success 201 {object} dto.PlanDetailResponse
// @Router /api/plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	claims := middleware.GetCurrentUser(c)
	if claims == nil {
		utils.ErrorWithCode(c, 401, "未登录")
		return
	}

	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	plan, err := h.planService.Create(claims.Name, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, plan)
}

// GetDetail 计划详情
// @Summary 计划详情
// @Tags 测试计划
// @Produce json
// @Security ApiKeyAuth
// @Param planId path int true "计划ID"
// @Success 200 {object} dto.PlanDetailResponse
// @Router /api/plans/{planId} [get]
func (h *PlanHandler) GetDetail(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		utils.Error(c, err)
		return
	}

	plan, err := h.planService.GetDetail(planID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, plan)
}

// Update 更新计划
// @Summary 更新测试计划（给定 testCaseIds 时对账条目）
// @Tags 测试计划
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param planId path int true "计划ID"
// @Param request body dto.UpdatePlanRequest true "更新请求"
// @Success 200 {object} dto.PlanDetailResponse
// @Router /api/plans/{planId} [patch]
func (h *PlanHandler) Update(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		utils.Error(c, err)
		return
	}

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	plan, err := h.planService.Update(planID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, plan)
}

// Delete 删除计划
// @Summary 删除测试计划
// @Tags 测试计划
// @Produce json
// @Security ApiKeyAuth
// @Param planId path int true "计划ID"
// @Success 200 {object} utils.Response
// @Router /api/plans/{planId} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		utils.Error(c, err)
		return
	}

	if err := h.planService.Delete(planID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "测试计划已删除", nil)
}

// Archive 归档计划
// @Summary 归档测试计划（幂等）
// @Tags 测试计划
// @Produce json
// @Security ApiKeyAuth
// @Param planId path int true "计划ID"
// @Success 200 {object} dto.PlanSummaryResponse
// @Router /api/plans/{planId}/archive [patch]
func (h *PlanHandler) Archive(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		utils.Error(c, err)
		return
	}

	plan, err := h.planService.Archive(planID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, plan)
}

// Unarchive 取消归档
// @Summary 取消归档测试计划（幂等）
// @Tags 测试计划
// @Produce json
// @Security ApiKeyAuth
// @Param planId path int true "计划ID"
// @Success 200 {object} dto.PlanSummaryResponse
// @Router /api/plans/{planId}/unarchive [patch]
func (h *PlanHandler) Unarchive(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		utils.Error(c, err)
		return
	}

	plan, err := h.planService.Unarchive(planID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, plan)
}

// UpdateItem 更新计划条目
// @Summary 更新计划条目（写入result时记录执行时间）
// @Tags 测试计划
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param planId path int true "计划ID"
// @Param itemId path int true "条目ID"
// @Param request body dto.UpdatePlanItemRequest true "更新请求"
// @Success 200 {object} dto.PlanItemResponse
// @Router /api/plans/{planId}/items/{itemId} [patch]
func (h *PlanHandler) UpdateItem(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		utils.Error(c, err)
		return
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		utils.Error(c, err)
		return
	}

	var req dto.UpdatePlanItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	item, err := h.planService.UpdateItem(planID, itemID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, item)
}

// BulkUpdateItems 批量更新计划条目
// @Summary 批量更新计划条目
// @Tags 测试计划
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param planId path int true "计划ID"
// @Param request body dto.BulkUpdatePlanItemsRequest true "批量更新请求"
// @Success 200 {object} utils.Response
// @Router /api/plans/{planId}/items/bulk [patch]
func (h *PlanHandler) BulkUpdateItems(c *gin.Context) {
	planID, err := parseIDParam(c, "planId")
	if err != nil {
		utils.Error(c, err)
		return
	}

	var req dto.BulkUpdatePlanItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	count, err := h.planService.BulkUpdateItems(planID, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, gin.H{"updatedCount": count})
}

// BulkArchive 批量归档
// @Summary 批量归档测试计划
// @Tags 测试计划
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.PlanIDListRequest true "计划ID列表"
// @Success 200 {object} dto.BulkPlanResult
// @Router /api/plans/bulk/archive [patch]
func (h *PlanHandler) BulkArchive(c *gin.Context) {
	var req dto.PlanIDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	result, err := h.planService.BulkArchive(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, result)
}

// BulkUnarchive 批量取消归档
// @Summary 批量取消归档测试计划
// @Tags 测试计划
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.PlanIDListRequest true "计划ID列表"
// @Success 200 {object} dto.BulkPlanResult
// @Router /api/plans/bulk/unarchive [patch]
func (h *PlanHandler) BulkUnarchive(c *gin.Context) {
	var req dto.PlanIDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	result, err := h.planService.BulkUnarchive(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, result)
}

// BulkDelete 批量删除
// @Summary 批量删除测试计划
// @Tags 测试计划
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.PlanIDListRequest true "计划ID列表"
// @Success 200 {object} dto.BulkPlanResult
// @Router /api/plans/bulk [delete]
func (h *PlanHandler) BulkDelete(c *gin.Context) {
	var req dto.PlanIDListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorWithCode(c, 400, utils.FormatValidationError(err))
		return
	}

	result, err := h.planService.BulkDelete(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, result)
}
