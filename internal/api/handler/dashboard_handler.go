package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tms-server/internal/api/middleware"
	"tms-server/internal/service"
	"tms-server/pkg/utils"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats 总体统计
// @Summary 总体统计
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.DashboardStats
// @Router /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats()
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, stats)
}

// MyAssignments 当前用户的待执行统计
// @Summary 当前用户的待执行统计
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.AssignmentStats
// @Router /api/dashboard/my-assignments [get]
func (h *DashboardHandler) MyAssignments(c *gin.Context) {
	claims := middleware.GetCurrentUser(c)
	if claims == nil {
		utils.ErrorWithCode(c, 401, "未登录")
		return
	}

	stats, err := h.dashboardService.MyAssignments(claims.Name)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, stats)
}

// RecentActivity 最近执行记录
// @Summary 最近执行记录
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回条数，默认10"
// @Success 200 {array} dto.ActivityEntry
// @Router /api/dashboard/recent-activity [get]
func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.dashboardService.RecentActivity(limit)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, entries)
}

// Overview 进行中计划的结果分布
// @Summary 进行中计划的结果分布
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.OverviewStats
// @Router /api/dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	stats, err := h.dashboardService.Overview()
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, stats)
}

// ActivePlans 进行中计划及进度
// @Summary 进行中计划及进度
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回条数，默认5"
// @Success 200 {array} dto.ActivePlanEntry
// @Router /api/dashboard/active-plans [get]
func (h *DashboardHandler) ActivePlans(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	entries, err := h.dashboardService.ActivePlans(limit)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, entries)
}
