package service

import (
	"gorm.io/gorm"

	"tms-server/internal/dto"
	"tms-server/internal/model"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

// DashboardService 只读聚合统计
type DashboardService interface {
	Stats() (*dto.DashboardStats, error)
	MyAssignments(assignee string) (*dto.AssignmentStats, error)
	RecentActivity(limit int) ([]*dto.ActivityEntry, error)
	Overview() (*dto.OverviewStats, error)
	ActivePlans(limit int) ([]*dto.ActivePlanEntry, error)
}

type dashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db}
}

func (s *dashboardService) Stats() (*dto.DashboardStats, error) {
	stats := &dto.DashboardStats{}

	if err := s.db.Model(&model.TestCase{}).Count(&stats.TestCaseCount).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计测试用例失败", err)
	}
	if err := s.db.Model(&model.Folder{}).Count(&stats.FolderCount).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计文件夹失败", err)
	}
	if err := s.db.Model(&model.Plan{}).Count(&stats.PlanCount).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计测试计划失败", err)
	}
	err := s.db.Model(&model.Plan{}).Where("status = ?", constants.PlanStatusActive).
		Count(&stats.ActivePlanCount).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计进行中计划失败", err)
	}
	return stats, nil
}

// MyAssignments 当前用户在进行中计划里的待执行统计
func (s *dashboardService) MyAssignments(assignee string) (*dto.AssignmentStats, error) {
	stats := &dto.AssignmentStats{Assignee: assignee}

	base := func() *gorm.DB {
		return s.db.Model(&model.PlanItem{}).
			Joins("JOIN plans ON plans.id = plan_items.plan_id").
			Where("plans.status = ?", constants.PlanStatusActive).
			Where("plan_items.assignee = ?", assignee)
	}

	err := base().Where("plan_items.result = ?", constants.ResultNotRun).
		Count(&stats.NotRunCount).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计指派条目失败", err)
	}
	err = base().Where("plan_items.result = ?", constants.ResultInProgress).
		Count(&stats.InProgressCount).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计指派条目失败", err)
	}
	if err := base().Count(&stats.TotalAssigned).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计指派条目失败", err)
	}
	return stats, nil
}

// RecentActivity 按执行时间倒序的最近执行记录
func (s *dashboardService) RecentActivity(limit int) ([]*dto.ActivityEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var entries []*dto.ActivityEntry
	err := s.db.Model(&model.PlanItem{}).
		Select(`plan_items.id AS plan_item_id,
			plan_items.plan_id,
			plans.name AS plan_name,
			test_cases.title AS test_case_title,
			plan_items.result,
			plan_items.assignee,
			plan_items.executed_at`).
		Joins("JOIN plans ON plans.id = plan_items.plan_id").
		Joins("JOIN test_cases ON test_cases.id = plan_items.test_case_id").
		Where("plan_items.executed_at IS NOT NULL").
		Order("plan_items.executed_at DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询执行记录失败", err)
	}
	if entries == nil {
		entries = []*dto.ActivityEntry{}
	}
	return entries, nil
}

// Overview 进行中计划的结果分布
func (s *dashboardService) Overview() (*dto.OverviewStats, error) {
	var rows []struct {
		Result string
		Count  int64
	}
	err := s.db.Model(&model.PlanItem{}).
		Select("plan_items.result, COUNT(*) AS count").
		Joins("JOIN plans ON plans.id = plan_items.plan_id").
		Where("plans.status = ?", constants.PlanStatusActive).
		Group("plan_items.result").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计结果分布失败", err)
	}

	stats := &dto.OverviewStats{}
	for _, row := range rows {
		switch row.Result {
		case constants.ResultNotRun:
			stats.NotRun = row.Count
		case constants.ResultInProgress:
			stats.InProgress = row.Count
		case constants.ResultPass:
			stats.Pass = row.Count
		case constants.ResultFail:
			stats.Fail = row.Count
		case constants.ResultBlock:
			stats.Block = row.Count
		}
		stats.Total += row.Count
	}
	return stats, nil
}

// ActivePlans 进行中计划及其进度
func (s *dashboardService) ActivePlans(limit int) ([]*dto.ActivePlanEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 5
	}

	var plans []*model.Plan
	err := s.db.Model(&model.Plan{}).
		Where("status = ?", constants.PlanStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&plans).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询进行中计划失败", err)
	}

	entries := make([]*dto.ActivePlanEntry, 0, len(plans))
	for _, plan := range plans {
		var total, notRun int64
		err := s.db.Model(&model.PlanItem{}).Where("plan_id = ?", plan.ID).
			Count(&total).Error
		if err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计计划条目失败", err)
		}
		err = s.db.Model(&model.PlanItem{}).
			Where("plan_id = ? AND result = ?", plan.ID, constants.ResultNotRun).
			Count(&notRun).Error
		if err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计计划条目失败", err)
		}

		entries = append(entries, &dto.ActivePlanEntry{
			ID:         plan.ID,
			Name:       plan.Name,
			TotalCount: int(total),
			Progress:   computeProgress(int(total), int(notRun)),
			CreatedAt:  plan.CreatedAt,
		})
	}
	return entries, nil
}
