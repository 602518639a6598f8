package service

import (
	"math"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"tms-server/internal/dto"
	"tms-server/internal/model"
	"tms-server/internal/repository"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

type PlanService interface {
	Create(createdBy string, req *dto.CreatePlanRequest) (*dto.PlanDetailResponse, error)
	List(status *string) ([]*dto.PlanSummaryResponse, error)
	GetDetail(planID int64) (*dto.PlanDetailResponse, error)
	Update(planID int64, req *dto.UpdatePlanRequest) (*dto.PlanDetailResponse, error)
	Delete(planID int64) error
	Archive(planID int64) (*dto.PlanSummaryResponse, error)
	Unarchive(planID int64) (*dto.PlanSummaryResponse, error)
	UpdateItem(planID, itemID int64, req *dto.UpdatePlanItemRequest) (*dto.PlanItemResponse, error)
	BulkUpdateItems(planID int64, req *dto.BulkUpdatePlanItemsRequest) (int, error)
	BulkArchive(req *dto.PlanIDListRequest) (*dto.BulkPlanResult, error)
	BulkUnarchive(req *dto.PlanIDListRequest) (*dto.BulkPlanResult, error)
	BulkDelete(req *dto.PlanIDListRequest) (*dto.BulkPlanResult, error)
}

type planService struct {
	db           *gorm.DB
	planRepo     repository.PlanRepository
	testCaseRepo repository.TestCaseRepository
}

func NewPlanService(
	db *gorm.DB,
	planRepo repository.PlanRepository,
	testCaseRepo repository.TestCaseRepository,
) PlanService {
	return &planService{
		db:           db,
		planRepo:     planRepo,
		testCaseRepo: testCaseRepo,
	}
}

// Create 创建计划：校验用例存在，计划与N个NOT_RUN条目在同一事务写入
func (s *planService) Create(createdBy string, req *dto.CreatePlanRequest) (*dto.PlanDetailResponse, error) {
	testCases, err := s.testCaseRepo.FindByIDs(req.TestCaseIDs)
	if err != nil {
		return nil, err
	}
	if len(testCases) != len(lo.Uniq(req.TestCaseIDs)) {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "部分测试用例不存在")
	}

	plan := &model.Plan{
		Name:        req.Name,
		Description: req.Description,
		Status:      constants.PlanStatusActive,
		CreatedBy:   createdBy,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "创建测试计划失败", err)
		}
		items := lo.Map(testCases, func(tc *model.TestCase, _ int) *model.PlanItem {
			return &model.PlanItem{
				PlanID:     plan.ID,
				TestCaseID: tc.ID,
				Result:     constants.ResultNotRun,
				Assignee:   req.Assignee,
			}
		})
		if err := tx.Create(items).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "创建计划条目失败", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetDetail(plan.ID)
}

func (s *planService) List(status *string) ([]*dto.PlanSummaryResponse, error) {
	plans, err := s.planRepo.List(status)
	if err != nil {
		return nil, err
	}

	planIDs := lo.Map(plans, func(p *model.Plan, _ int) int64 { return p.ID })
	counts, err := s.planRepo.CountItemsByPlan(planIDs)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PlanSummaryResponse, 0, len(plans))
	for _, plan := range plans {
		count := counts[plan.ID]
		result = append(result, toPlanSummary(plan, count.Total, count.NotRun))
	}
	return result, nil
}

func (s *planService) GetDetail(planID int64) (*dto.PlanDetailResponse, error) {
	plan, err := s.planRepo.FindByIDWithItems(planID)
	if err != nil {
		return nil, err
	}

	total := len(plan.Items)
	notRun := 0
	items := make([]*dto.PlanItemResponse, 0, total)
	for i := range plan.Items {
		item := &plan.Items[i]
		if item.Result == constants.ResultNotRun {
			notRun++
		}
		items = append(items, toPlanItemResponse(item))
	}

	return &dto.PlanDetailResponse{
		PlanSummaryResponse: *toPlanSummary(plan, total, notRun),
		Items:               items,
	}, nil
}

// Update 更新计划；给定 testCaseIds 时按目标集合对账条目：
// 新增的以 NOT_RUN 加入，未列出的删除，其余保留执行状态
func (s *planService) Update(planID int64, req *dto.UpdatePlanRequest) (*dto.PlanDetailResponse, error) {
	plan, err := s.planRepo.FindByIDWithItems(planID)
	if err != nil {
		return nil, err
	}

	if req.TestCaseIDs != nil {
		testCases, err := s.testCaseRepo.FindByIDs(req.TestCaseIDs)
		if err != nil {
			return nil, err
		}
		if len(testCases) != len(lo.Uniq(req.TestCaseIDs)) {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "部分测试用例不存在")
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Name != nil {
			plan.Name = *req.Name
		}
		if req.Description != nil {
			plan.Description = req.Description
		}
		if err := tx.Save(plan).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新测试计划失败", err)
		}

		if req.TestCaseIDs == nil {
			return nil
		}

		target := lo.SliceToMap(req.TestCaseIDs, func(id int64) (int64, bool) { return id, true })
		existing := make(map[int64]bool, len(plan.Items))
		for i := range plan.Items {
			item := &plan.Items[i]
			existing[item.TestCaseID] = true
			if !target[item.TestCaseID] {
				if err := tx.Delete(&model.PlanItem{}, item.ID).Error; err != nil {
					return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除计划条目失败", err)
				}
			}
		}

		for _, testCaseID := range req.TestCaseIDs {
			if existing[testCaseID] {
				continue
			}
			item := &model.PlanItem{
				PlanID:     planID,
				TestCaseID: testCaseID,
				Result:     constants.ResultNotRun,
			}
			if err := tx.Create(item).Error; err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "创建计划条目失败", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetDetail(planID)
}

// Delete 删除计划及其条目，单事务
func (s *planService) Delete(planID int64) error {
	if _, err := s.planRepo.FindByID(planID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deletePlanWithItems(tx, planID)
	})
}

// Archive 归档计划，已归档时为幂等成功
func (s *planService) Archive(planID int64) (*dto.PlanSummaryResponse, error) {
	return s.setStatus(planID, constants.PlanStatusArchived)
}

// Unarchive 取消归档，未归档时为幂等成功
func (s *planService) Unarchive(planID int64) (*dto.PlanSummaryResponse, error) {
	return s.setStatus(planID, constants.PlanStatusActive)
}

func (s *planService) setStatus(planID int64, status string) (*dto.PlanSummaryResponse, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		return nil, err
	}

	if plan.Status != status {
		plan.Status = status
		if err := s.db.Model(&model.Plan{}).Where("id = ?", planID).
			Update("status", status).Error; err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新计划状态失败", err)
		}
	}

	counts, err := s.planRepo.CountItemsByPlan([]int64{planID})
	if err != nil {
		return nil, err
	}
	count := counts[planID]
	return toPlanSummary(plan, count.Total, count.NotRun), nil
}

// UpdateItem 更新条目；只有写入 result 才更新 ExecutedAt，且不会回置
func (s *planService) UpdateItem(planID, itemID int64, req *dto.UpdatePlanItemRequest) (*dto.PlanItemResponse, error) {
	if _, err := s.planRepo.FindByID(planID); err != nil {
		return nil, err
	}
	item, err := s.planRepo.FindItem(planID, itemID)
	if err != nil {
		return nil, err
	}

	applyItemUpdate(item, req.Result, req.Comment, req.Assignee)
	if err := s.planRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	return toPlanItemResponse(item), nil
}

// BulkUpdateItems 批量更新条目，同一组字段作用于全部条目
func (s *planService) BulkUpdateItems(planID int64, req *dto.BulkUpdatePlanItemsRequest) (int, error) {
	if len(req.Items) == 0 {
		return 0, pkgErrors.New(pkgErrors.CodeBadRequest, "items 不能为空")
	}
	if req.Result == nil && req.Comment == nil && req.Assignee == nil {
		return 0, pkgErrors.New(pkgErrors.CodeBadRequest, "至少指定一个待修改字段")
	}

	if _, err := s.planRepo.FindByID(planID); err != nil {
		return 0, err
	}
	items, err := s.planRepo.FindItemsByIDs(planID, req.Items)
	if err != nil {
		return 0, err
	}
	if len(items) != len(lo.Uniq(req.Items)) {
		return 0, pkgErrors.ErrPlanItemNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			applyItemUpdate(item, req.Result, req.Comment, req.Assignee)
			if err := tx.Save(item).Error; err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新计划条目失败", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// BulkArchive 批量归档，不存在的 planId 跳过并返回
func (s *planService) BulkArchive(req *dto.PlanIDListRequest) (*dto.BulkPlanResult, error) {
	return s.bulkSetStatus(req.PlanIDs, constants.PlanStatusArchived)
}

// BulkUnarchive 批量取消归档
func (s *planService) BulkUnarchive(req *dto.PlanIDListRequest) (*dto.BulkPlanResult, error) {
	return s.bulkSetStatus(req.PlanIDs, constants.PlanStatusActive)
}

func (s *planService) bulkSetStatus(planIDs []int64, status string) (*dto.BulkPlanResult, error) {
	existing, skipped, err := s.splitExisting(planIDs)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		err := s.db.Model(&model.Plan{}).Where("id IN ?", existing).
			Update("status", status).Error
		if err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "批量更新计划状态失败", err)
		}
	}

	return &dto.BulkPlanResult{
		AffectedCount: len(existing),
		SkippedIDs:    skipped,
	}, nil
}

// BulkDelete 批量删除计划及其条目，不存在的 planId 跳过并返回
func (s *planService) BulkDelete(req *dto.PlanIDListRequest) (*dto.BulkPlanResult, error) {
	existing, skipped, err := s.splitExisting(req.PlanIDs)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("plan_id IN ?", existing).Delete(&model.PlanItem{}).Error; err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除计划条目失败", err)
			}
			if err := tx.Where("id IN ?", existing).Delete(&model.Plan{}).Error; err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除测试计划失败", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return &dto.BulkPlanResult{
		AffectedCount: len(existing),
		SkippedIDs:    skipped,
	}, nil
}

// splitExisting 把 planIds 拆分为存在/不存在两组
func (s *planService) splitExisting(planIDs []int64) (existing, skipped []int64, err error) {
	var found []int64
	err = s.db.Model(&model.Plan{}).Where("id IN ?", lo.Uniq(planIDs)).
		Pluck("id", &found).Error
	if err != nil {
		return nil, nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试计划失败", err)
	}

	foundSet := lo.SliceToMap(found, func(id int64) (int64, bool) { return id, true })
	skipped = make([]int64, 0)
	for _, id := range lo.Uniq(planIDs) {
		if !foundSet[id] {
			skipped = append(skipped, id)
		}
	}
	return found, skipped, nil
}

func deletePlanWithItems(tx *gorm.DB, planID int64) error {
	if err := tx.Where("plan_id = ?", planID).Delete(&model.PlanItem{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除计划条目失败", err)
	}
	if err := tx.Delete(&model.Plan{}, planID).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除测试计划失败", err)
	}
	return nil
}

// applyItemUpdate 应用条目变更；写入 result 时记录执行时间
func applyItemUpdate(item *model.PlanItem, result, comment, assignee *string) {
	if result != nil {
		item.Result = *result
		now := time.Now()
		item.ExecutedAt = &now
	}
	if comment != nil {
		item.Comment = comment
	}
	if assignee != nil {
		item.Assignee = assignee
	}
}

func toPlanSummary(plan *model.Plan, total, notRun int) *dto.PlanSummaryResponse {
	return &dto.PlanSummaryResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Description: plan.Description,
		Status:      plan.Status,
		CreatedBy:   plan.CreatedBy,
		TotalCount:  total,
		Progress:    computeProgress(total, notRun),
		CreatedAt:   plan.CreatedAt,
	}
}

func toPlanItemResponse(item *model.PlanItem) *dto.PlanItemResponse {
	resp := &dto.PlanItemResponse{
		ID:         item.ID,
		PlanID:     item.PlanID,
		TestCaseID: item.TestCaseID,
		Result:     item.Result,
		Assignee:   item.Assignee,
		Comment:    item.Comment,
		ExecutedAt: item.ExecutedAt,
	}
	if item.TestCase != nil {
		resp.Title = item.TestCase.Title
		resp.Priority = item.TestCase.Priority
	}
	return resp
}

// computeProgress 进度 = round((total-notRun)/total*100)
func computeProgress(total, notRun int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(total-notRun) / float64(total) * 100))
}
