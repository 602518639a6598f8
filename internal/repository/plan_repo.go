package repository

import (
	"gorm.io/gorm"

	"tms-server/internal/model"
	pkgErrors "tms-server/pkg/errors"
)

type PlanRepository interface {
	FindByID(id int64) (*model.Plan, error)
	FindByIDWithItems(id int64) (*model.Plan, error)
	List(status *string) ([]*model.Plan, error)
	CountItemsByPlan(planIDs []int64) (map[int64]PlanItemCount, error)
	FindItem(planID, itemID int64) (*model.PlanItem, error)
	FindItemsByIDs(planID int64, itemIDs []int64) ([]*model.PlanItem, error)
	UpdateItem(item *model.PlanItem) error
}

// PlanItemCount 计划条目数统计
type PlanItemCount struct {
	Total  int
	NotRun int
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) FindByID(id int64) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrPlanNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试计划失败", err)
	}
	return &plan, nil
}

// FindByIDWithItems 查询计划详情，条目按用例排序加载并预载用例
func (r *planRepository) FindByIDWithItems(id int64) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("plan_items.id ASC")
	}).Preload("Items.TestCase").First(&plan, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrPlanNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试计划失败", err)
	}
	return &plan, nil
}

func (r *planRepository) List(status *string) ([]*model.Plan, error) {
	var plans []*model.Plan
	query := r.db.Model(&model.Plan{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询计划列表失败", err)
	}
	return plans, nil
}

// CountItemsByPlan 统计各计划的条目总数与未执行数，用于进度计算
func (r *planRepository) CountItemsByPlan(planIDs []int64) (map[int64]PlanItemCount, error) {
	counts := make(map[int64]PlanItemCount, len(planIDs))
	if len(planIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		PlanID int64
		Total  int
		NotRun int
	}
	err := r.db.Model(&model.PlanItem{}).
		Select("plan_id, COUNT(*) AS total, SUM(CASE WHEN result = ? THEN 1 ELSE 0 END) AS not_run", "NOT_RUN").
		Where("plan_id IN ?", planIDs).
		Group("plan_id").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "统计计划条目失败", err)
	}
	for _, row := range rows {
		counts[row.PlanID] = PlanItemCount{Total: row.Total, NotRun: row.NotRun}
	}
	return counts, nil
}

func (r *planRepository) FindItem(planID, itemID int64) (*model.PlanItem, error) {
	var item model.PlanItem
	err := r.db.Where("plan_id = ? AND id = ?", planID, itemID).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrPlanItemNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询计划条目失败", err)
	}
	return &item, nil
}

func (r *planRepository) FindItemsByIDs(planID int64, itemIDs []int64) ([]*model.PlanItem, error) {
	var items []*model.PlanItem
	if len(itemIDs) == 0 {
		return items, nil
	}
	err := r.db.Where("plan_id = ? AND id IN ?", planID, itemIDs).Find(&items).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询计划条目失败", err)
	}
	return items, nil
}

func (r *planRepository) UpdateItem(item *model.PlanItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新计划条目失败", err)
	}
	return nil
}
