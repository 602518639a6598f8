package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tms-server/internal/dto"
	"tms-server/internal/model"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

func createPlanFixture(t *testing.T, testCaseSvc TestCaseService, planSvc PlanService, n int) *dto.PlanDetailResponse {
	t.Helper()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		tc, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "用例"})
		require.NoError(t, err)
		ids = append(ids, tc.ID)
	}

	plan, err := planSvc.Create("tester", &dto.CreatePlanRequest{
		Name:        "回归",
		TestCaseIDs: ids,
	})
	require.NoError(t, err)
	return plan
}

func TestPlanCreateSnapshotsItems(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 3)

	assert.Equal(t, constants.PlanStatusActive, plan.Status)
	assert.Equal(t, "tester", plan.CreatedBy)
	assert.Equal(t, 3, plan.TotalCount)
	assert.Equal(t, 0, plan.Progress)
	require.Len(t, plan.Items, 3)
	for _, item := range plan.Items {
		assert.Equal(t, constants.ResultNotRun, item.Result)
		assert.Nil(t, item.ExecutedAt)
	}
}

func TestPlanCreateRejectsMissingCase(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	tc, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)

	_, err = planSvc.Create("tester", &dto.CreatePlanRequest{
		Name:        "回归",
		TestCaseIDs: []int64{tc.ID, 999},
	})
	assert.Error(t, err)
}

func TestPlanUpdateItemExecutedAt(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 1)
	item := plan.Items[0]

	// 仅改备注不记录执行时间
	updated, err := planSvc.UpdateItem(plan.ID, item.ID, &dto.UpdatePlanItemRequest{
		Comment: strPtr("环境待确认"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ExecutedAt)

	// 写入结果时记录执行时间
	before := time.Now().Add(-time.Second)
	updated, err = planSvc.UpdateItem(plan.ID, item.ID, &dto.UpdatePlanItemRequest{
		Result: strPtr(constants.ResultPass),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ExecutedAt)
	assert.True(t, updated.ExecutedAt.After(before))
	firstRun := *updated.ExecutedAt

	// 之后的备注修改不重置执行时间
	updated, err = planSvc.UpdateItem(plan.ID, item.ID, &dto.UpdatePlanItemRequest{
		Comment: strPtr("已验证"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ExecutedAt)
	assert.Equal(t, firstRun.Unix(), updated.ExecutedAt.Unix())
}

func TestPlanBulkUpdateItemsAndProgress(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 4)
	itemIDs := []int64{plan.Items[0].ID, plan.Items[1].ID, plan.Items[2].ID}

	count, err := planSvc.BulkUpdateItems(plan.ID, &dto.BulkUpdatePlanItemsRequest{
		Items:  itemIDs,
		Result: strPtr(constants.ResultPass),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	detail, err := planSvc.GetDetail(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, detail.Progress)
}

func TestPlanBulkUpdateItemsValidation(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 1)

	_, err := planSvc.BulkUpdateItems(plan.ID, &dto.BulkUpdatePlanItemsRequest{
		Items: []int64{plan.Items[0].ID},
	})
	assert.Error(t, err)

	_, err = planSvc.BulkUpdateItems(plan.ID, &dto.BulkUpdatePlanItemsRequest{
		Items:  []int64{999},
		Result: strPtr(constants.ResultPass),
	})
	assert.ErrorIs(t, err, pkgErrors.ErrPlanItemNotFound)
}

func TestPlanArchiveIdempotent(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 1)

	archived, err := planSvc.Archive(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PlanStatusArchived, archived.Status)

	// 重复归档为幂等成功
	archived, err = planSvc.Archive(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PlanStatusArchived, archived.Status)

	restored, err := planSvc.Unarchive(plan.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PlanStatusActive, restored.Status)
}

func TestPlanUpdateReconcilesItems(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	a, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)
	b, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "b"})
	require.NoError(t, err)
	c, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "c"})
	require.NoError(t, err)

	plan, err := planSvc.Create("tester", &dto.CreatePlanRequest{
		Name:        "回归",
		TestCaseIDs: []int64{a.ID, b.ID},
	})
	require.NoError(t, err)

	// a 已执行
	_, err = planSvc.UpdateItem(plan.ID, plan.Items[0].ID, &dto.UpdatePlanItemRequest{
		Result: strPtr(constants.ResultPass),
	})
	require.NoError(t, err)

	// 目标集合: 保留 a，移除 b，新增 c
	detail, err := planSvc.Update(plan.ID, &dto.UpdatePlanRequest{
		Name:        strPtr("回归v2"),
		TestCaseIDs: []int64{a.ID, c.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "回归v2", detail.Name)
	require.Len(t, detail.Items, 2)

	byCase := make(map[int64]*dto.PlanItemResponse)
	for _, item := range detail.Items {
		byCase[item.TestCaseID] = item
	}
	// a 保留执行状态
	assert.Equal(t, constants.ResultPass, byCase[a.ID].Result)
	// c 以 NOT_RUN 新增
	assert.Equal(t, constants.ResultNotRun, byCase[c.ID].Result)
	_, exists := byCase[b.ID]
	assert.False(t, exists)
}

func TestPlanBulkOpsSkipMissing(t *testing.T) {
	db, _, testCaseSvc, planSvc := newTestServices(t)

	p1 := createPlanFixture(t, testCaseSvc, planSvc, 1)
	p2 := createPlanFixture(t, testCaseSvc, planSvc, 1)

	result, err := planSvc.BulkArchive(&dto.PlanIDListRequest{
		PlanIDs: []int64{p1.ID, p2.ID, 999},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.AffectedCount)
	assert.Equal(t, []int64{999}, result.SkippedIDs)

	result, err = planSvc.BulkDelete(&dto.PlanIDListRequest{
		PlanIDs: []int64{p1.ID, 999},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AffectedCount)
	assert.Equal(t, []int64{999}, result.SkippedIDs)

	var planCount, itemCount int64
	require.NoError(t, db.Model(&model.Plan{}).Count(&planCount).Error)
	require.NoError(t, db.Model(&model.PlanItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), planCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestPlanDeleteRemovesItems(t *testing.T) {
	db, _, testCaseSvc, planSvc := newTestServices(t)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 2)

	require.NoError(t, planSvc.Delete(plan.ID))

	_, err := planSvc.GetDetail(plan.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrPlanNotFound)

	var itemCount int64
	require.NoError(t, db.Model(&model.PlanItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestPlanListFiltersByStatus(t *testing.T) {
	_, _, testCaseSvc, planSvc := newTestServices(t)

	p1 := createPlanFixture(t, testCaseSvc, planSvc, 1)
	createPlanFixture(t, testCaseSvc, planSvc, 1)

	_, err := planSvc.Archive(p1.ID)
	require.NoError(t, err)

	active := constants.PlanStatusActive
	plans, err := planSvc.List(&active)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.NotEqual(t, p1.ID, plans[0].ID)

	all, err := planSvc.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
