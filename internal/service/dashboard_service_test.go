package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tms-server/internal/dto"
	"tms-server/pkg/constants"
)

func TestDashboardStatsAndOverview(t *testing.T) {
	db, folderSvc, testCaseSvc, planSvc := newTestServices(t)
	dashboardSvc := NewDashboardService(db)

	_, err := folderSvc.Create(&dto.CreateFolderRequest{Name: "回归"})
	require.NoError(t, err)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 4)
	archived := createPlanFixture(t, testCaseSvc, planSvc, 2)
	_, err = planSvc.Archive(archived.ID)
	require.NoError(t, err)

	_, err = planSvc.BulkUpdateItems(plan.ID, &dto.BulkUpdatePlanItemsRequest{
		Items:  []int64{plan.Items[0].ID, plan.Items[1].ID},
		Result: strPtr(constants.ResultPass),
	})
	require.NoError(t, err)
	_, err = planSvc.UpdateItem(plan.ID, plan.Items[2].ID, &dto.UpdatePlanItemRequest{
		Result: strPtr(constants.ResultFail),
	})
	require.NoError(t, err)

	stats, err := dashboardSvc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TestCaseCount)
	assert.Equal(t, int64(1), stats.FolderCount)
	assert.Equal(t, int64(2), stats.PlanCount)
	assert.Equal(t, int64(1), stats.ActivePlanCount)

	// 归档计划的条目不计入结果分布
	overview, err := dashboardSvc.Overview()
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.Pass)
	assert.Equal(t, int64(1), overview.Fail)
	assert.Equal(t, int64(1), overview.NotRun)
	assert.Equal(t, int64(0), overview.Block)
	assert.Equal(t, int64(4), overview.Total)
}

func TestDashboardMyAssignments(t *testing.T) {
	db, _, testCaseSvc, planSvc := newTestServices(t)
	dashboardSvc := NewDashboardService(db)

	a, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)
	b, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "b"})
	require.NoError(t, err)

	plan, err := planSvc.Create("tester", &dto.CreatePlanRequest{
		Name:        "回归",
		TestCaseIDs: []int64{a.ID, b.ID},
		Assignee:    strPtr("张三"),
	})
	require.NoError(t, err)

	_, err = planSvc.UpdateItem(plan.ID, plan.Items[0].ID, &dto.UpdatePlanItemRequest{
		Result: strPtr(constants.ResultInProgress),
	})
	require.NoError(t, err)

	stats, err := dashboardSvc.MyAssignments("张三")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NotRunCount)
	assert.Equal(t, int64(1), stats.InProgressCount)
	assert.Equal(t, int64(2), stats.TotalAssigned)

	empty, err := dashboardSvc.MyAssignments("李四")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalAssigned)
}

func TestDashboardRecentActivity(t *testing.T) {
	db, _, testCaseSvc, planSvc := newTestServices(t)
	dashboardSvc := NewDashboardService(db)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 3)

	// 只有执行过的条目出现在记录里
	_, err := planSvc.UpdateItem(plan.ID, plan.Items[0].ID, &dto.UpdatePlanItemRequest{
		Result: strPtr(constants.ResultPass),
	})
	require.NoError(t, err)
	_, err = planSvc.UpdateItem(plan.ID, plan.Items[1].ID, &dto.UpdatePlanItemRequest{
		Result: strPtr(constants.ResultFail),
	})
	require.NoError(t, err)

	entries, err := dashboardSvc.RecentActivity(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, plan.ID, entries[0].PlanID)
	assert.NotEmpty(t, entries[0].TestCaseTitle)

	limited, err := dashboardSvc.RecentActivity(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDashboardActivePlans(t *testing.T) {
	db, _, testCaseSvc, planSvc := newTestServices(t)
	dashboardSvc := NewDashboardService(db)

	plan := createPlanFixture(t, testCaseSvc, planSvc, 2)
	archived := createPlanFixture(t, testCaseSvc, planSvc, 1)
	_, err := planSvc.Archive(archived.ID)
	require.NoError(t, err)

	_, err = planSvc.UpdateItem(plan.ID, plan.Items[0].ID, &dto.UpdatePlanItemRequest{
		Result: strPtr(constants.ResultPass),
	})
	require.NoError(t, err)

	entries, err := dashboardSvc.ActivePlans(5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, plan.ID, entries[0].ID)
	assert.Equal(t, 2, entries[0].TotalCount)
	assert.Equal(t, 50, entries[0].Progress)
}
