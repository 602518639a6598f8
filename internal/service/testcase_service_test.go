package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tms-server/internal/dto"
	"tms-server/internal/model"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

func TestTestCaseCreateDefaults(t *testing.T) {
	_, _, testCaseSvc, _ := newTestServices(t)

	tc, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "登录成功"})
	require.NoError(t, err)

	assert.Equal(t, constants.PriorityMedium, tc.Priority)
	assert.Equal(t, constants.AutomationManual, tc.AutomationType)
	assert.Equal(t, 1, tc.Sequence)
	assert.Nil(t, tc.FolderID)

	tc2, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "登录失败"})
	require.NoError(t, err)
	assert.Equal(t, 2, tc2.Sequence)
}

func TestTestCaseSequencePerFolder(t *testing.T) {
	_, folderSvc, testCaseSvc, _ := newTestServices(t)

	folder, err := folderSvc.Create(&dto.CreateFolderRequest{Name: "登录"})
	require.NoError(t, err)

	unfiled, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "未归档"})
	require.NoError(t, err)
	inFolder, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "归档", FolderID: &folder.ID})
	require.NoError(t, err)

	// 未归档与文件夹内各自独立计数
	assert.Equal(t, 1, unfiled.Sequence)
	assert.Equal(t, 1, inFolder.Sequence)
}

func TestTestCaseReorderRejectsPartialSet(t *testing.T) {
	_, _, testCaseSvc, _ := newTestServices(t)

	a, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)
	b, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "b"})
	require.NoError(t, err)

	err = testCaseSvc.Reorder(&dto.ReorderTestCasesRequest{OrderedIDs: []int64{a.ID}})
	assert.Error(t, err)

	err = testCaseSvc.Reorder(&dto.ReorderTestCasesRequest{OrderedIDs: []int64{b.ID, a.ID}})
	require.NoError(t, err)

	cases, err := testCaseSvc.List(nil, false)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "b", cases[0].Title)
	assert.Equal(t, "a", cases[1].Title)
}

func TestTestCaseBulkUpdateValidation(t *testing.T) {
	_, _, testCaseSvc, _ := newTestServices(t)

	tc, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)

	// 没有任何待修改字段
	_, err = testCaseSvc.BulkUpdate(&dto.BulkUpdateTestCasesRequest{IDs: []int64{tc.ID}})
	assert.Error(t, err)

	// 空 ids
	_, err = testCaseSvc.BulkUpdate(&dto.BulkUpdateTestCasesRequest{Priority: strPtr(constants.PriorityHigh)})
	assert.Error(t, err)

	count, err := testCaseSvc.BulkUpdate(&dto.BulkUpdateTestCasesRequest{
		IDs:      []int64{tc.ID},
		Priority: strPtr(constants.PriorityHigh),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, err := testCaseSvc.Get(tc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PriorityHigh, updated.Priority)
}

func TestTestCaseBulkUpdateMovesToFolder(t *testing.T) {
	_, folderSvc, testCaseSvc, _ := newTestServices(t)

	folder, err := folderSvc.Create(&dto.CreateFolderRequest{Name: "目标"})
	require.NoError(t, err)
	a, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)
	b, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "b"})
	require.NoError(t, err)

	_, err = testCaseSvc.BulkUpdate(&dto.BulkUpdateTestCasesRequest{
		IDs:      []int64{a.ID, b.ID},
		FolderID: &folder.ID,
	})
	require.NoError(t, err)

	moved, err := testCaseSvc.List(&folder.ID, false)
	require.NoError(t, err)
	require.Len(t, moved, 2)
	assert.Equal(t, 1, moved[0].Sequence)
	assert.Equal(t, 2, moved[1].Sequence)
}

func TestTestCaseDeleteCascadesPlanItems(t *testing.T) {
	db, _, testCaseSvc, planSvc := newTestServices(t)

	a, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)
	b, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "b"})
	require.NoError(t, err)

	plan, err := planSvc.Create("tester", &dto.CreatePlanRequest{
		Name:        "回归",
		TestCaseIDs: []int64{a.ID, b.ID},
	})
	require.NoError(t, err)

	require.NoError(t, testCaseSvc.Delete(a.ID))

	var itemCount int64
	require.NoError(t, db.Model(&model.PlanItem{}).Where("plan_id = ?", plan.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)

	_, err = testCaseSvc.Get(a.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrTestCaseNotFound)
}

func TestTestCaseBulkDeleteCascades(t *testing.T) {
	db, _, testCaseSvc, planSvc := newTestServices(t)

	a, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)
	b, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "b"})
	require.NoError(t, err)

	_, err = planSvc.Create("tester", &dto.CreatePlanRequest{
		Name:        "回归",
		TestCaseIDs: []int64{a.ID, b.ID},
	})
	require.NoError(t, err)

	count, err := testCaseSvc.BulkDelete(&dto.BulkDeleteTestCasesRequest{IDs: []int64{a.ID, b.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var itemCount int64
	require.NoError(t, db.Model(&model.PlanItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestTestCaseImportCSV(t *testing.T) {
	_, _, testCaseSvc, _ := newTestServices(t)

	// 第3行缺少 title，应记为失败且不中断
	csvData := "title,description,priority\n" +
		"登录成功,正常登录,HIGH\n" +
		",缺标题,LOW\n" +
		"登录失败,错误密码,\n"

	result, err := testCaseSvc.ImportCSV(strings.NewReader(csvData), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Failures, 1)
	// 数据行下标1 + 表头行 + 1-based = 3
	assert.Equal(t, 3, result.Failures[0].Row)

	cases, err := testCaseSvc.List(nil, false)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "登录成功", cases[0].Title)
	assert.Equal(t, constants.PriorityHigh, cases[0].Priority)
	assert.Equal(t, 1, cases[0].Sequence)
	// priority 为空时回退默认
	assert.Equal(t, constants.PriorityMedium, cases[1].Priority)
	assert.Equal(t, 2, cases[1].Sequence)
}

func TestTestCaseImportCSVWithMapping(t *testing.T) {
	_, _, testCaseSvc, _ := newTestServices(t)

	csvData := "标题,预期\nA,成功\n"
	mapping := map[string]string{"标题": "title", "预期": "expectedResult"}

	result, err := testCaseSvc.ImportCSV(strings.NewReader(csvData), nil, mapping)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)

	cases, err := testCaseSvc.List(nil, false)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "A", cases[0].Title)
	require.NotNil(t, cases[0].ExpectedResult)
	assert.Equal(t, "成功", *cases[0].ExpectedResult)
}

func TestTestCaseImportCSVContinuesSequence(t *testing.T) {
	_, _, testCaseSvc, _ := newTestServices(t)

	_, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "已有"})
	require.NoError(t, err)

	csvData := "title\nA\nB\n"
	_, err = testCaseSvc.ImportCSV(strings.NewReader(csvData), nil, nil)
	require.NoError(t, err)

	cases, err := testCaseSvc.List(nil, false)
	require.NoError(t, err)
	require.Len(t, cases, 3)
	assert.Equal(t, 2, cases[1].Sequence)
	assert.Equal(t, 3, cases[2].Sequence)
}

func TestTestCaseExportCSV(t *testing.T) {
	_, _, testCaseSvc, _ := newTestServices(t)

	_, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{
		Title:          "登录成功",
		ExpectedResult: strPtr("跳转首页"),
		Priority:       constants.PriorityHigh,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, testCaseSvc.ExportCSV(&buf, nil, true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(constants.CSVFields, ","), lines[0])
	assert.Contains(t, lines[1], "登录成功")
	assert.Contains(t, lines[1], "HIGH")
}

func TestTestCaseMoveToFolderAppendsAtTail(t *testing.T) {
	_, folderSvc, testCaseSvc, _ := newTestServices(t)

	folder, err := folderSvc.Create(&dto.CreateFolderRequest{Name: "目标"})
	require.NoError(t, err)
	existing, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "已有", FolderID: &folder.ID})
	require.NoError(t, err)
	a, err := testCaseSvc.Create(&dto.CreateTestCaseRequest{Title: "a"})
	require.NoError(t, err)

	count, err := testCaseSvc.MoveToFolder(&dto.MoveTestCasesRequest{
		IDs:            []int64{a.ID},
		TargetFolderID: &folder.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	cases, err := testCaseSvc.List(&folder.ID, false)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, existing.ID, cases[0].ID)
	assert.Equal(t, 2, cases[1].Sequence)
}
