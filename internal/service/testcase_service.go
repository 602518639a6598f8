package service

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"tms-server/internal/dto"
	"tms-server/internal/model"
	"tms-server/internal/repository"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
)

type TestCaseService interface {
	List(folderID *int64, all bool) ([]*model.TestCase, error)
	Get(id int64) (*model.TestCase, error)
	Create(req *dto.CreateTestCaseRequest) (*model.TestCase, error)
	Update(id int64, req *dto.UpdateTestCaseRequest) (*model.TestCase, error)
	Delete(id int64) error
	Reorder(req *dto.ReorderTestCasesRequest) error
	BulkUpdate(req *dto.BulkUpdateTestCasesRequest) (int, error)
	BulkDelete(req *dto.BulkDeleteTestCasesRequest) (int, error)
	MoveToFolder(req *dto.MoveTestCasesRequest) (int, error)
	ImportCSV(reader io.Reader, folderID *int64, mapping map[string]string) (*dto.ImportResult, error)
	ExportCSV(writer io.Writer, folderID *int64, all bool) error
}

type testCaseService struct {
	db           *gorm.DB
	testCaseRepo repository.TestCaseRepository
	folderRepo   repository.FolderRepository
}

func NewTestCaseService(
	db *gorm.DB,
	testCaseRepo repository.TestCaseRepository,
	folderRepo repository.FolderRepository,
) TestCaseService {
	return &testCaseService{
		db:           db,
		testCaseRepo: testCaseRepo,
		folderRepo:   folderRepo,
	}
}

func (s *testCaseService) List(folderID *int64, all bool) ([]*model.TestCase, error) {
	return s.testCaseRepo.List(folderID, all)
}

func (s *testCaseService) Get(id int64) (*model.TestCase, error) {
	return s.testCaseRepo.FindByID(id)
}

func (s *testCaseService) Create(req *dto.CreateTestCaseRequest) (*model.TestCase, error) {
	if req.FolderID != nil {
		if _, err := s.folderRepo.FindByID(*req.FolderID); err != nil {
			return nil, err
		}
	}

	seq, err := s.testCaseRepo.NextSequence(req.FolderID)
	if err != nil {
		return nil, err
	}

	testCase := &model.TestCase{
		Title:          req.Title,
		Description:    req.Description,
		Precondition:   req.Precondition,
		Steps:          req.Steps,
		ExpectedResult: req.ExpectedResult,
		Priority:       req.Priority,
		AutomationType: req.AutomationType,
		Category:       req.Category,
		FolderID:       req.FolderID,
		Sequence:       seq,
	}
	if testCase.Priority == "" {
		testCase.Priority = constants.PriorityMedium
	}
	if testCase.AutomationType == "" {
		testCase.AutomationType = constants.AutomationManual
	}

	if err := s.testCaseRepo.Create(testCase); err != nil {
		return nil, err
	}
	return testCase, nil
}

// Update 部分更新，仅写入请求中给定的字段
func (s *testCaseService) Update(id int64, req *dto.UpdateTestCaseRequest) (*model.TestCase, error) {
	testCase, err := s.testCaseRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		testCase.Title = *req.Title
	}
	if req.Description != nil {
		testCase.Description = req.Description
	}
	if req.Precondition != nil {
		testCase.Precondition = req.Precondition
	}
	if req.Steps != nil {
		testCase.Steps = req.Steps
	}
	if req.ExpectedResult != nil {
		testCase.ExpectedResult = req.ExpectedResult
	}
	if req.Priority != nil {
		testCase.Priority = *req.Priority
	}
	if req.AutomationType != nil {
		testCase.AutomationType = *req.AutomationType
	}
	if req.Category != nil {
		testCase.Category = req.Category
	}

	if err := s.testCaseRepo.Update(testCase); err != nil {
		return nil, err
	}
	return testCase, nil
}

// Delete 删除用例及其全部计划条目，单事务
func (s *testCaseService) Delete(id int64) error {
	if _, err := s.testCaseRepo.FindByID(id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_case_id = ?", id).Delete(&model.PlanItem{}).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除计划条目失败", err)
		}
		if err := tx.Delete(&model.TestCase{}, id).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除测试用例失败", err)
		}
		return nil
	})
}

// Reorder 文件夹内重排序，orderedIds 必须与该文件夹现有用例完全一致
func (s *testCaseService) Reorder(req *dto.ReorderTestCasesRequest) error {
	existing, err := s.testCaseRepo.List(req.FolderID, false)
	if err != nil {
		return err
	}

	existingIDs := lo.Map(existing, func(tc *model.TestCase, _ int) int64 { return tc.ID })
	if err := validateOrderedIDs(req.OrderedIDs, existingIDs); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i, caseID := range req.OrderedIDs {
			err := tx.Model(&model.TestCase{}).Where("id = ?", caseID).
				Update("sequence", i+1).Error
			if err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "重排序测试用例失败", err)
			}
		}
		return nil
	})
}

// BulkUpdate 批量更新，至少指定一个待修改字段
func (s *testCaseService) BulkUpdate(req *dto.BulkUpdateTestCasesRequest) (int, error) {
	if len(req.IDs) == 0 {
		return 0, pkgErrors.New(pkgErrors.CodeBadRequest, "ids 不能为空")
	}
	moveFolder := req.FolderID != nil || req.ClearFolder
	if req.Priority == nil && req.AutomationType == nil && req.Category == nil && !moveFolder {
		return 0, pkgErrors.New(pkgErrors.CodeBadRequest, "至少指定一个待修改字段")
	}

	if req.FolderID != nil {
		if _, err := s.folderRepo.FindByID(*req.FolderID); err != nil {
			return 0, err
		}
	}

	testCases, err := s.testCaseRepo.FindByIDs(req.IDs)
	if err != nil {
		return 0, err
	}

	var targetFolder *int64
	if !req.ClearFolder {
		targetFolder = req.FolderID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		seq := 0
		if moveFolder {
			next, err := nextTestCaseSequence(tx, targetFolder)
			if err != nil {
				return err
			}
			seq = next
		}
		for _, testCase := range testCases {
			if req.Priority != nil {
				testCase.Priority = *req.Priority
			}
			if req.AutomationType != nil {
				testCase.AutomationType = *req.AutomationType
			}
			if req.Category != nil {
				testCase.Category = req.Category
			}
			if moveFolder {
				testCase.FolderID = targetFolder
				testCase.Sequence = seq
				seq++
			}
			if err := tx.Save(testCase).Error; err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "批量更新测试用例失败", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(testCases), nil
}

// BulkDelete 批量删除用例及其计划条目，单事务
func (s *testCaseService) BulkDelete(req *dto.BulkDeleteTestCasesRequest) (int, error) {
	if len(req.IDs) == 0 {
		return 0, pkgErrors.New(pkgErrors.CodeBadRequest, "ids 不能为空")
	}

	testCases, err := s.testCaseRepo.FindByIDs(req.IDs)
	if err != nil {
		return 0, err
	}
	ids := lo.Map(testCases, func(tc *model.TestCase, _ int) int64 { return tc.ID })
	if len(ids) == 0 {
		return 0, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_case_id IN ?", ids).Delete(&model.PlanItem{}).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除计划条目失败", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.TestCase{}).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除测试用例失败", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// MoveToFolder 批量移动到目标文件夹，按原顺序追加到目标范围末尾
func (s *testCaseService) MoveToFolder(req *dto.MoveTestCasesRequest) (int, error) {
	if req.TargetFolderID != nil {
		if _, err := s.folderRepo.FindByID(*req.TargetFolderID); err != nil {
			return 0, err
		}
	}

	testCases, err := s.testCaseRepo.FindByIDs(req.IDs)
	if err != nil {
		return 0, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := nextTestCaseSequence(tx, req.TargetFolderID)
		if err != nil {
			return err
		}
		for _, testCase := range testCases {
			testCase.FolderID = req.TargetFolderID
			testCase.Sequence = seq
			seq++
			if err := tx.Save(testCase).Error; err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "移动测试用例失败", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(testCases), nil
}

// ImportCSV 导入CSV：首行为表头，mapping 为 表头列名→字段名 的映射（为空时按恒等映射），
// 缺少 title 的行记为失败但不中断，合法行统一批量插入
func (s *testCaseService) ImportCSV(reader io.Reader, folderID *int64, mapping map[string]string) (*dto.ImportResult, error) {
	if folderID != nil {
		if _, err := s.folderRepo.FindByID(*folderID); err != nil {
			return nil, err
		}
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "CSV文件为空或表头无效")
	}

	validFields := lo.SliceToMap(constants.CSVFields, func(f string) (string, bool) { return f, true })

	// 列索引 → 目标字段
	columnFields := make(map[int]string, len(header))
	for i, column := range header {
		column = strings.TrimSpace(column)
		field := column
		if len(mapping) > 0 {
			mapped, ok := mapping[column]
			if !ok {
				continue
			}
			field = mapped
		}
		if validFields[field] {
			columnFields[i] = field
		}
	}

	result := &dto.ImportResult{Failures: []dto.ImportFailure{}}
	var pending []*model.TestCase

	for rowIndex := 0; ; rowIndex++ {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		// 展示行号 = 数据行下标 + 表头 + 1-based
		displayRow := rowIndex + 2
		if err != nil {
			result.Failures = append(result.Failures, dto.ImportFailure{
				Row:     displayRow,
				Message: "CSV行解析失败",
				Data:    map[string]string{},
			})
			continue
		}

		data := make(map[string]string, len(columnFields))
		for i, field := range columnFields {
			if i < len(record) {
				data[field] = strings.TrimSpace(record[i])
			}
		}

		if data["title"] == "" {
			result.Failures = append(result.Failures, dto.ImportFailure{
				Row:     displayRow,
				Message: "缺少必填字段 title",
				Data:    data,
			})
			continue
		}

		testCase := &model.TestCase{
			Title:          data["title"],
			Description:    optionalField(data, "description"),
			Precondition:   optionalField(data, "precondition"),
			Steps:          optionalField(data, "steps"),
			ExpectedResult: optionalField(data, "expectedResult"),
			Priority:       constants.PriorityMedium,
			AutomationType: constants.AutomationManual,
			FolderID:       folderID,
		}
		if priority := strings.ToUpper(data["priority"]); priority != "" {
			switch priority {
			case constants.PriorityLow, constants.PriorityMedium, constants.PriorityHigh:
				testCase.Priority = priority
			}
		}
		pending = append(pending, testCase)
	}

	if len(pending) > 0 {
		seq, err := s.testCaseRepo.NextSequence(folderID)
		if err != nil {
			return nil, err
		}
		for _, testCase := range pending {
			testCase.Sequence = seq
			seq++
		}
		if err := s.testCaseRepo.CreateBatch(pending); err != nil {
			return nil, err
		}
	}

	result.SuccessCount = len(pending)
	result.FailureCount = len(result.Failures)
	return result, nil
}

// ExportCSV 按规范表头导出用例
func (s *testCaseService) ExportCSV(writer io.Writer, folderID *int64, all bool) error {
	testCases, err := s.testCaseRepo.List(folderID, all)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(constants.CSVFields); err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "写入CSV表头失败", err)
	}
	for _, testCase := range testCases {
		record := []string{
			testCase.Title,
			derefOrEmpty(testCase.Description),
			derefOrEmpty(testCase.Precondition),
			derefOrEmpty(testCase.Steps),
			derefOrEmpty(testCase.ExpectedResult),
			testCase.Priority,
		}
		if err := csvWriter.Write(record); err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "写入CSV数据失败", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "写入CSV失败", err)
	}
	return nil
}

// nextTestCaseSequence 事务内计算文件夹范围的下一个序号
func nextTestCaseSequence(tx *gorm.DB, folderID *int64) (int, error) {
	var maxSeq int
	query := tx.Model(&model.TestCase{})
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}
	if err := query.Select("COALESCE(MAX(sequence), 0)").Scan(&maxSeq).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询用例序号失败", err)
	}
	return maxSeq + 1, nil
}

func optionalField(data map[string]string, key string) *string {
	if value, ok := data[key]; ok && value != "" {
		return &value
	}
	return nil
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
