package repository

import (
	"gorm.io/gorm"

	"tms-server/internal/model"
	pkgErrors "tms-server/pkg/errors"
)

type TestCaseRepository interface {
	Create(testCase *model.TestCase) error
	CreateBatch(testCases []*model.TestCase) error
	FindByID(id int64) (*model.TestCase, error)
	FindByIDs(ids []int64) ([]*model.TestCase, error)
	List(folderID *int64, all bool) ([]*model.TestCase, error)
	NextSequence(folderID *int64) (int, error)
	Update(testCase *model.TestCase) error
}

type testCaseRepository struct {
	db *gorm.DB
}

func NewTestCaseRepository(db *gorm.DB) TestCaseRepository {
	return &testCaseRepository{db: db}
}

// scopeByFolder 文件夹范围过滤（folder_id 可空 = 未归档）
func scopeByFolder(db *gorm.DB, folderID *int64) *gorm.DB {
	if folderID == nil {
		return db.Where("folder_id IS NULL")
	}
	return db.Where("folder_id = ?", *folderID)
}

func (r *testCaseRepository) Create(testCase *model.TestCase) error {
	if err := r.db.Create(testCase).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "创建测试用例失败", err)
	}
	return nil
}

func (r *testCaseRepository) CreateBatch(testCases []*model.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	if err := r.db.Create(testCases).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "批量创建测试用例失败", err)
	}
	return nil
}

func (r *testCaseRepository) FindByID(id int64) (*model.TestCase, error) {
	var testCase model.TestCase
	err := r.db.First(&testCase, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgErrors.ErrTestCaseNotFound
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试用例失败", err)
	}
	return &testCase, nil
}

func (r *testCaseRepository) FindByIDs(ids []int64) ([]*model.TestCase, error) {
	var testCases []*model.TestCase
	if len(ids) == 0 {
		return testCases, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&testCases).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试用例失败", err)
	}
	return testCases, nil
}

// List 查询测试用例，all 为 true 时忽略 folderID 返回全部
func (r *testCaseRepository) List(folderID *int64, all bool) ([]*model.TestCase, error) {
	var testCases []*model.TestCase
	query := r.db.Model(&model.TestCase{})
	if !all {
		query = scopeByFolder(query, folderID)
	}
	if err := query.Order("sequence ASC").Find(&testCases).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询测试用例列表失败", err)
	}
	return testCases, nil
}

// NextSequence 文件夹范围内的下一个序号: max(sequence)+1，范围为空时为1
func (r *testCaseRepository) NextSequence(folderID *int64) (int, error) {
	var maxSeq int
	err := scopeByFolder(r.db.Model(&model.TestCase{}), folderID).
		Select("COALESCE(MAX(sequence), 0)").Scan(&maxSeq).Error
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询用例序号失败", err)
	}
	return maxSeq + 1, nil
}

func (r *testCaseRepository) Update(testCase *model.TestCase) error {
	if err := r.db.Save(testCase).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "更新测试用例失败", err)
	}
	return nil
}
