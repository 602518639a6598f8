package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tms-server/internal/model"
	"tms-server/internal/pkg/config"
	"tms-server/internal/pkg/jwt"
	"tms-server/internal/repository"
)

// newTestDB 内存数据库，每个测试用例独立
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Folder{},
		&model.TestCase{},
		&model.Plan{},
		&model.PlanItem{},
	)
	require.NoError(t, err)

	return db
}

func newTestServices(t *testing.T) (*gorm.DB, FolderService, TestCaseService, PlanService) {
	t.Helper()

	db := newTestDB(t)
	folderRepo := repository.NewFolderRepository(db)
	testCaseRepo := repository.NewTestCaseRepository(db)
	planRepo := repository.NewPlanRepository(db)

	folderSvc := NewFolderService(db, folderRepo)
	testCaseSvc := NewTestCaseService(db, testCaseRepo, folderRepo)
	planSvc := NewPlanService(db, planRepo, testCaseRepo)
	return db, folderSvc, testCaseSvc, planSvc
}

func init() {
	// Token签发依赖全局配置
	config.GlobalConfig = &config.Config{}
	jwt.Init("test-secret")
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
