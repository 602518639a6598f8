package service

import (
	"gorm.io/gorm"

	"tms-server/internal/dto"
	"tms-server/internal/model"
	"tms-server/internal/repository"
	pkgErrors "tms-server/pkg/errors"
)

type FolderService interface {
	Create(req *dto.CreateFolderRequest) (*model.Folder, error)
	GetTree() ([]*dto.FolderNode, error)
	Rename(id int64, req *dto.RenameFolderRequest) (*model.Folder, error)
	Move(id int64, req *dto.MoveFolderRequest) (*model.Folder, error)
	Reorder(req *dto.ReorderFoldersRequest) error
	Delete(id int64) error
}

type folderService struct {
	db         *gorm.DB
	folderRepo repository.FolderRepository
}

func NewFolderService(db *gorm.DB, folderRepo repository.FolderRepository) FolderService {
	return &folderService{
		db:         db,
		folderRepo: folderRepo,
	}
}

func (s *folderService) Create(req *dto.CreateFolderRequest) (*model.Folder, error) {
	if req.ParentID != nil {
		if _, err := s.folderRepo.FindByID(*req.ParentID); err != nil {
			return nil, err
		}
	}

	seq, err := s.folderRepo.NextSequence(req.ParentID)
	if err != nil {
		return nil, err
	}

	folder := &model.Folder{
		Name:     req.Name,
		ParentID: req.ParentID,
		Sequence: seq,
	}
	if err := s.folderRepo.Create(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// GetTree 一次全量查询后在内存中组装树，子节点按 sequence 升序
func (s *folderService) GetTree() ([]*dto.FolderNode, error) {
	folders, err := s.folderRepo.ListAll()
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*dto.FolderNode, len(folders))
	for _, folder := range folders {
		nodes[folder.ID] = &dto.FolderNode{
			ID:       folder.ID,
			Name:     folder.Name,
			ParentID: folder.ParentID,
			Sequence: folder.Sequence,
			Children: []*dto.FolderNode{},
		}
	}

	roots := make([]*dto.FolderNode, 0)
	// folders 已按 sequence 排序，追加即有序
	for _, folder := range folders {
		node := nodes[folder.ID]
		if folder.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*folder.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// 父节点缺失的孤儿节点按根处理
			roots = append(roots, node)
		}
	}
	return roots, nil
}

func (s *folderService) Rename(id int64, req *dto.RenameFolderRequest) (*model.Folder, error) {
	folder, err := s.folderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	folder.Name = req.Name
	if err := s.folderRepo.Update(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Move 移动文件夹到新父级，可选指定在新同级中的位置
func (s *folderService) Move(id int64, req *dto.MoveFolderRequest) (*model.Folder, error) {
	folder, err := s.folderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.NewParentID != nil {
		if *req.NewParentID == id {
			return nil, pkgErrors.ErrFolderCycle
		}
		if _, err := s.folderRepo.FindByID(*req.NewParentID); err != nil {
			return nil, err
		}
		if err := s.checkCycle(id, *req.NewParentID); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := nextFolderSequence(tx, req.NewParentID)
		if err != nil {
			return err
		}
		folder.ParentID = req.NewParentID
		folder.Sequence = seq
		if err := tx.Save(folder).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "移动文件夹失败", err)
		}

		if req.NewSequence != nil {
			return repositionFolder(tx, folder, *req.NewSequence)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// checkCycle 沿目标父级的祖先链上溯，命中自身即为环
func (s *folderService) checkCycle(id, newParentID int64) error {
	current := &newParentID
	for current != nil {
		if *current == id {
			return pkgErrors.ErrFolderCycle
		}
		parent, err := s.folderRepo.FindByID(*current)
		if err != nil {
			return err
		}
		current = parent.ParentID
	}
	return nil
}

// Reorder 同级重排序：orderedIds 必须与该范围现有成员完全一致，序号重写为 1..n
func (s *folderService) Reorder(req *dto.ReorderFoldersRequest) error {
	siblings, err := s.folderRepo.ListByParent(req.ParentID)
	if err != nil {
		return err
	}

	if err := validateOrderedIDs(req.OrderedIDs, folderIDs(siblings)); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i, folderID := range req.OrderedIDs {
			err := tx.Model(&model.Folder{}).Where("id = ?", folderID).
				Update("sequence", i+1).Error
			if err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "重排序文件夹失败", err)
			}
		}
		return nil
	})
}

// Delete 删除文件夹：子文件夹与其中用例重挂到被删文件夹的父级，单事务完成
func (s *folderService) Delete(id int64) error {
	folder, err := s.folderRepo.FindByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Folder{}).Where("parent_id = ?", id).
			Update("parent_id", folder.ParentID).Error
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "迁移子文件夹失败", err)
		}

		err = tx.Model(&model.TestCase{}).Where("folder_id = ?", id).
			Update("folder_id", folder.ParentID).Error
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "迁移测试用例失败", err)
		}

		if err := tx.Delete(&model.Folder{}, id).Error; err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "删除文件夹失败", err)
		}
		return nil
	})
}

// nextFolderSequence 事务内计算同级下一个序号
func nextFolderSequence(tx *gorm.DB, parentID *int64) (int, error) {
	var maxSeq int
	query := tx.Model(&model.Folder{})
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if err := query.Select("COALESCE(MAX(sequence), 0)").Scan(&maxSeq).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询文件夹序号失败", err)
	}
	return maxSeq + 1, nil
}

// repositionFolder 把 folder 插入同级的指定位置（1-based），重写整个范围的序号
func repositionFolder(tx *gorm.DB, folder *model.Folder, position int) error {
	var siblings []*model.Folder
	query := tx.Model(&model.Folder{})
	if folder.ParentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *folder.ParentID)
	}
	if err := query.Order("sequence ASC").Find(&siblings).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "查询子文件夹失败", err)
	}

	ordered := make([]*model.Folder, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling.ID != folder.ID {
			ordered = append(ordered, sibling)
		}
	}
	if position < 1 {
		position = 1
	}
	if position > len(ordered)+1 {
		position = len(ordered) + 1
	}
	ordered = append(ordered[:position-1], append([]*model.Folder{folder}, ordered[position-1:]...)...)

	for i, sibling := range ordered {
		err := tx.Model(&model.Folder{}).Where("id = ?", sibling.ID).
			Update("sequence", i+1).Error
		if err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "重排序文件夹失败", err)
		}
	}
	return nil
}

func folderIDs(folders []*model.Folder) []int64 {
	ids := make([]int64, 0, len(folders))
	for _, folder := range folders {
		ids = append(ids, folder.ID)
	}
	return ids
}

// validateOrderedIDs 校验 orderedIds 与范围内现有成员集合完全一致
func validateOrderedIDs(orderedIDs, existingIDs []int64) error {
	if len(orderedIDs) != len(existingIDs) {
		return pkgErrors.New(pkgErrors.CodeBadRequest, "orderedIds 必须与该范围内的全部成员一致")
	}
	existing := make(map[int64]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}
	seen := make(map[int64]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !existing[id] || seen[id] {
			return pkgErrors.New(pkgErrors.CodeBadRequest, "orderedIds 必须与该范围内的全部成员一致")
		}
		seen[id] = true
	}
	return nil
}
