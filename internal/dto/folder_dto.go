package dto

// CreateFolderRequest 创建文件夹请求
type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	ParentID *int64 `json:"parentId"`
}

// MoveFolderRequest 移动文件夹请求
type MoveFolderRequest struct {
	NewParentID *int64 `json:"newParentId"`
	NewSequence *int   `json:"newSequence"`
}

// RenameFolderRequest 重命名文件夹请求
type RenameFolderRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ReorderFoldersRequest 同级文件夹重排序请求
// orderedIds 必须与该 parent 范围内现有文件夹完全一致
type ReorderFoldersRequest struct {
	ParentID   *int64  `json:"parentId"`
	OrderedIDs []int64 `json:"orderedIds" binding:"required,min=1"`
}

// FolderNode 文件夹树节点
type FolderNode struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	ParentID *int64        `json:"parentId"`
	Sequence int           `json:"sequence"`
	Children []*FolderNode `json:"children"`
}
