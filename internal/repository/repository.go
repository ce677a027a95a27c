package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Group      GroupRepository
	Assignment AssignmentRepository
	Order      OrderRepository
	Label      LabelRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Group:      NewGroupRepo(db),
		Assignment: NewAssignmentRepo(db),
		Order:      NewOrderRepo(db),
		Label:      NewLabelRepo(db),
	}
}
