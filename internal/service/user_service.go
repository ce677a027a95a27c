package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
)

var ErrUserNotFound = errors.New("用户不存在")

// UserService 用户管理：用户列表与管理员重置
type UserService struct {
	repo       *repository.Repository
	orders     *OrderService
	assignment *AssignmentService
	annotation *AnnotationService
	logger     *zap.Logger
}

// NewUserService 创建用户管理服务
func NewUserService(repo *repository.Repository, orders *OrderService, assignment *AssignmentService, annotation *AnnotationService, logger *zap.Logger) *UserService {
	return &UserService{
		repo:       repo,
		orders:     orders,
		assignment: assignment,
		annotation: annotation,
		logger:     logger,
	}
}

// List 返回全部用户
func (s *UserService) List(ctx context.Context) ([]dto.UserInfo, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]dto.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, dto.UserInfo{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Role:        u.Role,
		})
	}
	return infos, nil
}

// ResetUser 管理员重置用户：清空其标注与排序记录，释放分组分配
// 并回退分组占位计数。用户账号本身保留。
func (s *UserService) ResetUser(ctx context.Context, username string) (*dto.ResetUserResult, error) {
	_, err := s.repo.User.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	result := &dto.ResetUserResult{Username: username}

	if err := s.annotation.DeleteUserLabels(ctx, username); err != nil {
		return nil, err
	}
	result.LabelsDeleted = true

	if err := s.orders.DeleteUserOrders(ctx, username); err != nil {
		return nil, err
	}
	result.OrdersDeleted = true

	if err := s.assignment.ReleaseAssignment(ctx, username); err != nil {
		return nil, err
	}
	result.AssignmentReleased = true

	s.logger.Info("用户已重置", zap.String("username", username))
	return result, nil
}

// OrderStats 返回用户排序持久化统计（运维视图）
func (s *UserService) OrderStats(ctx context.Context, username string) (*dto.OrderStatsResponse, error) {
	return s.orders.Stats(ctx, username)
}
