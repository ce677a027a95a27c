package service

import (
	"go.uber.org/zap"

	"github.com/Spinoza1124/emotion-labeling-refactoring/config"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/jwt"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/redis"
)

// Service 所有业务服务的聚合入口
type Service struct {
	Auth       *AuthService
	User       *UserService
	Catalog    *CatalogService
	Order      *OrderService
	Assignment *AssignmentService
	Annotation *AnnotationService
	Export     *ExportService
}

// NewService 创建 Service 聚合；rdb 允许为 nil（Redis 不可用时
// Token 黑名单降级为不生效）
func NewService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *Service {
	orders := NewOrderService(repo, logger)
	assignment := NewAssignmentService(cfg, repo, logger)
	annotation := NewAnnotationService(repo, orders, assignment, logger)

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, orders, assignment, annotation, logger),
		Catalog:    NewCatalogService(repo, logger),
		Order:      orders,
		Assignment: assignment,
		Annotation: annotation,
		Export:     NewExportService(repo, logger),
	}
}
