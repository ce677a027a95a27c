package handler

import "github.com/Spinoza1124/emotion-labeling-refactoring/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Assignment *AssignmentHandler
	Annotation *AnnotationHandler
	Admin      *AdminHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Annotation: NewAnnotationHandler(svc.Annotation),
		Admin:      NewAdminHandler(svc.Catalog, svc.Assignment, svc.User),
		Export:     NewExportHandler(svc.Export),
	}
}
