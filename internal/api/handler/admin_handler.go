package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/service"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/response"
)

// AdminHandler 管理模块 HTTP 处理器：目录导入、分组总览、用户管理
type AdminHandler struct {
	catalogSvc    *service.CatalogService
	assignmentSvc *service.AssignmentService
	userSvc       *service.UserService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(catalogSvc *service.CatalogService, assignmentSvc *service.AssignmentService, userSvc *service.UserService) *AdminHandler {
	return &AdminHandler{
		catalogSvc:    catalogSvc,
		assignmentSvc: assignmentSvc,
		userSvc:       userSvc,
	}
}

// ImportCatalog 导入分组清单
// POST /api/v1/admin/catalog/import
func (h *AdminHandler) ImportCatalog(c *gin.Context) {
	var req dto.ImportCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.catalogSvc.ImportCatalog(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidManifest) {
			response.BadRequest(c, 14001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ListGroups 查询全部分组状态总览
// GET /api/v1/admin/groups
func (h *AdminHandler) ListGroups(c *gin.Context) {
	items, err := h.assignmentSvc.AllGroupsStatus(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, items)
}

// GetGroup 查询单个分组详情
// GET /api/v1/admin/groups/:id
func (h *AdminHandler) GetGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.BadRequest(c, 10001, "分组编号必须为整数")
		return
	}

	info, err := h.assignmentSvc.GroupSnapshot(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, 12002, "分组不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, info)
}

// ListUsers 查询全部用户
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, users)
}

// ResetUser 重置用户：清空标注与排序，释放分配
// POST /api/v1/admin/users/reset
func (h *AdminHandler) ResetUser(c *gin.Context) {
	var req dto.ResetUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.ResetUser(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 14002, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetOrderStats 查询用户排序持久化统计
// GET /api/v1/admin/users/:username/order-stats
func (h *AdminHandler) GetOrderStats(c *gin.Context) {
	stats, err := h.userSvc.OrderStats(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}
