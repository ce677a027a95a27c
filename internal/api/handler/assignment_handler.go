package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/service"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/response"
)

// AssignmentHandler 分组分配模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc *service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// GetCandidate 查询分配候选（不占位）
// GET /api/v1/assignment/candidate
func (h *AssignmentHandler) GetCandidate(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	candidate, err := h.assignmentSvc.GetOrCreateAssignment(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrNoGroupAvailable) {
			response.NotFound(c, 12001, "当前没有可分配的分组")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, candidate)
}

// Commit 提交候选分组
// POST /api/v1/assignment/commit
func (h *AssignmentHandler) Commit(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req struct {
		GroupID int `json:"group_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	info, err := h.assignmentSvc.CommitAssignment(c.Request.Context(), username, req.GroupID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 12002, "分组不存在")
		case errors.Is(err, service.ErrGroupFull):
			response.Conflict(c, 12003, "分组容量已满，请重新获取候选")
		case errors.Is(err, service.ErrAlreadyAssigned):
			response.Conflict(c, 12007, "已持有其他分组的分配")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, info)
}

// Acquire 一步式获取分配（候选被抢占时自动重试）
// POST /api/v1/assignment/acquire
func (h *AssignmentHandler) Acquire(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	info, err := h.assignmentSvc.AcquireAssignment(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrNoGroupAvailable) {
			response.NotFound(c, 12001, "当前没有可分配的分组")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, info)
}

// GetAssignment 查询当前用户的分配详情
// GET /api/v1/assignment
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	info, err := h.assignmentSvc.UserAssignment(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			response.NotFound(c, 12004, "尚未分配分组")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, info)
}

// GetProgress 查询当前用户的标注进度
// GET /api/v1/assignment/progress
func (h *AssignmentHandler) GetProgress(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	info, err := h.assignmentSvc.Progress(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			response.NotFound(c, 12004, "尚未分配分组")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, info)
}

// UpdateProgress 更新标注进度（单调不减）
// PUT /api/v1/assignment/progress
func (h *AssignmentHandler) UpdateProgress(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProgressCount == nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	info, err := h.assignmentSvc.UpdateProgress(c.Request.Context(), username, *req.ProgressCount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			response.NotFound(c, 12004, "尚未分配分组")
		case errors.Is(err, service.ErrProgressOutOfRange):
			response.BadRequest(c, 12005, "进度超出有效范围")
		case errors.Is(err, service.ErrProgressRegression):
			response.Conflict(c, 12006, "进度不允许回退")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, info)
}
