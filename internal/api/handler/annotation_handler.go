package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/service"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/response"
)

// AnnotationHandler 标注模块 HTTP 处理器
type AnnotationHandler struct {
	annotationSvc *service.AnnotationService
}

// NewAnnotationHandler 创建 AnnotationHandler
func NewAnnotationHandler(annotationSvc *service.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{annotationSvc: annotationSvc}
}

// ListSpeakers 查询当前分组的说话人列表（个性化顺序）
// GET /api/v1/speakers
func (h *AnnotationHandler) ListSpeakers(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	list, err := h.annotationSvc.SpeakerList(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			response.NotFound(c, 12004, "尚未分配分组")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// ListAudios 查询说话人的音频列表（个性化顺序，含标注状态）
// GET /api/v1/speakers/:speaker/audios
func (h *AnnotationHandler) ListAudios(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	speaker := c.Param("speaker")
	list, err := h.annotationSvc.AudioList(c.Request.Context(), username, speaker)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// SaveLabel 保存标注
// POST /api/v1/labels
func (h *AnnotationHandler) SaveLabel(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.SaveLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.annotationSvc.SaveLabel(c.Request.Context(), username, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, resp)
}

// GetLabel 查询标注
// GET /api/v1/labels?speaker=xxx&audio_file=xxx
func (h *AnnotationHandler) GetLabel(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	speaker := c.Query("speaker")
	audioFile := c.Query("audio_file")
	if speaker == "" || audioFile == "" {
		response.BadRequest(c, 10001, "speaker 与 audio_file 不能为空")
		return
	}

	label, err := h.annotationSvc.GetLabel(c.Request.Context(), username, speaker, audioFile)
	if err != nil {
		if errors.Is(err, service.ErrLabelNotFound) {
			response.NotFound(c, 13001, "标注记录不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, label)
}

// IncrementPlayCount 音频播放计数加一
// POST /api/v1/labels/play-count
func (h *AnnotationHandler) IncrementPlayCount(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	var req dto.PlayCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	count, err := h.annotationSvc.IncrementPlayCount(c.Request.Context(), username, req.Speaker, req.AudioFile)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"play_count": count})
}

// GetPlayCount 查询音频播放计数
// GET /api/v1/labels/play-count?speaker=xxx&audio_file=xxx
func (h *AnnotationHandler) GetPlayCount(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	speaker := c.Query("speaker")
	audioFile := c.Query("audio_file")
	if speaker == "" || audioFile == "" {
		response.BadRequest(c, 10001, "speaker 与 audio_file 不能为空")
		return
	}

	count, err := h.annotationSvc.PlayCount(c.Request.Context(), username, speaker, audioFile)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"play_count": count})
}
