package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/service"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc *service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc *service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportLabels 导出标注结果为 Excel
// GET /api/v1/admin/export?group_id=1（缺省导出全部分组）
func (h *ExportHandler) ExportLabels(c *gin.Context) {
	groupID := 0
	if raw := c.Query("group_id"); raw != "" {
		var err error
		groupID, err = strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, 10001, "group_id 必须为整数")
			return
		}
	}

	f, err := h.exportSvc.ExportGroupLabels(c.Request.Context(), groupID)
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		response.InternalError(c)
		return
	}

	encodedFilename := url.QueryEscape(service.ExportFileName(groupID))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
