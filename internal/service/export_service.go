package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
)

// ExportService 导出服务：把标注结果导出为 Excel 工作簿
type ExportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(repo *repository.Repository, logger *zap.Logger) *ExportService {
	return &ExportService{repo: repo, logger: logger}
}

var exportHeaders = []string{
	"音频文件", "说话人", "标注人", "V值", "A值",
	"情感大类", "离散情感", "患者状态", "音频时长",
	"播放次数", "VA完整", "离散完整",
}

// ExportGroupLabels 导出指定分组的全部标注；groupID 为 0 时导出所有分组
func (s *ExportService) ExportGroupLabels(ctx context.Context, groupID int) (*excelize.File, error) {
	speakers, err := s.exportSpeakers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	labels, err := s.repo.Label.ListBySpeakers(ctx, speakers)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "标注结果"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, l := range labels {
		values := []interface{}{
			l.AudioFile, l.Speaker, l.Username,
			floatOrEmpty(l.VValue), floatOrEmpty(l.AValue),
			stringOrEmpty(l.EmotionType), stringOrEmpty(l.DiscreteEmotion),
			stringOrEmpty(l.PatientStatus), l.AudioDuration,
			l.PlayCount, l.VAComplete, l.DiscreteComplete,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("标注导出完成",
		zap.Int("group_id", groupID), zap.Int("rows", len(labels)))
	return f, nil
}

// ExportFileName 生成导出文件名
func ExportFileName(groupID int) string {
	if groupID == 0 {
		return "emotion_labels_all.xlsx"
	}
	return fmt.Sprintf("emotion_labels_group_%d.xlsx", groupID)
}

func (s *ExportService) exportSpeakers(ctx context.Context, groupID int) ([]string, error) {
	if groupID != 0 {
		return s.repo.Group.ListSpeakerIDs(ctx, groupID)
	}

	fleet, err := s.repo.Group.ListFleetStatus(ctx)
	if err != nil {
		return nil, err
	}
	var speakers []string
	for _, g := range fleet {
		ids, err := s.repo.Group.ListSpeakerIDs(ctx, g.GroupID)
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, ids...)
	}
	return speakers, nil
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func stringOrEmpty(v *string) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
