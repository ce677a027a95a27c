package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
)

var ErrInvalidManifest = errors.New("分组清单不合法")

// CatalogService 目录服务：导入预先分好组的说话人与音频清单。
// 导入幂等：已存在的分组、说话人、音频文件保持不变，只补充新增项。
type CatalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建目录服务
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ImportCatalog 导入分组清单。说话人的时长与片段数来自清单；
// 片段数缺省时按音频文件数推算。
func (s *CatalogService) ImportCatalog(ctx context.Context, req *dto.ImportCatalogRequest) (*dto.ImportResult, error) {
	if err := validateManifest(req); err != nil {
		return nil, err
	}

	result := &dto.ImportResult{}
	for _, g := range req.Groups {
		var (
			totalDuration float64
			totalSegments int
			speakers      []model.SpeakerGroup
			files         []model.SpeakerAudioFile
		)
		for _, sp := range g.Speakers {
			segments := sp.SegmentCount
			if segments == 0 {
				segments = len(sp.AudioFiles)
			}
			totalDuration += sp.Duration
			totalSegments += segments
			speakers = append(speakers, model.SpeakerGroup{
				GroupID:      g.GroupID,
				SpeakerID:    sp.SpeakerID,
				Duration:     sp.Duration,
				SegmentCount: segments,
			})
			for _, f := range sp.AudioFiles {
				files = append(files, model.SpeakerAudioFile{
					SpeakerID: sp.SpeakerID,
					FileName:  f,
				})
			}
		}

		group := &model.GroupStatus{
			GroupID:       g.GroupID,
			TotalDuration: totalDuration,
			TotalSegments: totalSegments,
			Status:        model.GroupStatusAvailable,
		}
		if err := s.repo.Group.CreateGroup(ctx, group); err != nil {
			return nil, err
		}
		if err := s.repo.Group.UpsertSpeakers(ctx, speakers); err != nil {
			return nil, err
		}
		if err := s.repo.Group.UpsertAudioFiles(ctx, files); err != nil {
			return nil, err
		}

		result.GroupsCreated++
		result.SpeakersAdded += len(speakers)
		result.FilesAdded += len(files)
	}

	s.logger.Info("目录导入完成",
		zap.Int("groups", result.GroupsCreated),
		zap.Int("speakers", result.SpeakersAdded),
		zap.Int("files", result.FilesAdded))
	return result, nil
}

func validateManifest(req *dto.ImportCatalogRequest) error {
	seenGroup := make(map[int]bool)
	seenSpeaker := make(map[string]bool)
	for _, g := range req.Groups {
		if g.GroupID <= 0 {
			return fmt.Errorf("%w: 分组编号必须为正整数", ErrInvalidManifest)
		}
		if seenGroup[g.GroupID] {
			return fmt.Errorf("%w: 分组 %d 重复", ErrInvalidManifest, g.GroupID)
		}
		seenGroup[g.GroupID] = true
		for _, sp := range g.Speakers {
			if sp.SpeakerID == "" {
				return fmt.Errorf("%w: 分组 %d 含空说话人", ErrInvalidManifest, g.GroupID)
			}
			if seenSpeaker[sp.SpeakerID] {
				return fmt.Errorf("%w: 说话人 %s 出现在多个分组", ErrInvalidManifest, sp.SpeakerID)
			}
			seenSpeaker[sp.SpeakerID] = true
		}
	}
	return nil
}
