package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
)

var ErrLabelNotFound = errors.New("标注记录不存在")

// AnnotationService 标注服务：标注的保存与查询、播放计数、
// 按个性化顺序返回说话人与音频列表，并在每次保存后重算标注进度
type AnnotationService struct {
	repo       *repository.Repository
	orders     *OrderService
	assignment *AssignmentService
	logger     *zap.Logger
}

// NewAnnotationService 创建标注服务
func NewAnnotationService(repo *repository.Repository, orders *OrderService, assignment *AssignmentService, logger *zap.Logger) *AnnotationService {
	return &AnnotationService{
		repo:       repo,
		orders:     orders,
		assignment: assignment,
		logger:     logger,
	}
}

// SaveLabel 保存（覆盖）一条标注，然后按"完全完成的标注数"重算
// 用户在当前分组内的进度。完整性标志在写入前重算，不信任调用方。
func (s *AnnotationService) SaveLabel(ctx context.Context, username string, req *dto.SaveLabelRequest) (*dto.SaveLabelResponse, error) {
	label := &model.EmotionLabel{
		AudioFile:       req.AudioFile,
		Speaker:         req.Speaker,
		Username:        username,
		VValue:          req.VValue,
		AValue:          req.AValue,
		EmotionType:     req.EmotionType,
		DiscreteEmotion: req.DiscreteEmotion,
		PatientStatus:   req.PatientStatus,
		AudioDuration:   req.AudioDuration,
	}
	label.RecomputeCompleteness()

	if err := s.repo.Label.Upsert(ctx, label); err != nil {
		return nil, err
	}

	// play_count 由 Upsert 保留原值，响应里回读最新值
	playCount, err := s.repo.Label.GetPlayCount(ctx, username, req.Speaker, req.AudioFile)
	if err != nil {
		playCount = label.PlayCount
	}
	label.PlayCount = playCount

	resp := &dto.SaveLabelResponse{Label: labelResponse(label)}
	progress, err := s.recountProgress(ctx, username)
	if err != nil {
		// 进度重算失败不回滚标注，下次保存会再次重算
		s.logger.Warn("标注已保存但进度重算失败",
			zap.String("username", username), zap.Error(err))
		return resp, nil
	}
	resp.Progress = progress
	return resp, nil
}

// recountProgress 重算进度：统计用户在当前分组说话人集合内
// va_complete 且 discrete_complete 的标注数，作为新进度提交。
// 覆盖保存把已完成标注改回未完成时计数可能下降，此时进度
// 保持单调不回退，沿用已存储的进度。
func (s *AnnotationService) recountProgress(ctx context.Context, username string) (*dto.ProgressInfo, error) {
	assignment, err := s.repo.Assignment.GetActiveByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // 无 active 分配（如已完成），不推进进度
	}
	if err != nil {
		return nil, err
	}

	speakers, err := s.repo.Group.ListSpeakerIDs(ctx, assignment.GroupID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Label.CountFullyComplete(ctx, username, speakers)
	if err != nil {
		return nil, err
	}

	progress := int(count)
	if progress > assignment.TotalSegments {
		progress = assignment.TotalSegments
	}
	info, err := s.assignment.UpdateProgress(ctx, username, progress)
	if errors.Is(err, ErrProgressRegression) {
		return s.assignment.Progress(ctx, username)
	}
	return info, err
}

// GetLabel 查询一条标注
func (s *AnnotationService) GetLabel(ctx context.Context, username, speaker, audioFile string) (*dto.LabelResponse, error) {
	label, err := s.repo.Label.Get(ctx, username, speaker, audioFile)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLabelNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := labelResponse(label)
	return &resp, nil
}

// SpeakerList 返回用户当前分组的说话人列表，按该用户的个性化顺序
func (s *AnnotationService) SpeakerList(ctx context.Context, username string) (*dto.SpeakerListResponse, error) {
	assignment, err := s.repo.Assignment.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}

	speakers, err := s.orders.SpeakerOrder(ctx, username, assignment.GroupID)
	if err != nil {
		return nil, err
	}
	return &dto.SpeakerListResponse{GroupID: assignment.GroupID, Speakers: speakers}, nil
}

// AudioList 返回指定说话人的音频列表，按用户个性化顺序，
// 并带上每个文件的标注完成状态
func (s *AnnotationService) AudioList(ctx context.Context, username, speaker string) (*dto.AudioListResponse, error) {
	files, err := s.orders.AudioOrder(ctx, username, speaker)
	if err != nil {
		return nil, err
	}

	labels, err := s.repo.Label.ListByUserAndSpeaker(ctx, username, speaker)
	if err != nil {
		return nil, err
	}
	byFile := make(map[string]*model.EmotionLabel, len(labels))
	for i := range labels {
		byFile[labels[i].AudioFile] = &labels[i]
	}

	items := make([]dto.AudioItem, 0, len(files))
	for _, f := range files {
		item := dto.AudioItem{FileName: f}
		if l, ok := byFile[f]; ok {
			item.Labeled = true
			item.VAComplete = l.VAComplete
			item.DiscreteComplete = l.DiscreteComplete
		}
		items = append(items, item)
	}
	return &dto.AudioListResponse{Speaker: speaker, Items: items}, nil
}

// IncrementPlayCount 音频播放一次，计数加一；标注行不存在时自动落一行空标注
func (s *AnnotationService) IncrementPlayCount(ctx context.Context, username, speaker, audioFile string) (int, error) {
	if err := s.repo.Label.IncrementPlayCount(ctx, username, speaker, audioFile); err != nil {
		return 0, err
	}
	return s.repo.Label.GetPlayCount(ctx, username, speaker, audioFile)
}

// PlayCount 查询播放计数
func (s *AnnotationService) PlayCount(ctx context.Context, username, speaker, audioFile string) (int, error) {
	return s.repo.Label.GetPlayCount(ctx, username, speaker, audioFile)
}

// DeleteUserLabels 删除用户的全部标注（管理员重置用）
func (s *AnnotationService) DeleteUserLabels(ctx context.Context, username string) error {
	return s.repo.Label.DeleteByUsername(ctx, username)
}

func labelResponse(l *model.EmotionLabel) dto.LabelResponse {
	return dto.LabelResponse{
		AudioFile:        l.AudioFile,
		Speaker:          l.Speaker,
		Username:         l.Username,
		VValue:           l.VValue,
		AValue:           l.AValue,
		EmotionType:      l.EmotionType,
		DiscreteEmotion:  l.DiscreteEmotion,
		PatientStatus:    l.PatientStatus,
		AudioDuration:    l.AudioDuration,
		PlayCount:        l.PlayCount,
		VAComplete:       l.VAComplete,
		DiscreteComplete: l.DiscreteComplete,
	}
}
