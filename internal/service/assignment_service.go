package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Spinoza1124/emotion-labeling-refactoring/config"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/dto"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
	pkgerrors "github.com/Spinoza1124/emotion-labeling-refactoring/pkg/errors"
)

var (
	ErrNoGroupAvailable   = errors.New("当前没有可分配的分组")
	ErrGroupNotFound      = errors.New("分组不存在")
	ErrAssignmentNotFound = errors.New("未找到分组分配记录")
	ErrProgressOutOfRange = errors.New("进度超出有效范围")
	// 以下复用 pkg/errors 的哨兵，在此取别名方便调用方统一从 service 包判断
	ErrGroupFull          = pkgerrors.ErrCapacityExceeded
	ErrProgressRegression = pkgerrors.ErrProgressRegression
	ErrAlreadyAssigned    = pkgerrors.ErrActiveAssignmentExists
)

// 一次获取分配最多重试的次数：每次重试意味着候选分组在扫描与提交
// 之间被其他用户占满，连续失败这么多次说明系统接近满载
const maxAcquireAttempts = 5

// AssignmentService 分配管理器：容量约束下的分组分配、幂等重入、
// 进度推进与状态机维护
type AssignmentService struct {
	repo     *repository.Repository
	capacity int
	logger   *zap.Logger
}

// NewAssignmentService 创建分配管理器
func NewAssignmentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		repo:     repo,
		capacity: cfg.Annotation.GroupCapacity,
		logger:   logger,
	}
}

// ── 分配 ──

// GetOrCreateAssignment 返回用户的分配候选：
// 已持有 active 分配时幂等返回原分配；否则扫描出编号最小的可用分组
// 作为候选。候选阶段不产生任何占位，占位在 CommitAssignment 时发生。
func (s *AssignmentService) GetOrCreateAssignment(ctx context.Context, username string) (*dto.AssignmentCandidate, error) {
	existing, err := s.repo.Assignment.GetActiveByUsername(ctx, username)
	if err == nil {
		info, err := s.assignmentInfo(ctx, existing, true)
		if err != nil {
			return nil, err
		}
		return &dto.AssignmentCandidate{Existing: true, Assignment: info}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	group, err := s.repo.Group.FindAvailable(ctx, s.capacity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoGroupAvailable
	}
	if err != nil {
		return nil, err
	}

	info, err := s.groupInfo(ctx, group)
	if err != nil {
		return nil, err
	}
	return &dto.AssignmentCandidate{Existing: false, Group: info}, nil
}

// CommitAssignment 提交候选分组：在单个事务内完成占位。
// 重复提交同一分组幂等成功；分组在扫描与提交之间被占满时
// 返回 ErrGroupFull，调用方可重新扫描。
func (s *AssignmentService) CommitAssignment(ctx context.Context, username string, groupID int) (*dto.AssignmentInfo, error) {
	err := s.repo.Assignment.Commit(ctx, username, groupID, s.capacity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	assignment, err := s.repo.Assignment.GetByGroupAndUsername(ctx, groupID, username)
	if err != nil {
		return nil, err
	}
	return s.assignmentInfo(ctx, assignment, true)
}

// AcquireAssignment 扫描-提交循环：候选被并发抢占时自动重试下一个
// 可用分组，直到提交成功、没有可用分组或达到重试上限
func (s *AssignmentService) AcquireAssignment(ctx context.Context, username string) (*dto.AssignmentInfo, error) {
	for attempt := 0; attempt < maxAcquireAttempts; attempt++ {
		candidate, err := s.GetOrCreateAssignment(ctx, username)
		if err != nil {
			return nil, err
		}
		if candidate.Existing {
			return candidate.Assignment, nil
		}

		info, err := s.CommitAssignment(ctx, username, candidate.Group.GroupID)
		if errors.Is(err, ErrGroupFull) {
			s.logger.Info("候选分组已被占满，重新扫描",
				zap.String("username", username),
				zap.Int("group_id", candidate.Group.GroupID))
			continue
		}
		if err != nil {
			return nil, err
		}
		return info, nil
	}
	return nil, ErrNoGroupAvailable
}

// ── 进度 ──

// UpdateProgress 推进用户标注进度。进度单调不减：低于已存储进度的
// 提交被拒绝（ErrProgressRegression），等值重放幂等成功。
// 进度到达 total_segments 时分配转为 completed 并记录完成时间。
func (s *AssignmentService) UpdateProgress(ctx context.Context, username string, progress int) (*dto.ProgressInfo, error) {
	assignment, err := s.repo.Assignment.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}

	if progress < 0 || progress > assignment.TotalSegments {
		return nil, ErrProgressOutOfRange
	}

	updated, err := s.repo.Assignment.UpdateProgress(ctx, username, assignment.GroupID, progress)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return progressInfo(updated), nil
}

// Progress 返回用户当前标注进度
func (s *AssignmentService) Progress(ctx context.Context, username string) (*dto.ProgressInfo, error) {
	assignment, err := s.repo.Assignment.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return progressInfo(assignment), nil
}

// ── 查询 ──

// UserAssignment 返回用户的分配详情（含分组成员）
func (s *AssignmentService) UserAssignment(ctx context.Context, username string) (*dto.AssignmentInfo, error) {
	assignment, err := s.repo.Assignment.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.assignmentInfo(ctx, assignment, true)
}

// GroupSnapshot 返回单个分组的详细信息
func (s *AssignmentService) GroupSnapshot(ctx context.Context, groupID int) (*dto.GroupInfo, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.groupInfo(ctx, group)
}

// AllGroupsStatus 返回全部分组的状态总览（含实际分配计数对账）
func (s *AssignmentService) AllGroupsStatus(ctx context.Context) ([]dto.GroupFleetItem, error) {
	fleet, err := s.repo.Group.ListFleetStatus(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GroupFleetItem, 0, len(fleet))
	for _, f := range fleet {
		items = append(items, dto.GroupFleetItem{
			GroupID:        f.GroupID,
			TotalDuration:  f.TotalDuration,
			TotalSegments:  f.TotalSegments,
			AssignedCount:  f.AssignedCount,
			CompletedCount: f.CompletedCount,
			Status:         f.Status,
			ActualAssigned: f.ActualAssigned,
		})
	}
	return items, nil
}

// ReleaseAssignment 释放用户的分配并回退分组占位计数（管理员重置用）
func (s *AssignmentService) ReleaseAssignment(ctx context.Context, username string) error {
	return s.repo.Assignment.DeleteByUsername(ctx, username)
}

// ── 组装 ──

func (s *AssignmentService) groupInfo(ctx context.Context, group *model.GroupStatus) (*dto.GroupInfo, error) {
	speakers, err := s.repo.Group.ListSpeakers(ctx, group.GroupID)
	if err != nil {
		return nil, err
	}
	infos := make([]dto.SpeakerInfo, 0, len(speakers))
	for _, sp := range speakers {
		infos = append(infos, dto.SpeakerInfo{
			SpeakerID:    sp.SpeakerID,
			Duration:     sp.Duration,
			SegmentCount: sp.SegmentCount,
		})
	}
	return &dto.GroupInfo{
		GroupID:       group.GroupID,
		TotalDuration: group.TotalDuration,
		TotalSegments: group.TotalSegments,
		AssignedCount: group.AssignedCount,
		Status:        group.Status,
		Speakers:      infos,
	}, nil
}

func (s *AssignmentService) assignmentInfo(ctx context.Context, a *model.GroupAssignment, withGroup bool) (*dto.AssignmentInfo, error) {
	info := &dto.AssignmentInfo{
		GroupID:       a.GroupID,
		Status:        a.Status,
		ProgressCount: a.ProgressCount,
		TotalSegments: a.TotalSegments,
		AssignedAt:    a.AssignedAt,
		CompletedAt:   a.CompletedAt,
	}
	if withGroup {
		group, err := s.repo.Group.GetByID(ctx, a.GroupID)
		if err != nil {
			return nil, err
		}
		gi, err := s.groupInfo(ctx, group)
		if err != nil {
			return nil, err
		}
		info.GroupInfo = gi
	}
	return info, nil
}

func progressInfo(a *model.GroupAssignment) *dto.ProgressInfo {
	percentage := 0.0
	if a.TotalSegments > 0 {
		percentage = float64(a.ProgressCount) / float64(a.TotalSegments) * 100
	}
	return &dto.ProgressInfo{
		GroupID:            a.GroupID,
		ProgressCount:      a.ProgressCount,
		TotalSegments:      a.TotalSegments,
		ProgressPercentage: percentage,
		Status:             a.Status,
	}
}
