package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
)

// GroupFleetStatus 分组全量状态视图（运维工具使用）
// actual_assigned 为 group_assignments 表的实时计数，
// 与 assigned_count 列对账，用于发现计数漂移。
type GroupFleetStatus struct {
	GroupID        int     `json:"group_id"`
	TotalDuration  float64 `json:"total_duration"`
	TotalSegments  int     `json:"total_segments"`
	AssignedCount  int     `json:"assigned_count"`
	CompletedCount int     `json:"completed_count"`
	Status         string  `json:"status"`
	ActualAssigned int     `json:"actual_assigned"`
}

// GroupRepository 分组目录数据访问接口
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *model.GroupStatus) error
	GetByID(ctx context.Context, groupID int) (*model.GroupStatus, error)
	// FindAvailable 候选扫描：返回编号最小、状态 available 且占用人数
	// 低于容量的分组。只读，不做任何占位。
	FindAvailable(ctx context.Context, capacity int) (*model.GroupStatus, error)
	ListFleetStatus(ctx context.Context) ([]GroupFleetStatus, error)
	// UpsertSpeakers 写入分组成员，已存在的 (group_id, speaker_id) 保持不变
	UpsertSpeakers(ctx context.Context, speakers []model.SpeakerGroup) error
	// ListSpeakers 按时长降序返回分组成员
	ListSpeakers(ctx context.Context, groupID int) ([]model.SpeakerGroup, error)
	ListSpeakerIDs(ctx context.Context, groupID int) ([]string, error)
	// UpsertAudioFiles 写入说话人音频目录，已存在的 (speaker_id, file_name) 保持不变
	UpsertAudioFiles(ctx context.Context, files []model.SpeakerAudioFile) error
	// ListAudioFiles 返回说话人的全部音频文件名（不透明标识符，目录序）
	ListAudioFiles(ctx context.Context, speakerID string) ([]string, error)
	CountGroups(ctx context.Context) (int64, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) CreateGroup(ctx context.Context, group *model.GroupStatus) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}},
			DoNothing: true,
		}).
		Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, groupID int) (*model.GroupStatus, error) {
	var g model.GroupStatus
	err := r.db.WithContext(ctx).Where("group_id = ?", groupID).First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) FindAvailable(ctx context.Context, capacity int) (*model.GroupStatus, error) {
	var g model.GroupStatus
	err := r.db.WithContext(ctx).
		Where("status = ? AND assigned_count < ?", model.GroupStatusAvailable, capacity).
		Order("group_id").
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) ListFleetStatus(ctx context.Context) ([]GroupFleetStatus, error) {
	var result []GroupFleetStatus
	err := r.db.WithContext(ctx).Raw(`
		SELECT gs.group_id, gs.total_duration, gs.total_segments,
		       gs.assigned_count, gs.completed_count, gs.status,
		       COUNT(ga.username) AS actual_assigned
		FROM group_status gs
		LEFT JOIN group_assignments ga ON gs.group_id = ga.group_id
		GROUP BY gs.group_id
		ORDER BY gs.group_id
	`).Scan(&result).Error
	return result, err
}

func (r *groupRepo) UpsertSpeakers(ctx context.Context, speakers []model.SpeakerGroup) error {
	if len(speakers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "speaker_id"}},
			DoNothing: true,
		}).
		Create(&speakers).Error
}

func (r *groupRepo) ListSpeakers(ctx context.Context, groupID int) ([]model.SpeakerGroup, error) {
	var speakers []model.SpeakerGroup
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("duration DESC").
		Find(&speakers).Error
	return speakers, err
}

func (r *groupRepo) ListSpeakerIDs(ctx context.Context, groupID int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.SpeakerGroup{}).
		Where("group_id = ?", groupID).
		Order("speaker_id").
		Pluck("speaker_id", &ids).Error
	return ids, err
}

func (r *groupRepo) UpsertAudioFiles(ctx context.Context, files []model.SpeakerAudioFile) error {
	if len(files) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "speaker_id"}, {Name: "file_name"}},
			DoNothing: true,
		}).
		Create(&files).Error
}

func (r *groupRepo) ListAudioFiles(ctx context.Context, speakerID string) ([]string, error) {
	var files []string
	err := r.db.WithContext(ctx).
		Model(&model.SpeakerAudioFile{}).
		Where("speaker_id = ?", speakerID).
		Order("file_name").
		Pluck("file_name", &files).Error
	return files, err
}

func (r *groupRepo) CountGroups(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GroupStatus{}).Count(&count).Error
	return count, err
}
