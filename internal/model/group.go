package model

import "time"

// 分组状态
const (
	GroupStatusAvailable  = "available"
	GroupStatusInProgress = "in_progress"
	GroupStatusCompleted  = "completed"
)

// GroupStatus 分组状态表 — 对应 group_status
// 目录导入时创建；计数与状态仅由分配管理器（AssignmentService）变更。
type GroupStatus struct {
	GroupID        int       `gorm:"primaryKey"                                 json:"group_id"`
	TotalDuration  float64   `gorm:"not null"                                   json:"total_duration"`
	TotalSegments  int       `gorm:"not null"                                   json:"total_segments"`
	AssignedCount  int       `gorm:"not null;default:0"                         json:"assigned_count"`
	CompletedCount int       `gorm:"not null;default:0"                         json:"completed_count"`
	Status         string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"` // available | in_progress | completed
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"         json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"         json:"updated_at"`
}

// TableName 指定表名
func (GroupStatus) TableName() string { return "group_status" }

// SpeakerGroup 分组-说话人表 — 对应 speaker_groups
// 目录导入后只读。
type SpeakerGroup struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"           json:"id"`
	GroupID      int       `gorm:"not null;uniqueIndex:uniq_group_speaker" json:"group_id"`
	SpeakerID    string    `gorm:"type:varchar(64);not null;uniqueIndex:uniq_group_speaker" json:"speaker_id"`
	Duration     float64   `gorm:"not null"                           json:"duration"`
	SegmentCount int       `gorm:"not null"                           json:"segment_count"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (SpeakerGroup) TableName() string { return "speaker_groups" }

// SpeakerAudioFile 说话人音频文件目录表 — 对应 speaker_audio_files
// 目录导入后只读；排序引擎把 file_name 当作不透明标识符消费。
type SpeakerAudioFile struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"                                 json:"id"`
	SpeakerID string    `gorm:"type:varchar(64);not null;uniqueIndex:uniq_speaker_file"  json:"speaker_id"`
	FileName  string    `gorm:"type:varchar(255);not null;uniqueIndex:uniq_speaker_file" json:"file_name"`
	Duration  float64   `gorm:"not null;default:0"                                       json:"duration"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                       json:"created_at"`
}

// TableName 指定表名
func (SpeakerAudioFile) TableName() string { return "speaker_audio_files" }
