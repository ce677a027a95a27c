package model

import "time"

// 分配状态
const (
	AssignmentStatusAssigned   = "assigned"
	AssignmentStatusInProgress = "in_progress"
	AssignmentStatusCompleted  = "completed"
)

// GroupAssignment 分组分配表 — 对应 group_assignments
// 每个用户同一时刻最多持有一条 active（assigned/in_progress）分配；
// progress_count 单调不减且不超过 total_segments；
// status 只能由进度推导，不接受调用方直接设置。
type GroupAssignment struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"                    json:"id"`
	GroupID       int        `gorm:"not null;uniqueIndex:uniq_group_username"    json:"group_id"`
	Username      string     `gorm:"type:varchar(64);not null;uniqueIndex:uniq_group_username;index" json:"username"`
	Status        string     `gorm:"type:varchar(20);not null;default:'assigned'" json:"status"` // assigned | in_progress | completed
	ProgressCount int        `gorm:"not null;default:0"                          json:"progress_count"`
	TotalSegments int        `gorm:"not null;default:0"                          json:"total_segments"`
	AssignedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"assigned_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (GroupAssignment) TableName() string { return "group_assignments" }

// Active 判断分配是否处于 active 状态（assigned 或 in_progress）
func (a *GroupAssignment) Active() bool {
	return a.Status == AssignmentStatusAssigned || a.Status == AssignmentStatusInProgress
}
