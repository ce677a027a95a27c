package dto

import "time"

// SpeakerInfo 分组成员（说话人）信息
type SpeakerInfo struct {
	SpeakerID    string  `json:"speaker_id"`
	Duration     float64 `json:"duration"`
	SegmentCount int     `json:"segment_count"`
}

// GroupInfo 分组详细信息（含成员，按时长降序）
type GroupInfo struct {
	GroupID       int           `json:"group_id"`
	TotalDuration float64       `json:"total_duration"`
	TotalSegments int           `json:"total_segments"`
	AssignedCount int           `json:"assigned_count"`
	Status        string        `json:"status"`
	Speakers      []SpeakerInfo `json:"speakers"`
}

// AssignmentInfo 用户分组分配信息
type AssignmentInfo struct {
	GroupID       int        `json:"group_id"`
	Status        string     `json:"status"`
	ProgressCount int        `json:"progress_count"`
	TotalSegments int        `json:"total_segments"`
	AssignedAt    time.Time  `json:"assigned_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	GroupInfo     *GroupInfo `json:"group_info,omitempty"`
}

// AssignmentCandidate 候选分配：Existing 为 true 时 Assignment 为用户已持有的分配；
// 否则 Group 为候选分组（尚未提交，不产生任何占位）
type AssignmentCandidate struct {
	Existing   bool            `json:"existing"`
	Assignment *AssignmentInfo `json:"assignment,omitempty"`
	Group      *GroupInfo      `json:"group,omitempty"`
}

// ProgressInfo 用户标注进度
type ProgressInfo struct {
	GroupID            int     `json:"group_id"`
	ProgressCount      int     `json:"progress_count"`
	TotalSegments      int     `json:"total_segments"`
	ProgressPercentage float64 `json:"progress_percentage"`
	Status             string  `json:"status"`
}

// UpdateProgressRequest 更新进度请求
type UpdateProgressRequest struct {
	ProgressCount *int `json:"progress_count" binding:"required"`
}

// GroupFleetItem 分组全量状态（运维视图）
type GroupFleetItem struct {
	GroupID        int     `json:"group_id"`
	TotalDuration  float64 `json:"total_duration"`
	TotalSegments  int     `json:"total_segments"`
	AssignedCount  int     `json:"assigned_count"`
	CompletedCount int     `json:"completed_count"`
	Status         string  `json:"status"`
	ActualAssigned int     `json:"actual_assigned"`
}
