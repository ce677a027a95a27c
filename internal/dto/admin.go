package dto

// OrderStatsResponse 用户排序持久化统计（运维视图）
type OrderStatsResponse struct {
	Username      string `json:"username"`
	SpeakerOrders int64  `json:"speaker_orders"`
	AudioOrders   int64  `json:"audio_orders"`
}

// ResetUserRequest 管理员重置用户请求
type ResetUserRequest struct {
	Username string `json:"username" binding:"required"`
}

// ResetUserResult 重置结果：各类数据的清理情况
type ResetUserResult struct {
	Username           string `json:"username"`
	AssignmentReleased bool   `json:"assignment_released"`
	LabelsDeleted      bool   `json:"labels_deleted"`
	OrdersDeleted      bool   `json:"orders_deleted"`
}
