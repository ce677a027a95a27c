package errors

import "errors"

// ErrCapacityExceeded 分组容量冲突：提交时分组已被其他用户占满
var ErrCapacityExceeded = errors.New("分组容量已满，请重新选择分组")

// ErrActiveAssignmentExists 用户已持有其他分组的 active 分配
var ErrActiveAssignmentExists = errors.New("已持有进行中的分组分配")

// ErrProgressRegression 进度回退：提交的进度低于已存储的进度
var ErrProgressRegression = errors.New("进度不允许回退")
