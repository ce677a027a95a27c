package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	pkgerrors "github.com/Spinoza1124/emotion-labeling-refactoring/pkg/errors"
)

// AssignmentRepository 分组分配数据访问接口
type AssignmentRepository interface {
	// GetActiveByUsername 返回用户当前 active（assigned/in_progress）的分配
	GetActiveByUsername(ctx context.Context, username string) (*model.GroupAssignment, error)
	GetByUsername(ctx context.Context, username string) (*model.GroupAssignment, error)
	GetByGroupAndUsername(ctx context.Context, groupID int, username string) (*model.GroupAssignment, error)
	// Commit 在单个事务内完成分配提交：
	// 校验用户没有其他 active 分配 → 插入分配行（已存在则幂等返回）
	// → 条件更新占位计数。
	// 容量已满返回 pkg/errors.ErrCapacityExceeded，已持有其他分组的
	// active 分配返回 pkg/errors.ErrActiveAssignmentExists，
	// 分组不存在返回 gorm.ErrRecordNotFound。
	Commit(ctx context.Context, username string, groupID int, capacity int) error
	// UpdateProgress 在单个事务内（行锁）更新进度：
	// 进度回退返回 pkg/errors.ErrProgressRegression，记录不存在返回
	// gorm.ErrRecordNotFound；status 与 completed_at 由进度推导；
	// 分配首次进入 completed 时同步累加分组 completed_count，
	// 已满员（in_progress）的分组在全员完成后转为 completed；
	// 未满员分组保持 available，仍可接收新标注人。
	UpdateProgress(ctx context.Context, username string, groupID int, progress int) (*model.GroupAssignment, error)
	ListByGroup(ctx context.Context, groupID int) ([]model.GroupAssignment, error)
	// DeleteByUsername 管理员重置：删除分配行并回退分组占位计数
	DeleteByUsername(ctx context.Context, username string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) GetActiveByUsername(ctx context.Context, username string) (*model.GroupAssignment, error) {
	var a model.GroupAssignment
	err := r.db.WithContext(ctx).
		Where("username = ? AND status IN ?", username,
			[]string{model.AssignmentStatusAssigned, model.AssignmentStatusInProgress}).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) GetByUsername(ctx context.Context, username string) (*model.GroupAssignment, error) {
	var a model.GroupAssignment
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) GetByGroupAndUsername(ctx context.Context, groupID int, username string) (*model.GroupAssignment, error) {
	var a model.GroupAssignment
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND username = ?", groupID, username).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) Commit(ctx context.Context, username string, groupID int, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 读取分组，确认存在并取 total_segments
		var group model.GroupStatus
		if err := tx.Where("group_id = ?", groupID).First(&group).Error; err != nil {
			return err
		}

		// 2. 同一用户至多持有一个 active 分配：
		//    同组重复提交幂等返回，异组提交拒绝
		var existing model.GroupAssignment
		err := tx.Where("username = ? AND status IN ?", username,
			[]string{model.AssignmentStatusAssigned, model.AssignmentStatusInProgress}).
			First(&existing).Error
		switch {
		case err == nil:
			if existing.GroupID == groupID {
				return nil
			}
			return pkgerrors.ErrActiveAssignmentExists
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		// 3. 插入分配行；(group_id, username) 已存在说明该用户此前
		//    在本分组完成过标注，幂等返回，不重复占位
		assignment := model.GroupAssignment{
			GroupID:       groupID,
			Username:      username,
			Status:        model.AssignmentStatusAssigned,
			TotalSegments: group.TotalSegments,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "username"}},
			DoNothing: true,
		}).Create(&assignment)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		// 4. 条件占位：扫描与提交之间可能有并发提交抢走最后一个空位，
		//    这里的 WHERE 条件在同一事务内重新校验容量，是唯一的准入闸门
		claim := tx.Model(&model.GroupStatus{}).
			Where("group_id = ? AND status = ? AND assigned_count < ?",
				groupID, model.GroupStatusAvailable, capacity).
			Updates(map[string]interface{}{
				"assigned_count": gorm.Expr("assigned_count + 1"),
				"status": gorm.Expr(
					"CASE WHEN assigned_count + 1 >= ? THEN ? ELSE status END",
					capacity, model.GroupStatusInProgress),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			// 回滚事务，撤销第 3 步的插入
			return pkgerrors.ErrCapacityExceeded
		}

		return nil
	})
}

func (r *assignmentRepo) UpdateProgress(ctx context.Context, username string, groupID int, progress int) (*model.GroupAssignment, error) {
	var a model.GroupAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行锁读取，并发更新同一条分配时串行化
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("username = ? AND group_id = ?", username, groupID).
			First(&a).Error; err != nil {
			return err
		}

		if progress < a.ProgressCount {
			return pkgerrors.ErrProgressRegression
		}

		wasCompleted := a.Status == model.AssignmentStatusCompleted
		a.ProgressCount = progress
		switch {
		case a.TotalSegments > 0 && progress >= a.TotalSegments:
			a.Status = model.AssignmentStatusCompleted
			if a.CompletedAt == nil {
				now := time.Now()
				a.CompletedAt = &now
			}
		case progress > 0:
			a.Status = model.AssignmentStatusInProgress
		}
		if err := tx.Save(&a).Error; err != nil {
			return err
		}

		// 首次完成时累加分组完成计数。只有已满员（in_progress）的分组
		// 才会在全员完成后整组完结：未满员分组保持 available，
		// 准入闸门只由容量控制，提前完成的标注人不关闭分组
		if a.Status == model.AssignmentStatusCompleted && !wasCompleted {
			return tx.Model(&model.GroupStatus{}).
				Where("group_id = ?", groupID).
				Updates(map[string]interface{}{
					"completed_count": gorm.Expr("completed_count + 1"),
					"status": gorm.Expr(
						"CASE WHEN status = ? AND completed_count + 1 >= assigned_count THEN ? ELSE status END",
						model.GroupStatusInProgress, model.GroupStatusCompleted),
					"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListByGroup(ctx context.Context, groupID int) ([]model.GroupAssignment, error) {
	var assignments []model.GroupAssignment
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("username").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) DeleteByUsername(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.GroupAssignment
		err := tx.Where("username = ?", username).First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&a).Error; err != nil {
			return err
		}

		// 回退占位计数并恢复分组可用状态
		return tx.Model(&model.GroupStatus{}).
			Where("group_id = ? AND assigned_count > 0", a.GroupID).
			Updates(map[string]interface{}{
				"assigned_count": gorm.Expr("assigned_count - 1"),
				"status":         model.GroupStatusAvailable,
				"updated_at":     gorm.Expr("CURRENT_TIMESTAMP"),
			}).Error
	})
}
