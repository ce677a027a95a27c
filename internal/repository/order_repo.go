package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
)

// OrderRepository 用户排序数据访问接口
// 排序记录只追加、不重排；并发首次写入按 last-write-wins 处理
// （两个并发写入者由同一种子推导出同一排列，覆盖无害）。
type OrderRepository interface {
	GetSpeakerOrder(ctx context.Context, username string) (*model.UserSpeakerOrder, error)
	SaveSpeakerOrder(ctx context.Context, username string, order []string) error
	GetAudioOrder(ctx context.Context, username, speaker string) (*model.UserAudioOrder, error)
	SaveAudioOrder(ctx context.Context, username, speaker string, order []string) error
	DeleteByUsername(ctx context.Context, username string) error
	CountByUsername(ctx context.Context, username string) (speakerOrders int64, audioOrders int64, err error)
}

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepo 创建 OrderRepository 实例
func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) GetSpeakerOrder(ctx context.Context, username string) (*model.UserSpeakerOrder, error) {
	var o model.UserSpeakerOrder
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) SaveSpeakerOrder(ctx context.Context, username string, order []string) error {
	record := model.UserSpeakerOrder{
		Username:     username,
		SpeakerOrder: model.StringList(order),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "username"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"speaker_order": record.SpeakerOrder,
				"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&record).Error
}

func (r *orderRepo) GetAudioOrder(ctx context.Context, username, speaker string) (*model.UserAudioOrder, error) {
	var o model.UserAudioOrder
	err := r.db.WithContext(ctx).
		Where("username = ? AND speaker = ?", username, speaker).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) SaveAudioOrder(ctx context.Context, username, speaker string, order []string) error {
	record := model.UserAudioOrder{
		Username:   username,
		Speaker:    speaker,
		AudioOrder: model.StringList(order),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "username"}, {Name: "speaker"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"audio_order": record.AudioOrder,
				"updated_at":  gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&record).Error
}

func (r *orderRepo) DeleteByUsername(ctx context.Context, username string) error {
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&model.UserSpeakerOrder{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&model.UserAudioOrder{}).Error
}

func (r *orderRepo) CountByUsername(ctx context.Context, username string) (int64, int64, error) {
	var speakerOrders, audioOrders int64
	if err := r.db.WithContext(ctx).
		Model(&model.UserSpeakerOrder{}).
		Where("username = ?", username).
		Count(&speakerOrders).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).
		Model(&model.UserAudioOrder{}).
		Where("username = ?", username).
		Count(&audioOrders).Error; err != nil {
		return 0, 0, err
	}
	return speakerOrders, audioOrders, nil
}
