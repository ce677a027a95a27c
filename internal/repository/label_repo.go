package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
)

// LabelRepository 情感标注数据访问接口
type LabelRepository interface {
	// Upsert 按 (audio_file, speaker, username) 三元组整行覆盖，
	// play_count 保留已有值不被重置
	Upsert(ctx context.Context, label *model.EmotionLabel) error
	Get(ctx context.Context, username, speaker, audioFile string) (*model.EmotionLabel, error)
	ListByUserAndSpeaker(ctx context.Context, username, speaker string) ([]model.EmotionLabel, error)
	ListBySpeakers(ctx context.Context, speakers []string) ([]model.EmotionLabel, error)
	// CountFullyComplete 统计用户在给定说话人集合内两项完整性均满足的标注数
	CountFullyComplete(ctx context.Context, username string, speakers []string) (int64, error)
	IncrementPlayCount(ctx context.Context, username, speaker, audioFile string) error
	GetPlayCount(ctx context.Context, username, speaker, audioFile string) (int, error)
	DeleteByUsername(ctx context.Context, username string) error
}

type labelRepo struct {
	db *gorm.DB
}

// NewLabelRepo 创建 LabelRepository 实例
func NewLabelRepo(db *gorm.DB) LabelRepository {
	return &labelRepo{db: db}
}

func (r *labelRepo) Upsert(ctx context.Context, label *model.EmotionLabel) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "audio_file"}, {Name: "speaker"}, {Name: "username"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"v_value", "a_value", "emotion_type", "discrete_emotion",
				"patient_status", "audio_duration", "va_complete",
				"discrete_complete", "updated_at",
			}),
		}).
		Create(label).Error
}

func (r *labelRepo) Get(ctx context.Context, username, speaker, audioFile string) (*model.EmotionLabel, error) {
	var l model.EmotionLabel
	err := r.db.WithContext(ctx).
		Where("username = ? AND speaker = ? AND audio_file = ?", username, speaker, audioFile).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *labelRepo) ListByUserAndSpeaker(ctx context.Context, username, speaker string) ([]model.EmotionLabel, error) {
	var labels []model.EmotionLabel
	err := r.db.WithContext(ctx).
		Where("username = ? AND speaker = ?", username, speaker).
		Order("audio_file").
		Find(&labels).Error
	return labels, err
}

func (r *labelRepo) ListBySpeakers(ctx context.Context, speakers []string) ([]model.EmotionLabel, error) {
	var labels []model.EmotionLabel
	if len(speakers) == 0 {
		return labels, nil
	}
	err := r.db.WithContext(ctx).
		Where("speaker IN ?", speakers).
		Order("speaker, username, audio_file").
		Find(&labels).Error
	return labels, err
}

func (r *labelRepo) CountFullyComplete(ctx context.Context, username string, speakers []string) (int64, error) {
	var count int64
	if len(speakers) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.EmotionLabel{}).
		Where("username = ? AND speaker IN ? AND va_complete = ? AND discrete_complete = ?",
			username, speakers, true, true).
		Count(&count).Error
	return count, err
}

func (r *labelRepo) IncrementPlayCount(ctx context.Context, username, speaker, audioFile string) error {
	// 标注行尚不存在时先落一行空标注，保证播放计数不丢失
	placeholder := model.EmotionLabel{
		AudioFile: audioFile,
		Speaker:   speaker,
		Username:  username,
		PlayCount: 1,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "audio_file"}, {Name: "speaker"}, {Name: "username"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"play_count": gorm.Expr("emotion_labels.play_count + 1"),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&placeholder).Error
}

func (r *labelRepo) GetPlayCount(ctx context.Context, username, speaker, audioFile string) (int, error) {
	var count int
	err := r.db.WithContext(ctx).
		Model(&model.EmotionLabel{}).
		Where("username = ? AND speaker = ? AND audio_file = ?", username, speaker, audioFile).
		Pluck("play_count", &count).Error
	return count, err
}

func (r *labelRepo) DeleteByUsername(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&model.EmotionLabel{}).Error
}
