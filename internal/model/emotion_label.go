package model

import "gorm.io/gorm"

// 离散情感大类
const (
	EmotionTypeNeutral    = "neutral"
	EmotionTypeNonNeutral = "non-neutral"
)

// EmotionLabel 情感标注表 — 对应 emotion_labels
// 按 (audio_file, speaker, username) 三元组唯一，重复提交时整行覆盖。
// va_complete / discrete_complete 是派生缓存：每次写入前和每次读取后
// 都由 RecomputeCompleteness 重新计算，存储值永远不作为真值来源。
type EmotionLabel struct {
	ID              int64    `gorm:"primaryKey;autoIncrement"                      json:"id"`
	AudioFile       string   `gorm:"type:varchar(255);not null;uniqueIndex:uniq_file_speaker_user" json:"audio_file"`
	Speaker         string   `gorm:"type:varchar(64);not null;uniqueIndex:uniq_file_speaker_user;index" json:"speaker"`
	Username        string   `gorm:"type:varchar(64);not null;uniqueIndex:uniq_file_speaker_user;index" json:"username"`
	VValue          *float64 `gorm:"column:v_value"                                json:"v_value"`
	AValue          *float64 `gorm:"column:a_value"                                json:"a_value"`
	EmotionType     *string  `gorm:"type:varchar(20)"                              json:"emotion_type"`     // neutral | non-neutral
	DiscreteEmotion *string  `gorm:"type:varchar(32)"                              json:"discrete_emotion"` // non-neutral 时的具体子情感
	PatientStatus   *string  `gorm:"type:varchar(32)"                              json:"patient_status"`
	AudioDuration   float64  `gorm:"not null;default:0"                            json:"audio_duration"`
	PlayCount       int      `gorm:"not null;default:0"                            json:"play_count"`
	VAComplete      bool     `gorm:"column:va_complete;not null;default:false"     json:"va_complete"`
	DiscreteComplete bool    `gorm:"not null;default:false"                        json:"discrete_complete"`
	BaseModel
}

// TableName 指定表名
func (EmotionLabel) TableName() string { return "emotion_labels" }

// RecomputeCompleteness 根据当前字段值重新计算两个完整性标志。
// 纯函数、无副作用、幂等；以"字段是否被设置"而非零值判断完整性，
// 因此 v=0.0 / a=0.0 是合法的已标注值。
func (l *EmotionLabel) RecomputeCompleteness() {
	// 1. VA（连续值）完整性：V 与 A 均已设置
	l.VAComplete = l.VValue != nil && l.AValue != nil

	// 2. 离散情感完整性：患者状态与情感大类均已设置，
	//    且 neutral 不要求子情感、non-neutral 要求子情感，均以 VA 完整为前提
	hasSubEmotion := false
	if l.EmotionType != nil {
		switch *l.EmotionType {
		case EmotionTypeNeutral:
			hasSubEmotion = l.VAComplete
		case EmotionTypeNonNeutral:
			hasSubEmotion = l.DiscreteEmotion != nil && l.VAComplete
		}
	}
	l.DiscreteComplete = l.PatientStatus != nil && l.EmotionType != nil && hasSubEmotion
}

// AfterFind GORM 钩子：读取历史记录时重算完整性标志，
// 兼容早期没有这两个标志的旧数据，无需回填迁移。
func (l *EmotionLabel) AfterFind(*gorm.DB) error {
	l.RecomputeCompleteness()
	return nil
}

// BeforeSave GORM 钩子：写入前重算完整性标志，不信任调用方传入的旧值。
func (l *EmotionLabel) BeforeSave(*gorm.DB) error {
	l.RecomputeCompleteness()
	return nil
}
