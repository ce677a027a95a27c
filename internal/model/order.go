package model

// UserSpeakerOrder 用户说话人排序表 — 对应 user_speaker_orders
// 每个用户一行；排序列表只追加、不重排、不收缩。
// 目录中已消失的说话人在读取时被跳过，而非从列表中删除。
type UserSpeakerOrder struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"              json:"id"`
	Username     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	SpeakerOrder StringList `gorm:"type:jsonb;not null"                   json:"speaker_order"`
	BaseModel
}

// TableName 指定表名
func (UserSpeakerOrder) TableName() string { return "user_speaker_orders" }

// UserAudioOrder 用户音频文件排序表 — 对应 user_audio_orders
// 每个 (用户, 说话人) 一行，语义与 UserSpeakerOrder 相同。
type UserAudioOrder struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"                                 json:"id"`
	Username   string     `gorm:"type:varchar(64);not null;uniqueIndex:uniq_user_speaker"  json:"username"`
	Speaker    string     `gorm:"type:varchar(64);not null;uniqueIndex:uniq_user_speaker"  json:"speaker"`
	AudioOrder StringList `gorm:"type:jsonb;not null"                                      json:"audio_order"`
	BaseModel
}

// TableName 指定表名
func (UserAudioOrder) TableName() string { return "user_audio_orders" }
