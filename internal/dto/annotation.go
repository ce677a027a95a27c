package dto

// SaveLabelRequest 保存标注请求
// 数值与分类字段均为指针：nil 表示"未设置"，0 是合法的已标注值
type SaveLabelRequest struct {
	AudioFile       string   `json:"audio_file" binding:"required"`
	Speaker         string   `json:"speaker" binding:"required"`
	VValue          *float64 `json:"v_value"`
	AValue          *float64 `json:"a_value"`
	EmotionType     *string  `json:"emotion_type"`
	DiscreteEmotion *string  `json:"discrete_emotion"`
	PatientStatus   *string  `json:"patient_status"`
	AudioDuration   float64  `json:"audio_duration"`
}

// LabelResponse 标注响应
type LabelResponse struct {
	AudioFile        string   `json:"audio_file"`
	Speaker          string   `json:"speaker"`
	Username         string   `json:"username"`
	VValue           *float64 `json:"v_value"`
	AValue           *float64 `json:"a_value"`
	EmotionType      *string  `json:"emotion_type"`
	DiscreteEmotion  *string  `json:"discrete_emotion"`
	PatientStatus    *string  `json:"patient_status"`
	AudioDuration    float64  `json:"audio_duration"`
	PlayCount        int      `json:"play_count"`
	VAComplete       bool     `json:"va_complete"`
	DiscreteComplete bool     `json:"discrete_complete"`
}

// SaveLabelResponse 保存标注响应：返回重算后的完整性与最新进度
type SaveLabelResponse struct {
	Label    LabelResponse `json:"label"`
	Progress *ProgressInfo `json:"progress,omitempty"`
}

// PlayCountRequest 播放计数请求
type PlayCountRequest struct {
	AudioFile string `json:"audio_file" binding:"required"`
	Speaker   string `json:"speaker" binding:"required"`
}

// AudioItem 音频列表条目（按用户个性化顺序返回）
type AudioItem struct {
	FileName         string `json:"file_name"`
	Labeled          bool   `json:"labeled"`
	VAComplete       bool   `json:"va_complete"`
	DiscreteComplete bool   `json:"discrete_complete"`
}

// AudioListResponse 某说话人的音频列表
type AudioListResponse struct {
	Speaker string      `json:"speaker"`
	Items   []AudioItem `json:"items"`
}

// SpeakerListResponse 用户可见的说话人列表（按用户个性化顺序返回）
type SpeakerListResponse struct {
	GroupID  int      `json:"group_id"`
	Speakers []string `json:"speakers"`
}
