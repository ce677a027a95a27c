package dto

// SpeakerManifest 目录导入清单中的单个说话人
type SpeakerManifest struct {
	SpeakerID    string   `json:"speaker_id" binding:"required"`
	Duration     float64  `json:"duration"`
	SegmentCount int      `json:"segment_count"`
	AudioFiles   []string `json:"audio_files"`
}

// GroupManifest 目录导入清单中的单个分组
type GroupManifest struct {
	GroupID  int               `json:"group_id" binding:"required"`
	Speakers []SpeakerManifest `json:"speakers" binding:"required,min=1"`
}

// ImportCatalogRequest 目录导入请求：预先分好组的说话人清单
type ImportCatalogRequest struct {
	Groups []GroupManifest `json:"groups" binding:"required,min=1"`
}

// ImportResult 目录导入结果
type ImportResult struct {
	GroupsCreated int `json:"groups_created"`
	SpeakersAdded int `json:"speakers_added"`
	FilesAdded    int `json:"files_added"`
}
