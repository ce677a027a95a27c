package model

// 用户角色
const (
	RoleAnnotator = "annotator"
	RoleAdmin     = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex"          json:"username"`
	DisplayName  string `gorm:"type:varchar(128);not null;default:''"          json:"display_name"`
	PasswordHash string `gorm:"type:varchar(128);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'annotator'"  json:"role"` // annotator | admin
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
