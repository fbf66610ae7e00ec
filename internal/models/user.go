// internal/models/user.go
package models

import "time"

// User 用户信息
type User struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	Avatar      string          `json:"avatar,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	LastLogin   time.Time       `json:"last_login"`
	LastUpdated time.Time       `json:"last_updated"`
	Preferences UserPreferences `json:"preferences"`
	// 可选字段
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// UserPreferences 用户偏好设置
type UserPreferences struct {
	DarkMode          bool   `json:"dark_mode"`                    // 暗色模式
	AutoSave          bool   `json:"auto_save"`                    // 编辑器自动保存
	NotificationLevel string `json:"notification_level"`           // 通知级别: none, important, all
	DefaultVisibility string `json:"default_visibility,omitempty"` // 新建提示词默认可见性: private, shared, public
}

// DefaultUserPreferences 新用户的默认偏好
func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		DarkMode:          false,
		AutoSave:          true,
		NotificationLevel: "important",
		DefaultVisibility: "private",
	}
}
