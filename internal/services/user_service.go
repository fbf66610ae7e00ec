// internal/services/user_service.go
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/Corphon/PromptForge/internal/errors"
	"github.com/Corphon/PromptForge/internal/models"
	"github.com/google/uuid"
)

// UserService 处理用户相关的业务逻辑
type UserService struct {
	BasePath string
}

// NewUserService 创建用户服务
func NewUserService(basePath string) *UserService {
	if basePath == "" {
		basePath = "data/users"
	}

	// 确保用户数据目录存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		fmt.Printf("警告: 创建用户数据目录失败: %v\n", err)
	}

	return &UserService{
		BasePath: basePath,
	}
}

// GetUser 获取用户信息
func (s *UserService) GetUser(userID string) (*models.User, error) {
	userPath := filepath.Join(s.BasePath, userID+".json")

	// 检查用户文件是否存在
	if _, err := os.Stat(userPath); os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError("用户不存在: "+userID, nil)
	}

	userDataBytes, err := os.ReadFile(userPath)
	if err != nil {
		return nil, fmt.Errorf("读取用户数据失败: %w", err)
	}

	var userData models.User
	if err := json.Unmarshal(userDataBytes, &userData); err != nil {
		return nil, fmt.Errorf("解析用户数据失败: %w", err)
	}

	return &userData, nil
}

// GetUserByEmail 按邮箱查找用户
// 文件存储没有二级索引，逐个扫描用户文件，规模与单机使用场景匹配
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	if email == "" {
		return nil, apperrors.NewValidationError("邮箱不能为空", nil)
	}

	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("用户不存在: "+email, nil)
		}
		return nil, fmt.Errorf("读取用户目录失败: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		userID := strings.TrimSuffix(entry.Name(), ".json")
		user, err := s.GetUser(userID)
		if err != nil {
			continue
		}

		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}

	return nil, apperrors.NewNotFoundError("用户不存在: "+email, nil)
}

// CreateUser 创建新用户
func (s *UserService) CreateUser(username string, email string) (*models.User, error) {
	if username == "" || email == "" {
		return nil, apperrors.NewValidationError("用户名和邮箱不能为空", nil)
	}

	now := time.Now()

	user := &models.User{
		ID:          "user_" + uuid.NewString(),
		Username:    username,
		Email:       email,
		CreatedAt:   now,
		LastLogin:   now,
		LastUpdated: now,
		Preferences: models.DefaultUserPreferences(),
	}

	if err := s.SaveUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

// FindOrCreateUser 按邮箱查找用户，不存在则创建（登录入口使用）
func (s *UserService) FindOrCreateUser(username, email string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err == nil {
		user.LastLogin = time.Now()
		if err := s.SaveUser(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if !apperrors.IsNotFoundError(err) {
		return nil, err
	}

	return s.CreateUser(username, email)
}

// SaveUser 保存用户信息
func (s *UserService) SaveUser(user *models.User) error {
	user.LastUpdated = time.Now()

	userDataJSON, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化用户数据失败: %w", err)
	}

	userPath := filepath.Join(s.BasePath, user.ID+".json")
	if err := os.WriteFile(userPath, userDataJSON, 0644); err != nil {
		return fmt.Errorf("保存用户数据失败: %w", err)
	}

	return nil
}

// UpdateUserPreferences 更新用户偏好设置
func (s *UserService) UpdateUserPreferences(userID string, preferences models.UserPreferences) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	user.Preferences = preferences

	return s.SaveUser(user)
}

// GetUserPreferences 获取用户偏好设置
func (s *UserService) GetUserPreferences(userID string) (models.UserPreferences, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return models.UserPreferences{}, err
	}

	return user.Preferences, nil
}
