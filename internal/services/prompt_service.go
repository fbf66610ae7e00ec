// internal/services/prompt_service.go
package services

import (
	"sort"
	"time"

	apperrors "github.com/Corphon/PromptForge/internal/errors"
	"github.com/Corphon/PromptForge/internal/models"
	"github.com/Corphon/PromptForge/internal/storage"
	"github.com/google/uuid"
)

// 每个用户单次查询返回的提示词记录上限
const maxRecentPrompts = 20

// 提示词记录在存储中的子目录
const promptsDir = "prompts"

// PromptService 处理提示词记录的持久化
// 记录按用户分文件存放（prompts/<user_id>.json），
// 归创建者独有，已创建的记录不会被修改或删除
type PromptService struct {
	Storage *storage.FileStorage
}

// NewPromptService 创建提示词持久化服务
func NewPromptService(fileStorage *storage.FileStorage) *PromptService {
	return &PromptService{
		Storage: fileStorage,
	}
}

// CreatePrompt 为用户创建一条提示词记录
// 标题与内容都必须非空，新记录始终以草稿状态创建
func (s *PromptService) CreatePrompt(userID, title, content string) (*models.StoredPrompt, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("用户ID不能为空", nil)
	}
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("标题和内容不能为空", nil)
	}

	prompts, err := s.loadUserPrompts(userID)
	if err != nil {
		return nil, apperrors.NewProcessingError("读取用户提示词记录失败", err)
	}

	record := models.StoredPrompt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Status:    models.PromptStatusDraft,
		CreatedAt: time.Now(),
	}

	prompts = append(prompts, record)

	if err := s.Storage.SaveJSONFile(promptsDir, userID+".json", prompts); err != nil {
		return nil, apperrors.NewProcessingError("保存提示词记录失败", err)
	}

	return &record, nil
}

// GetRecentPrompts 获取用户最近的提示词记录
// 按创建时间倒序排列，最多返回20条，只包含该用户自己的记录
func (s *PromptService) GetRecentPrompts(userID string) ([]models.StoredPrompt, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("用户ID不能为空", nil)
	}

	prompts, err := s.loadUserPrompts(userID)
	if err != nil {
		return nil, apperrors.NewProcessingError("读取用户提示词记录失败", err)
	}

	sort.SliceStable(prompts, func(i, j int) bool {
		return prompts[i].CreatedAt.After(prompts[j].CreatedAt)
	})

	if len(prompts) > maxRecentPrompts {
		prompts = prompts[:maxRecentPrompts]
	}

	if prompts == nil {
		prompts = []models.StoredPrompt{}
	}

	return prompts, nil
}

// CountPrompts 统计用户的提示词记录总数
func (s *PromptService) CountPrompts(userID string) (int, error) {
	prompts, err := s.loadUserPrompts(userID)
	if err != nil {
		return 0, err
	}
	return len(prompts), nil
}

// loadUserPrompts 读取用户的全部提示词记录，文件不存在视为空列表
func (s *PromptService) loadUserPrompts(userID string) ([]models.StoredPrompt, error) {
	if !s.Storage.FileExists(promptsDir, userID+".json") {
		return nil, nil
	}

	var prompts []models.StoredPrompt
	if err := s.Storage.LoadJSONFile(promptsDir, userID+".json", &prompts); err != nil {
		return nil, err
	}

	return prompts, nil
}
