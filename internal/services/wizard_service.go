// internal/services/wizard_service.go
package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	apperrors "github.com/Corphon/PromptForge/internal/errors"
	"github.com/Corphon/PromptForge/internal/models"
	"github.com/google/uuid"
)

// WizardService 持有所有向导会话的表单状态
// 每个会话独占一份 PromptFormData，会话之间无共享，
// 所有变更操作都通过本服务串行化到会话级别
type WizardService struct {
	sessions    map[string]*models.WizardSession
	mutex       sync.RWMutex
	sessionTTL  time.Duration
	maxSessions int

	stopChan    chan struct{}
	stopOnce    sync.Once
	sweepTicker *time.Ticker
}

// NewWizardService 创建向导会话服务并启动过期会话清理
func NewWizardService(sessionTTL time.Duration, maxSessions int) *WizardService {
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}
	if maxSessions <= 0 {
		maxSessions = 1000
	}

	service := &WizardService{
		sessions:    make(map[string]*models.WizardSession),
		sessionTTL:  sessionTTL,
		maxSessions: maxSessions,
		stopChan:    make(chan struct{}),
	}

	service.startCleanup()

	return service
}

// CreateSession 创建新的向导会话，表单为全空默认状态
func (s *WizardService) CreateSession(userID string) (models.WizardSession, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return models.WizardSession{}, apperrors.NewAppError(apperrors.ErrorTypeConflict,
			"向导会话数量已达上限", fmt.Errorf("max sessions: %d", s.maxSessions))
	}

	now := time.Now()
	session := &models.WizardSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		Form:       models.NewPromptFormData(),
		CreatedAt:  now,
		LastActive: now,
	}

	s.sessions[session.ID] = session

	return *session, nil
}

// GetSession 获取会话快照
func (s *WizardService) GetSession(sessionID string) (models.WizardSession, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return models.WizardSession{}, apperrors.NewNotFoundError("向导会话不存在: "+sessionID, nil)
	}

	return *session, nil
}

// GetFormData 获取会话当前表单的快照（汇编器的唯一输入）
func (s *WizardService) GetFormData(sessionID string) (models.PromptFormData, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return models.PromptFormData{}, err
	}
	return session.Form, nil
}

// UpdateField 设置单个命名字段的值，不做长度限制，原样保存
func (s *WizardService) UpdateField(sessionID, field, value string) (models.PromptFormData, error) {
	return s.mutate(sessionID, func(form *models.PromptFormData) error {
		return setFormField(form, field, value)
	})
}

// SetCurrentSection 移动分区游标
// 游标越界是调用方缺陷，这里显式拒绝而不是依赖调用方自律
func (s *WizardService) SetCurrentSection(sessionID string, index int) (models.PromptFormData, error) {
	return s.mutate(sessionID, func(form *models.PromptFormData) error {
		if index < 0 || index >= models.SectionCount {
			return apperrors.NewValidationError(
				fmt.Sprintf("分区索引越界: %d (有效范围 0-%d)", index, models.SectionCount-1), nil)
		}
		form.CurrentSection = index
		return nil
	})
}

// ResetForm 恢复表单到初始默认状态
func (s *WizardService) ResetForm(sessionID string) (models.PromptFormData, error) {
	return s.mutate(sessionID, func(form *models.PromptFormData) error {
		*form = models.NewPromptFormData()
		return nil
	})
}

// LoadFormData 用给定记录整体替换表单状态（用于恢复已保存的草稿）
// 不做字段内容校验，但分区游标会被收敛到有效范围
func (s *WizardService) LoadFormData(sessionID string, data models.PromptFormData) (models.PromptFormData, error) {
	return s.mutate(sessionID, func(form *models.PromptFormData) error {
		if data.CurrentSection < 0 {
			data.CurrentSection = 0
		}
		if data.CurrentSection >= models.SectionCount {
			data.CurrentSection = models.SectionCount - 1
		}
		if data.PromptName == "" {
			data.PromptName = models.DefaultPromptName
		}
		*form = data
		return nil
	})
}

// RemoveSession 删除会话
func (s *WizardService) RemoveSession(sessionID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, sessionID)
}

// SessionCount 返回当前活跃会话数量
func (s *WizardService) SessionCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.sessions)
}

// Stop 停止后台清理协程
func (s *WizardService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// mutate 在会话锁内执行一次表单变更并刷新活跃时间
func (s *WizardService) mutate(sessionID string, fn func(form *models.PromptFormData) error) (models.PromptFormData, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return models.PromptFormData{}, apperrors.NewNotFoundError("向导会话不存在: "+sessionID, nil)
	}

	if err := fn(&session.Form); err != nil {
		return models.PromptFormData{}, err
	}

	session.LastActive = time.Now()

	return session.Form, nil
}

// setFormField 按字段名写入表单，未知字段名返回验证错误
func setFormField(form *models.PromptFormData, field, value string) error {
	switch field {
	case "application_title":
		form.ApplicationTitle = value
	case "purpose":
		form.Purpose = value
	case "high_level_description":
		form.HighLevelDescription = value
	case "look_and_feel":
		form.LookAndFeel = value
	case "color_scheme":
		form.ColorScheme = value
	case "ui_elements":
		form.UIElements = value
	case "user_flows":
		form.UserFlows = value
	case "user_inputs":
		form.UserInputs = value
	case "input_examples":
		form.InputExamples = value
	case "actions":
		form.Actions = value
	case "data_processing":
		form.DataProcessing = value
	case "prompt_name":
		form.PromptName = value
	default:
		return apperrors.NewValidationError("未知的表单字段: "+field, nil)
	}
	return nil
}

// startCleanup 启动定期清理过期会话的协程
func (s *WizardService) startCleanup() {
	s.sweepTicker = time.NewTicker(5 * time.Minute)

	go func() {
		defer s.sweepTicker.Stop()

		for {
			select {
			case <-s.sweepTicker.C:
				s.cleanupExpiredSessions()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// cleanupExpiredSessions 清理超过空闲有效期的会话
func (s *WizardService) cleanupExpiredSessions() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.LastActive) > s.sessionTTL {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("🧹 已清理 %d 个过期向导会话，剩余 %d 个", removed, len(s.sessions))
	}
}
