// internal/models/prompt.go
package models

import "time"

// PromptStatus 提示词记录的状态
type PromptStatus string

const (
	// 草稿状态，新建记录的默认状态
	PromptStatusDraft PromptStatus = "draft"
	// 已发布
	PromptStatusPublished PromptStatus = "published"
	// 已归档
	PromptStatusArchived PromptStatus = "archived"
)

// StoredPrompt 持久化的用户提示词记录
// 仅归创建它的用户所有，创建后不会被任何已暴露的操作修改或删除
type StoredPrompt struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Status    PromptStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// ScoreResult 提示词质量评分结果（临时对象，不持久化）
type ScoreResult struct {
	Score               float64            `json:"score"`
	Criteria            map[string]float64 `json:"criteria"`
	Suggestions         []string           `json:"suggestions"`
	ClarifyingQuestions []string           `json:"clarifying_questions"`
}
