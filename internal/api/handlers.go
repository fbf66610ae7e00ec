// internal/api/handlers.go
package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Corphon/PromptForge/internal/config"
	"github.com/Corphon/PromptForge/internal/di"
	"github.com/Corphon/PromptForge/internal/models"
	"github.com/Corphon/PromptForge/internal/services"
	"github.com/gin-gonic/gin"
)

// Handler 处理API请求
type Handler struct {
	// 核心服务
	WizardService    *services.WizardService    // 向导会话服务
	GeneratorService *services.GeneratorService // 主提示词生成服务
	ScoreService     *services.ScoreService     // 提示词评分服务
	PromptService    *services.PromptService    // 提示词存储服务
	UserService      *services.UserService      // 用户服务
	StatsService     *services.StatsService     // 统计服务
	WebSocketHandler *WebSocketHandler          // WebSocket 处理器
	Response         *ResponseHelper            // 响应助手
}

// LoginRequest 登录请求结构
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
}

// CreatePromptRequest 保存提示词的请求结构
// 请求体中的提示词正文字段名为 prompt，存储时落在记录的 content 字段
type CreatePromptRequest struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// ScoreRequest 评分请求结构
type ScoreRequest struct {
	Prompt string `json:"prompt"`
}

// UpdateFieldRequest 更新表单字段的请求结构
type UpdateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SetSectionRequest 切换表单分区的请求结构
type SetSectionRequest struct {
	Section *int `json:"section" binding:"required"`
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PaginationMeta 分页元数据
type PaginationMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ---------------------------------------------------------
// NewHandler 创建API处理器
func NewHandler(
	wizardService *services.WizardService,
	generatorService *services.GeneratorService,
	scoreService *services.ScoreService,
	promptService *services.PromptService,
	userService *services.UserService,
	statsService *services.StatsService) *Handler {

	return &Handler{
		WizardService:    wizardService,
		GeneratorService: generatorService,
		ScoreService:     scoreService,
		PromptService:    promptService,
		UserService:      userService,
		StatsService:     statsService,
		WebSocketHandler: NewWebSocketHandler(wizardService, generatorService),
		Response:         NewResponseHelper(),
	}
}

// ---------------------------------------------------------
// 认证相关

// Login 登录（按用户名查找或创建用户并签发令牌）
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}

	// 未提供邮箱时派生稳定的占位邮箱，保证同名用户重复登录命中同一账号
	if req.Email == "" {
		req.Email = strings.ToLower(req.Username) + "@promptforge.local"
	}

	user, err := h.UserService.FindOrCreateUser(req.Username, req.Email)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	token, err := GenerateUserToken(user.ID)
	if err != nil {
		h.Response.InternalError(c, "生成认证令牌失败", err.Error())
		return
	}

	h.Response.Success(c, gin.H{
		"token": token,
		"user":  user,
	}, "登录成功")
}

// Logout 登出（令牌无状态，客户端丢弃即可）
func (h *Handler) Logout(c *gin.Context) {
	h.Response.Success(c, nil, "已登出")
}

// GetCurrentUser 获取当前认证用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, authenticated := GetUserFromContext(c)
	if !authenticated {
		h.Response.Unauthorized(c, "未认证")
		return
	}

	user, err := h.UserService.GetUser(userID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, user)
}

// ---------------------------------------------------------
// 提示词存储

// CreatePrompt 保存一条提示词记录
func (h *Handler) CreatePrompt(c *gin.Context) {
	userID, _ := GetUserFromContext(c)

	// 令牌有效但用户记录已被删除时返回404
	if _, err := h.UserService.GetUser(userID); err != nil {
		h.Response.AppError(c, err)
		return
	}

	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}

	record, err := h.PromptService.CreatePrompt(userID, req.Title, req.Prompt)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.StatsService.RecordPromptSaved()
	h.Response.Created(c, record, "提示词保存成功")
}

// GetRecentPrompts 获取当前用户最近保存的提示词（最新在前，最多20条）
func (h *Handler) GetRecentPrompts(c *gin.Context) {
	userID, _ := GetUserFromContext(c)

	if _, err := h.UserService.GetUser(userID); err != nil {
		h.Response.AppError(c, err)
		return
	}

	prompts, err := h.PromptService.GetRecentPrompts(userID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, prompts, "提示词列表获取成功")
}

// ---------------------------------------------------------
// 评分

// ScorePrompt 对提示词文本进行启发式评分
func (h *Handler) ScorePrompt(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}

	result, err := h.ScoreService.ScorePrompt(req.Prompt)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.StatsService.RecordPromptScored()
	h.Response.Success(c, result, "评分完成")
}

// ---------------------------------------------------------
// 向导会话

// CreateWizardSession 创建新的向导会话
func (h *Handler) CreateWizardSession(c *gin.Context) {
	userID, _ := GetUserFromContext(c)

	session, err := h.WizardService.CreateSession(userID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.StatsService.RecordWizardSession()
	h.Response.Created(c, session, "向导会话创建成功")
}

// GetWizardSession 获取向导会话及其表单状态
func (h *Handler) GetWizardSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := h.WizardService.GetSession(sessionID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, session)
}

// LoadWizardForm 整体载入表单数据（例如恢复历史草稿）
func (h *Handler) LoadWizardForm(c *gin.Context) {
	sessionID := c.Param("session_id")

	var form models.PromptFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}

	updated, err := h.WizardService.LoadFormData(sessionID, form)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, updated, "表单数据载入成功")
}

// UpdateWizardField 更新表单中的单个字段
func (h *Handler) UpdateWizardField(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求参数错误", err.Error())
		return
	}

	updated, err := h.WizardService.UpdateField(sessionID, req.Field, req.Value)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, updated)
}

// SetWizardSection 切换当前表单分区
func (h *Handler) SetWizardSection(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req SetSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Section == nil {
		h.Response.BadRequest(c, "请求参数错误", "缺少 section 字段")
		return
	}

	updated, err := h.WizardService.SetCurrentSection(sessionID, *req.Section)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, updated)
}

// ResetWizardForm 重置表单为初始状态
func (h *Handler) ResetWizardForm(c *gin.Context) {
	sessionID := c.Param("session_id")

	updated, err := h.WizardService.ResetForm(sessionID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, updated, "表单已重置")
}

// GetMasterPrompt 基于当前表单状态生成主提示词
//
// 默认返回JSON；?format=markdown 时作为附件下载
func (h *Handler) GetMasterPrompt(c *gin.Context) {
	sessionID := c.Param("session_id")

	form, err := h.WizardService.GetFormData(sessionID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	masterPrompt := h.GeneratorService.GenerateMasterPrompt(form)
	h.StatsService.RecordMasterPrompt()

	format := c.DefaultQuery("format", "json")
	switch format {
	case "json":
		h.Response.Success(c, gin.H{
			"session_id":    sessionID,
			"prompt_name":   form.PromptName,
			"master_prompt": masterPrompt,
		})
	case "markdown":
		filename := sanitizeFilename(form.PromptName) + ".md"
		h.Response.FileResponse(c, masterPrompt, filename, "text/markdown; charset=utf-8")
	default:
		h.Response.Error(c, http.StatusBadRequest, ErrorExportFormatInvalid,
			"不支持的导出格式: "+format)
	}
}

// sanitizeFilename 清理文件名中的非法字符
func sanitizeFilename(name string) string {
	if name == "" {
		name = models.DefaultPromptName
	}

	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "" {
		cleaned = models.DefaultPromptName
	}

	return cleaned
}

// GetWizardSections 获取向导分区元数据
func (h *Handler) GetWizardSections(c *gin.Context) {
	h.Response.Success(c, models.WizardSections)
}

// ---------------------------------------------------------
// 运行状态

// GetStats 获取使用统计
func (h *Handler) GetStats(c *gin.Context) {
	stats := h.StatsService.GetStats()

	h.Response.Success(c, gin.H{
		"usage":           stats,
		"active_sessions": h.WizardService.SessionCount(),
	})
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		h.Response.Error(c, http.StatusServiceUnavailable, ErrorConfigNotLoaded, "配置未加载")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"debug":     cfg.DebugMode,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ---------------------------------------------------------
// WebSocket

// WizardWebSocket 处理向导会话的 WebSocket 连接
func (h *Handler) WizardWebSocket(c *gin.Context) {
	h.WebSocketHandler.WizardWebSocket(c)
}

// GetWebSocketStatus 获取 WebSocket 连接状态（调试用）
func (h *Handler) GetWebSocketStatus(c *gin.Context) {
	status := wsManager.GetStatus()
	status["ping_timeout_seconds"] = int(wsManager.pingTimeout.Seconds())
	status["timestamp"] = time.Now().Format(time.RFC3339)

	c.JSON(http.StatusOK, status)
}

// CleanupWebSocketConnections 手动触发连接清理
func (h *Handler) CleanupWebSocketConnections(c *gin.Context) {
	wsManager.cleanupExpiredConnections()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "连接清理已执行",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ---------------------------------------------------------
// 服务获取辅助

// getStatsService 从容器按需获取统计服务
func getStatsService() *services.StatsService {
	container := di.GetContainer()
	statsService, ok := container.Get("stats").(*services.StatsService)
	if !ok {
		log.Printf("警告: 无法从容器获取统计服务")
		return nil
	}
	return statsService
}

// formatSessionLabel 生成会话的简短日志标签
func formatSessionLabel(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return fmt.Sprintf("%s…", sessionID[:8])
}
