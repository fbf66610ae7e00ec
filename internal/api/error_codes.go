// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"
	ErrorForbidden     = "FORBIDDEN"
	ErrorUnauthorized  = "UNAUTHORIZED"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"

	// 向导会话相关错误
	ErrorWizardSessionNotFound = "WIZARD_SESSION_NOT_FOUND"
	ErrorWizardSessionLimit    = "WIZARD_SESSION_LIMIT"
	ErrorInvalidField          = "INVALID_FIELD"
	ErrorInvalidSection        = "INVALID_SECTION"

	// 提示词相关错误
	ErrorPromptNotFound     = "PROMPT_NOT_FOUND"
	ErrorPromptInvalid      = "PROMPT_INVALID"
	ErrorPromptCreateFailed = "PROMPT_CREATE_FAILED"
	ErrorPromptEmpty        = "PROMPT_EMPTY"

	// 评分相关错误
	ErrorScoreFailed = "SCORE_FAILED"

	// 用户相关错误
	ErrorUserNotFound     = "USER_NOT_FOUND"
	ErrorUserInvalid      = "USER_INVALID"
	ErrorUserCreateFailed = "USER_CREATE_FAILED"

	// 导出相关错误
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"

	// 配置健康相关
	ErrorConfigNotLoaded = "CONFIG_NOT_LOADED"
)
