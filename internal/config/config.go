// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port      string `json:"port"`
	DataDir   string `json:"data_dir"`
	LogDir    string `json:"log_dir"`
	DebugMode bool   `json:"debug_mode"`

	// 认证相关配置
	AuthSecret      string `json:"auth_secret,omitempty"`
	TokenExpiryHour int    `json:"token_expiry_hour"`

	// 向导会话相关配置
	WizardSessionTTLMinute int `json:"wizard_session_ttl_minute"`
	MaxWizardSessions      int `json:"max_wizard_sessions"`
}

// Config 存储应用配置
type Config struct {
	Port       string
	DataDir    string
	LogDir     string
	DebugMode  bool
	AuthSecret string
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:       getEnv("PORT", "8080"),
		DataDir:    getEnvPath("DATA_DIR", "data"),
		LogDir:     getEnvPath("LOG_DIR", "logs"),
		DebugMode:  getEnvBool("DEBUG_MODE", true),
		AuthSecret: getEnv("AUTH_SECRET_KEY", ""),
	}

	if config.AuthSecret == "" {
		// 只记录警告，不返回错误，认证初始化时会生成随机密钥
		log.Println("警告: 未设置 AUTH_SECRET_KEY，进程重启后已签发的会话令牌将失效")
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0755)
		if err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// InitConfig 初始化配置管理器
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	// 加载基础配置
	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:                   baseConfig.Port,
		DataDir:                baseConfig.DataDir,
		LogDir:                 baseConfig.LogDir,
		DebugMode:              baseConfig.DebugMode,
		AuthSecret:             baseConfig.AuthSecret,
		TokenExpiryHour:        24,
		WizardSessionTTLMinute: 120,
		MaxWizardSessions:      1000,
	}

	// 尝试从文件加载已保存的配置
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// 合并配置：保留文件中的调优项，但使用最新的基础配置
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode

				// 环境变量中的密钥优先于文件中的
				if baseConfig.AuthSecret != "" {
					savedConfig.AuthSecret = baseConfig.AuthSecret
				}

				if savedConfig.TokenExpiryHour <= 0 {
					savedConfig.TokenExpiryHour = 24
				}
				if savedConfig.WizardSessionTTLMinute <= 0 {
					savedConfig.WizardSessionTTLMinute = 120
				}
				if savedConfig.MaxWizardSessions <= 0 {
					savedConfig.MaxWizardSessions = 1000
				}

				currentConfig = &savedConfig
			}
		}
	}

	// 保存初始配置到文件
	return SaveConfig()
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 紧急情况，返回一个基本配置
		baseConfig, _ := Load()
		return &AppConfig{
			Port:                   baseConfig.Port,
			DataDir:                baseConfig.DataDir,
			LogDir:                 baseConfig.LogDir,
			DebugMode:              baseConfig.DebugMode,
			AuthSecret:             baseConfig.AuthSecret,
			TokenExpiryHour:        24,
			WizardSessionTTLMinute: 120,
			MaxWizardSessions:      1000,
		}
	}

	// 返回配置的副本
	configCopy := *currentConfig
	return &configCopy
}

// TokenExpiry 返回会话令牌有效期
func (c *AppConfig) TokenExpiry() time.Duration {
	if c.TokenExpiryHour <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenExpiryHour) * time.Hour
}

// WizardSessionTTL 返回向导会话空闲有效期
func (c *AppConfig) WizardSessionTTL() time.Duration {
	if c.WizardSessionTTLMinute <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.WizardSessionTTLMinute) * time.Minute
}

// UpdateWizardConfig 更新向导会话配置
func UpdateWizardConfig(ttlMinute, maxSessions int) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统未初始化")
	}

	if ttlMinute > 0 {
		currentConfig.WizardSessionTTLMinute = ttlMinute
	}
	if maxSessions > 0 {
		currentConfig.MaxWizardSessions = maxSessions
	}

	return SaveConfig()
}

// SaveConfig 保存当前配置到文件
func SaveConfig() error {
	if currentConfig == nil {
		return fmt.Errorf("没有配置可保存")
	}

	// 确保目录存在
	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}

	// 序列化并保存
	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
