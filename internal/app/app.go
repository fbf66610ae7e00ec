// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Corphon/PromptForge/internal/api"
	"github.com/Corphon/PromptForge/internal/config"
	"github.com/Corphon/PromptForge/internal/di"
	"github.com/Corphon/PromptForge/internal/services"
	"github.com/Corphon/PromptForge/internal/storage"
	"github.com/Corphon/PromptForge/internal/utils"
)

// Server 抽象HTTP服务器，便于测试中替换
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App 应用程序实例
type App struct {
	config   *config.AppConfig
	router   http.Handler
	server   Server
	stopChan chan os.Signal
}

// 全局应用实例
var instance *App

// GetApp 获取应用单例
func GetApp() *App {
	if instance == nil {
		instance = &App{
			stopChan: make(chan os.Signal, 1),
		}
	}
	return instance
}

// Initialize 初始化应用：配置、日志、服务和路由
func Initialize(dataDir string) error {
	// 加载配置
	if err := config.InitConfig(dataDir); err != nil {
		return fmt.Errorf("初始化配置失败: %w", err)
	}

	cfg := config.GetCurrentConfig()
	GetApp().config = cfg

	// 初始化日志系统
	if err := initLogger(cfg.LogDir); err != nil {
		return fmt.Errorf("初始化日志系统失败: %w", err)
	}

	// 初始化服务
	if err := InitServices(); err != nil {
		return fmt.Errorf("初始化服务失败: %w", err)
	}

	// 配置路由
	router, err := api.SetupRouter()
	if err != nil {
		return fmt.Errorf("配置路由失败: %w", err)
	}
	GetApp().router = router

	return nil
}

// InitServices 初始化所有服务并注册到DI容器
//
// 注册顺序遵循依赖方向：存储先于依赖存储的服务
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	// 文件存储（提示词记录的持久层）
	fileStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("初始化文件存储失败: %w", err)
	}
	container.Register("storage", fileStorage)

	// 无状态服务
	container.Register("generator", services.NewGeneratorService())
	container.Register("score", services.NewScoreService())

	// 向导会话服务
	wizardService := services.NewWizardService(cfg.WizardSessionTTL(), cfg.MaxWizardSessions)
	container.Register("wizard", wizardService)

	// 提示词存储服务
	container.Register("prompt", services.NewPromptService(fileStorage))

	// 用户服务
	container.Register("user", services.NewUserService(filepath.Join(cfg.DataDir, "users")))

	// 统计服务
	container.Register("stats", services.NewStatsService(filepath.Join(cfg.DataDir, "stats")))

	log.Printf("✅ 服务初始化完成: %v", container.GetNames())
	return nil
}

// Run 启动HTTP服务器并等待停止信号
func Run() error {
	app := GetApp()

	if app.server == nil {
		if app.config == nil {
			return fmt.Errorf("应用未初始化")
		}
		app.server = &http.Server{
			Addr:    ":" + app.config.Port,
			Handler: app.router,
		}
	}

	// 注册系统信号
	signal.Notify(app.stopChan, syscall.SIGINT, syscall.SIGTERM)

	// 启动服务器
	errChan := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	if app.config != nil {
		log.Printf("🚀 服务器已启动，监听端口 %s", app.config.Port)
	}

	// 等待停止信号或服务器错误
	select {
	case err := <-errChan:
		return fmt.Errorf("服务器运行失败: %w", err)
	case sig := <-app.stopChan:
		log.Printf("🛑 收到信号 %v，正在关闭服务器...", sig)
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}

	app.cleanup()

	log.Println("✅ 服务器已关闭")
	return nil
}

// Cleanup 释放服务资源（供入口程序在关闭时调用）
func Cleanup() {
	GetApp().cleanup()
}

// cleanup 释放服务持有的资源
func (a *App) cleanup() {
	container := di.GetContainer()

	// 停止向导会话清理协程
	if wizardService, ok := container.Get("wizard").(*services.WizardService); ok && wizardService != nil {
		wizardService.Stop()
	}

	// 落盘统计数据
	if statsService, ok := container.Get("stats").(*services.StatsService); ok && statsService != nil {
		statsService.Stop()
	}

	// 关闭 WebSocket 连接
	api.ShutdownWebSocketManager()

	log.Println("🧹 资源清理完成")
}

// initLogger 初始化日志系统（日志文件按天命名）
func initLogger(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02")))
	if err := utils.InitLogger(logFile); err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}

	utils.GetLogger().Infof("日志系统已初始化: %s", logFile)
	return nil
}

// GetConfig 获取应用配置
func (a *App) GetConfig() *config.AppConfig {
	return a.config
}

// GetDIContainer 获取依赖注入容器
func GetDIContainer() *di.Container {
	return di.GetContainer()
}

// IsDebugMode 检查是否处于调试模式
func IsDebugMode() bool {
	if instance == nil || instance.config == nil {
		return false
	}
	return instance.config.DebugMode
}
