package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/Corphon/PromptForge/internal/config"
	"github.com/Corphon/PromptForge/internal/di"
	"github.com/Corphon/PromptForge/internal/services"
)

// mockServer 模拟HTTP服务器，用于测试启动和关闭流程
type mockServer struct {
	listenCalled   bool
	shutdownCalled bool
	listenErr      error
	blockChan      chan struct{}
}

func (m *mockServer) ListenAndServe() error {
	m.listenCalled = true
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.blockChan
	return nil
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.shutdownCalled = true
	close(m.blockChan)
	return nil
}

// setupTestApp 准备临时数据目录和配置
func setupTestApp(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "app_test_*")
	if err != nil {
		t.Fatalf("创建临时测试目录失败: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	dataDir := filepath.Join(tempDir, "data")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("LOG_DIR", filepath.Join(tempDir, "logs"))
	t.Setenv("DEBUG_MODE", "true")

	if err := config.InitConfig(dataDir); err != nil {
		t.Fatalf("初始化配置失败: %v", err)
	}

	return dataDir
}

// TestGetAppSingleton 测试应用单例
func TestGetAppSingleton(t *testing.T) {
	app1 := GetApp()
	app2 := GetApp()

	if app1 != app2 {
		t.Error("GetApp应该返回同一实例")
	}
	if app1.stopChan == nil {
		t.Error("停止信号通道不应该为空")
	}
}

// TestInitServices 测试服务注册
func TestInitServices(t *testing.T) {
	setupTestApp(t)

	if err := InitServices(); err != nil {
		t.Fatalf("初始化服务失败: %v", err)
	}

	container := di.GetContainer()
	required := []string{"storage", "generator", "score", "wizard", "prompt", "user", "stats"}
	for _, name := range required {
		if !container.Has(name) {
			t.Errorf("服务未注册: %s", name)
		}
	}

	// 停止后台协程
	if wizardService, ok := container.Get("wizard").(*services.WizardService); ok {
		t.Cleanup(wizardService.Stop)
	}
	if statsService, ok := container.Get("stats").(*services.StatsService); ok {
		t.Cleanup(statsService.Stop)
	}
}

// TestRunGracefulShutdown 测试收到信号后的优雅关闭
func TestRunGracefulShutdown(t *testing.T) {
	setupTestApp(t)

	app := GetApp()
	app.config = config.GetCurrentConfig()

	server := &mockServer{blockChan: make(chan struct{})}
	app.server = server
	t.Cleanup(func() {
		app.server = nil
	})

	done := make(chan error, 1)
	go func() {
		done <- Run()
	}()

	// 等待服务器启动后发送停止信号
	time.Sleep(50 * time.Millisecond)
	app.stopChan <- syscall.SIGTERM

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("优雅关闭不应该返回错误: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("优雅关闭超时")
	}

	if !server.listenCalled {
		t.Error("服务器应该已启动")
	}
	if !server.shutdownCalled {
		t.Error("服务器应该已关闭")
	}
}

// TestRunServerError 测试服务器启动失败时返回错误
func TestRunServerError(t *testing.T) {
	setupTestApp(t)

	app := GetApp()
	app.config = config.GetCurrentConfig()
	app.server = &mockServer{
		blockChan: make(chan struct{}),
		listenErr: fmt.Errorf("端口被占用"),
	}
	t.Cleanup(func() {
		app.server = nil
	})

	if err := Run(); err == nil {
		t.Error("服务器启动失败应该返回错误")
	}
}

// TestCleanup 测试资源清理
func TestCleanup(t *testing.T) {
	dataDir := setupTestApp(t)

	container := di.GetContainer()
	wizardService := services.NewWizardService(time.Hour, 10)
	statsService := services.NewStatsService(filepath.Join(dataDir, "stats"))
	container.Register("wizard", wizardService)
	container.Register("stats", statsService)

	// 重复调用应该安全
	Cleanup()
	Cleanup()
}

// TestInitLogger 测试日志文件按天创建
func TestInitLogger(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "app_logger_test_*")
	if err != nil {
		t.Fatalf("创建临时测试目录失败: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	logDir := filepath.Join(tempDir, "logs")
	if err := initLogger(logDir); err != nil {
		t.Fatalf("初始化日志系统失败: %v", err)
	}

	expected := filepath.Join(logDir,
		fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02")))
	if _, err := os.Stat(expected); os.IsNotExist(err) {
		t.Errorf("日志文件应该已创建: %s", expected)
	}
}

// TestIsDebugMode 测试调试模式判断
func TestIsDebugMode(t *testing.T) {
	setupTestApp(t)

	app := GetApp()
	app.config = config.GetCurrentConfig()

	if !IsDebugMode() {
		t.Error("测试环境应该处于调试模式")
	}

	app.config.DebugMode = false
	if IsDebugMode() {
		t.Error("关闭调试模式后应该返回false")
	}
	app.config.DebugMode = true
}

// TestGetDIContainer 测试容器获取
func TestGetDIContainer(t *testing.T) {
	if GetDIContainer() != di.GetContainer() {
		t.Error("应该返回全局依赖注入容器")
	}
}
