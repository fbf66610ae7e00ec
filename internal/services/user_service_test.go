package services

import (
	"os"
	"testing"

	apperrors "github.com/Corphon/PromptForge/internal/errors"
	"github.com/Corphon/PromptForge/internal/models"
)

// newTestUserService 创建带临时目录的用户服务
func newTestUserService(t *testing.T) *UserService {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "user_service_test_*")
	if err != nil {
		t.Fatalf("创建临时测试目录失败: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	return NewUserService(tempDir)
}

// TestCreateUser 测试创建用户
func TestCreateUser(t *testing.T) {
	service := newTestUserService(t)

	user, err := service.CreateUser("alice", "alice@example.com")
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	if user.ID == "" {
		t.Error("用户ID不应该为空")
	}

	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Error("用户信息不正确")
	}

	// 新用户应该带默认偏好
	if user.Preferences != models.DefaultUserPreferences() {
		t.Error("新用户应该使用默认偏好设置")
	}

	// 应该可以按ID读回
	loaded, err := service.GetUser(user.ID)
	if err != nil {
		t.Fatalf("读取用户失败: %v", err)
	}
	if loaded.Username != "alice" {
		t.Error("读回的用户信息不一致")
	}
}

// TestCreateUserValidation 测试创建用户的输入校验
func TestCreateUserValidation(t *testing.T) {
	service := newTestUserService(t)

	if _, err := service.CreateUser("", "alice@example.com"); err == nil {
		t.Error("空用户名应该被拒绝")
	}

	if _, err := service.CreateUser("alice", ""); err == nil {
		t.Error("空邮箱应该被拒绝")
	}
}

// TestGetUserNotFound 测试获取不存在的用户
func TestGetUserNotFound(t *testing.T) {
	service := newTestUserService(t)

	_, err := service.GetUser("nonexistent")
	if err == nil {
		t.Fatal("不存在的用户应该返回错误")
	}

	if !apperrors.IsNotFoundError(err) {
		t.Errorf("应该返回未找到错误，实际: %v", err)
	}
}

// TestGetUserByEmail 测试按邮箱查找用户
func TestGetUserByEmail(t *testing.T) {
	service := newTestUserService(t)

	created, err := service.CreateUser("alice", "alice@example.com")
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	// 邮箱匹配不区分大小写
	found, err := service.GetUserByEmail("Alice@Example.COM")
	if err != nil {
		t.Fatalf("按邮箱查找失败: %v", err)
	}

	if found.ID != created.ID {
		t.Error("应该找到同一个用户")
	}

	if _, err := service.GetUserByEmail("missing@example.com"); !apperrors.IsNotFoundError(err) {
		t.Errorf("不存在的邮箱应该返回未找到错误，实际: %v", err)
	}
}

// TestFindOrCreateUser 测试登录入口的查找或创建
func TestFindOrCreateUser(t *testing.T) {
	service := newTestUserService(t)

	// 第一次调用创建用户
	first, err := service.FindOrCreateUser("alice", "alice@example.com")
	if err != nil {
		t.Fatalf("查找或创建用户失败: %v", err)
	}

	// 第二次调用命中同一账号
	second, err := service.FindOrCreateUser("alice", "alice@example.com")
	if err != nil {
		t.Fatalf("查找或创建用户失败: %v", err)
	}

	if first.ID != second.ID {
		t.Error("重复登录应该命中同一账号")
	}

	// 再次登录应该刷新最后登录时间
	if second.LastLogin.Before(first.LastLogin) {
		t.Error("再次登录应该刷新最后登录时间")
	}
}

// TestUpdateUserPreferences 测试更新用户偏好
func TestUpdateUserPreferences(t *testing.T) {
	service := newTestUserService(t)

	user, _ := service.CreateUser("alice", "alice@example.com")

	newPrefs := models.UserPreferences{
		DarkMode:          true,
		AutoSave:          false,
		NotificationLevel: "none",
		DefaultVisibility: "shared",
	}

	if err := service.UpdateUserPreferences(user.ID, newPrefs); err != nil {
		t.Fatalf("更新偏好失败: %v", err)
	}

	loaded, err := service.GetUserPreferences(user.ID)
	if err != nil {
		t.Fatalf("读取偏好失败: %v", err)
	}

	if loaded != newPrefs {
		t.Error("读回的偏好与更新值不一致")
	}
}
