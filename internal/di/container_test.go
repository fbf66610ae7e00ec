package di

import (
	"testing"
)

// TestRegisterAndGet 测试服务注册与获取
func TestRegisterAndGet(t *testing.T) {
	container := NewContainer()

	type dummy struct{ name string }
	service := &dummy{name: "svc"}

	container.Register("dummy", service)

	got, ok := container.Get("dummy").(*dummy)
	if !ok {
		t.Fatal("获取的服务类型不正确")
	}
	if got != service {
		t.Error("应该返回注册的同一实例")
	}
}

// TestGetMissing 测试获取未注册的服务
func TestGetMissing(t *testing.T) {
	container := NewContainer()

	if container.Get("missing") != nil {
		t.Error("未注册的服务应该返回nil")
	}

	if _, err := container.MustGet("missing"); err == nil {
		t.Error("MustGet应该对未注册的服务返回错误")
	}
}

// TestRegisterOverwrite 测试重复注册覆盖旧实例
func TestRegisterOverwrite(t *testing.T) {
	container := NewContainer()

	container.Register("svc", "first")
	container.Register("svc", "second")

	if container.Get("svc") != "second" {
		t.Error("重复注册应该覆盖旧实例")
	}
}

// TestHasAndRemove 测试服务存在性检查与移除
func TestHasAndRemove(t *testing.T) {
	container := NewContainer()

	container.Register("svc", 1)
	if !container.Has("svc") {
		t.Error("已注册的服务应该存在")
	}

	container.Remove("svc")
	if container.Has("svc") {
		t.Error("移除后服务不应该存在")
	}
}

// TestClearAndGetNames 测试清空与名称列表
func TestClearAndGetNames(t *testing.T) {
	container := NewContainer()

	container.Register("a", 1)
	container.Register("b", 2)

	names := container.GetNames()
	if len(names) != 2 {
		t.Errorf("服务名称数量不正确，期望: 2，实际: %d", len(names))
	}

	container.Clear()
	if len(container.GetNames()) != 0 {
		t.Error("清空后不应该有服务")
	}
}

// TestGetContainerSingleton 测试全局容器单例
func TestGetContainerSingleton(t *testing.T) {
	if GetContainer() != GetContainer() {
		t.Error("全局容器应该是单例")
	}
}
