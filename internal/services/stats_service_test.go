package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestStatsService 创建带临时目录的统计服务
func newTestStatsService(t *testing.T) *StatsService {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "stats_service_test_*")
	if err != nil {
		t.Fatalf("创建临时测试目录失败: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	service := NewStatsService(tempDir)
	t.Cleanup(service.Stop)

	return service
}

// TestRecordCounters 测试各计数器的累加
func TestRecordCounters(t *testing.T) {
	service := newTestStatsService(t)

	service.RecordWizardSession()
	service.RecordWizardSession()
	service.RecordMasterPrompt()
	service.RecordPromptSaved()
	service.RecordPromptScored()
	service.RecordPromptScored()
	service.RecordPromptScored()

	stats := service.GetStats()

	if stats.WizardSessionsCreated != 2 {
		t.Errorf("向导会话计数不正确，期望: 2，实际: %d", stats.WizardSessionsCreated)
	}
	if stats.MasterPromptsGenerated != 1 {
		t.Errorf("主提示词计数不正确，期望: 1，实际: %d", stats.MasterPromptsGenerated)
	}
	if stats.PromptsSaved != 1 {
		t.Errorf("保存计数不正确，期望: 1，实际: %d", stats.PromptsSaved)
	}
	if stats.PromptsScored != 3 {
		t.Errorf("评分计数不正确，期望: 3，实际: %d", stats.PromptsScored)
	}

	// 当日统计应该累计全部7次操作
	today := time.Now().Format("2006-01-02")
	if stats.DailyStats[today] != 7 {
		t.Errorf("当日统计不正确，期望: 7，实际: %d", stats.DailyStats[today])
	}
}

// TestStatsFlushAndReload 测试落盘后重新加载
func TestStatsFlushAndReload(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "stats_service_test_*")
	if err != nil {
		t.Fatalf("创建临时测试目录失败: %v", err)
	}
	defer os.RemoveAll(tempDir)

	service := NewStatsService(tempDir)
	service.RecordWizardSession()
	service.RecordPromptSaved()

	if err := service.Flush(); err != nil {
		t.Fatalf("落盘失败: %v", err)
	}
	service.Stop()

	// 统计文件应该已写入
	if _, err := os.Stat(filepath.Join(tempDir, "usage_stats.json")); os.IsNotExist(err) {
		t.Fatal("统计文件应该已被创建")
	}

	// 新实例应该加载已保存的数据
	reloaded := NewStatsService(tempDir)
	defer reloaded.Stop()

	stats := reloaded.GetStats()
	if stats.WizardSessionsCreated != 1 || stats.PromptsSaved != 1 {
		t.Error("重新加载的统计数据与保存时不一致")
	}
}

// TestGetStatsReturnsCopy 测试返回的统计是独立副本
func TestGetStatsReturnsCopy(t *testing.T) {
	service := newTestStatsService(t)

	service.RecordWizardSession()

	stats := service.GetStats()
	today := time.Now().Format("2006-01-02")
	stats.DailyStats[today] = 999

	fresh := service.GetStats()
	if fresh.DailyStats[today] == 999 {
		t.Error("GetStats应该返回独立副本")
	}
}
