// internal/services/stats_service.go
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// UsageStats 表示应用使用统计
type UsageStats struct {
	WizardSessionsCreated  int            `json:"wizard_sessions_created"`
	MasterPromptsGenerated int            `json:"master_prompts_generated"`
	PromptsSaved           int            `json:"prompts_saved"`
	PromptsScored          int            `json:"prompts_scored"`
	DailyStats             map[string]int `json:"daily_stats"`
	LastUpdated            time.Time      `json:"last_updated"`
}

// StatsService 提供应用使用统计功能
type StatsService struct {
	BasePath    string      // 统计数据存储路径
	statsFile   string      // 统计文件名
	mutex       sync.Mutex  // 用于数据访问的互斥锁
	cachedStats *UsageStats // 缓存的统计数据

	// 批量保存控制
	isDirty      bool
	lastSaveTime time.Time
	saveInterval time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewStatsService 创建统计服务实例
func NewStatsService(basePath string) *StatsService {
	if basePath == "" {
		basePath = "data/stats"
	}

	// 确保统计数据目录存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		fmt.Printf("警告: 创建统计数据目录失败: %v\n", err)
	}

	service := &StatsService{
		BasePath:     basePath,
		statsFile:    filepath.Join(basePath, "usage_stats.json"),
		saveInterval: 30 * time.Second,
		stopChan:     make(chan struct{}),
	}

	service.startPeriodicSave()

	return service
}

// RecordWizardSession 记录一次向导会话创建
func (s *StatsService) RecordWizardSession() {
	s.increment(func(stats *UsageStats) { stats.WizardSessionsCreated++ })
}

// RecordMasterPrompt 记录一次主提示词汇编
func (s *StatsService) RecordMasterPrompt() {
	s.increment(func(stats *UsageStats) { stats.MasterPromptsGenerated++ })
}

// RecordPromptSaved 记录一次提示词保存
func (s *StatsService) RecordPromptSaved() {
	s.increment(func(stats *UsageStats) { stats.PromptsSaved++ })
}

// RecordPromptScored 记录一次提示词评分
func (s *StatsService) RecordPromptScored() {
	s.increment(func(stats *UsageStats) { stats.PromptsScored++ })
}

// GetStats 返回当前统计数据的副本
func (s *StatsService) GetStats() UsageStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureStatsUnlocked()

	statsCopy := *s.cachedStats
	statsCopy.DailyStats = make(map[string]int, len(s.cachedStats.DailyStats))
	for k, v := range s.cachedStats.DailyStats {
		statsCopy.DailyStats[k] = v
	}

	return statsCopy
}

// Flush 立即把统计数据写入磁盘
func (s *StatsService) Flush() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cachedStats == nil || !s.isDirty {
		return nil
	}

	if err := s.saveStatsUnlocked(); err != nil {
		return err
	}

	s.isDirty = false
	s.lastSaveTime = time.Now()
	return nil
}

// Stop 停止后台保存协程并落盘
func (s *StatsService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	if err := s.Flush(); err != nil {
		fmt.Printf("警告: 停止时保存统计数据失败: %v\n", err)
	}
}

// increment 应用一次计数变更并更新当日统计
func (s *StatsService) increment(apply func(stats *UsageStats)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureStatsUnlocked()

	apply(s.cachedStats)

	today := time.Now().Format("2006-01-02")
	s.cachedStats.DailyStats[today]++
	s.cachedStats.LastUpdated = time.Now()
	s.isDirty = true
}

// ensureStatsUnlocked 初始化统计数据（无锁版本，调用方必须持有锁）
func (s *StatsService) ensureStatsUnlocked() {
	if s.cachedStats != nil {
		return
	}

	// 尝试加载已有数据
	if data, err := os.ReadFile(s.statsFile); err == nil {
		var loaded UsageStats
		if json.Unmarshal(data, &loaded) == nil {
			if loaded.DailyStats == nil {
				loaded.DailyStats = make(map[string]int)
			}
			s.cachedStats = &loaded
			return
		}
	}

	// 加载失败或文件不存在，创建新的统计数据
	s.cachedStats = &UsageStats{
		DailyStats:  make(map[string]int),
		LastUpdated: time.Now(),
	}
}

// saveStatsUnlocked 保存统计数据（调用方必须持有锁）
func (s *StatsService) saveStatsUnlocked() error {
	data, err := json.MarshalIndent(s.cachedStats, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化统计数据失败: %w", err)
	}

	if err := os.WriteFile(s.statsFile, data, 0644); err != nil {
		return fmt.Errorf("保存统计数据失败: %w", err)
	}

	return nil
}

// startPeriodicSave 启动定期落盘协程
func (s *StatsService) startPeriodicSave() {
	go func() {
		ticker := time.NewTicker(s.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Flush(); err != nil {
					fmt.Printf("警告: 定期保存统计数据失败: %v\n", err)
				}
			case <-s.stopChan:
				return
			}
		}
	}()
}
