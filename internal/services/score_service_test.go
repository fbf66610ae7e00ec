package services

import (
	"strings"
	"testing"

	apperrors "github.com/Corphon/PromptForge/internal/errors"
)

// TestScorePromptEmpty 测试空提示词被拒绝
func TestScorePromptEmpty(t *testing.T) {
	service := NewScoreService()

	result, err := service.ScorePrompt("")
	if err == nil {
		t.Fatal("空提示词应该返回错误")
	}

	if result != nil {
		t.Error("出错时不应该返回评分结果")
	}

	if !apperrors.IsValidationError(err) {
		t.Errorf("空提示词应该返回验证错误，实际: %v", err)
	}
}

// TestScorePromptFormula 测试总分的启发式计算
func TestScorePromptFormula(t *testing.T) {
	service := NewScoreService()

	tests := []struct {
		name     string
		prompt   string
		expected float64
	}{
		{
			name:     "单字符基础分",
			prompt:   "a",
			expected: 50, // 50 + 0.01 四舍五入
		},
		{
			name:     "100字符长度加分",
			prompt:   strings.Repeat("a", 100),
			expected: 51,
		},
		{
			name:     "含问号加10分",
			prompt:   "a?",
			expected: 60,
		},
		{
			name:     "含换行加10分",
			prompt:   "a\nb",
			expected: 60,
		},
		{
			name:     "问号和换行都有",
			prompt:   "what?\nhow?",
			expected: 70,
		},
		{
			name:     "超长文本长度加分封顶20",
			prompt:   strings.Repeat("a", 100000),
			expected: 70,
		},
		{
			name:     "全部加分项也到不了满分",
			prompt:   strings.Repeat("a", 100000) + "?\n",
			expected: 90,
		},
		{
			name:     "多字节文本按字符数计长",
			prompt:   strings.Repeat("评", 300), // 900字节但只有300个字符
			expected: 53,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.ScorePrompt(tt.prompt)
			if err != nil {
				t.Fatalf("评分失败: %v", err)
			}

			if result.Score != tt.expected {
				t.Errorf("评分不正确，期望: %v，实际: %v", tt.expected, result.Score)
			}
		})
	}
}

// TestScorePromptCriteria 测试子项分数的取值范围
func TestScorePromptCriteria(t *testing.T) {
	service := NewScoreService()

	result, err := service.ScorePrompt("test prompt")
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}

	expectedKeys := []string{"clarity", "specificity", "structure", "completeness"}
	for _, key := range expectedKeys {
		value, exists := result.Criteria[key]
		if !exists {
			t.Errorf("子项 %s 应该存在", key)
			continue
		}
		if value < 0 || value > 100 {
			t.Errorf("子项 %s 的分数应该在 [0, 100] 范围内，实际: %v", key, value)
		}
	}

	if len(result.Criteria) != len(expectedKeys) {
		t.Errorf("子项数量不正确，期望: %d，实际: %d", len(expectedKeys), len(result.Criteria))
	}
}

// TestScorePromptFixedLists 测试建议和澄清问题是固定列表
func TestScorePromptFixedLists(t *testing.T) {
	service := NewScoreService()

	first, err := service.ScorePrompt("prompt one")
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}

	second, err := service.ScorePrompt("a completely different prompt with more words")
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}

	if len(first.Suggestions) != 3 || len(first.ClarifyingQuestions) != 3 {
		t.Error("建议和澄清问题应该各有3条")
	}

	for i := range first.Suggestions {
		if first.Suggestions[i] != second.Suggestions[i] {
			t.Error("建议列表对任何输入都应该相同")
		}
	}

	for i := range first.ClarifyingQuestions {
		if first.ClarifyingQuestions[i] != second.ClarifyingQuestions[i] {
			t.Error("澄清问题列表对任何输入都应该相同")
		}
	}
}

// TestScorePromptResultIsolation 测试返回的列表是独立副本
func TestScorePromptResultIsolation(t *testing.T) {
	service := NewScoreService()

	first, err := service.ScorePrompt("prompt")
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}

	// 篡改返回的切片不应该影响后续结果
	first.Suggestions[0] = "tampered"

	second, err := service.ScorePrompt("prompt")
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}

	if second.Suggestions[0] == "tampered" {
		t.Error("返回的建议列表应该是独立副本")
	}
}
