package services

import (
	"strings"
	"testing"

	"github.com/Corphon/PromptForge/internal/models"
)

// TestGenerateMasterPromptDeterministic 测试汇编结果的确定性
func TestGenerateMasterPromptDeterministic(t *testing.T) {
	service := NewGeneratorService()

	form := models.NewPromptFormData()
	form.ApplicationTitle = "Todo App"
	form.Purpose = "Track tasks"
	form.UIElements = "- Task list\n- Add button"

	first := service.GenerateMasterPrompt(form)
	second := service.GenerateMasterPrompt(form)

	if first != second {
		t.Fatal("相同表单快照应该产出逐字节相同的主提示词")
	}
}

// TestGenerateMasterPromptFullForm 测试完整表单的汇编顺序
func TestGenerateMasterPromptFullForm(t *testing.T) {
	service := NewGeneratorService()

	form := models.PromptFormData{
		ApplicationTitle:     "Recipe Finder",
		Purpose:              "Find recipes by ingredients",
		HighLevelDescription: "A web app that suggests recipes",
		LookAndFeel:          "Clean and minimal",
		ColorScheme:          "Green and white",
		UIElements:           "Search bar, result cards",
		UserFlows:            "Enter ingredients, view results",
		UserInputs:           "Ingredient list",
		InputExamples:        "tomato, basil, mozzarella",
		Actions:              "Search recipes",
		DataProcessing:       "Match ingredients against recipe database",
		PromptName:           "Recipe Finder",
	}

	result := service.GenerateMasterPrompt(form)

	// 开场指令必须在最前面
	if !strings.HasPrefix(result, "Here is a description for an application I need you to create.") {
		t.Error("主提示词应该以固定的开场指令开头")
	}

	// 各分区标题按固定顺序出现
	sections := []string{
		"# Recipe Finder",
		"## Purpose & Overview",
		"**Purpose:** Find recipes by ingredients",
		"**Description:**\nA web app that suggests recipes",
		"## Look & Feel",
		"**Visual Design:**\nClean and minimal",
		"**Color Scheme:**\nGreen and white",
		"## UI Elements Required",
		"## User Flows",
		"## User Inputs",
		"**Examples:**\ntomato, basil, mozzarella",
		"## Actions & Data Processing",
		"**User Actions:**\nSearch recipes",
		"**Data Processing & Rules:**\nMatch ingredients against recipe database",
		"## Coding Standards",
		"---",
		"Machine used to run this app:",
	}

	lastIndex := -1
	for _, section := range sections {
		index := strings.Index(result, section)
		if index < 0 {
			t.Errorf("主提示词应该包含: %q", section)
			continue
		}
		if index < lastIndex {
			t.Errorf("分区 %q 的输出顺序不正确", section)
		}
		lastIndex = index
	}

	// 结尾必须是重申指令
	if !strings.HasSuffix(result, "You must NOT start coding and creating files until the user has approved your plan.") {
		t.Error("主提示词应该以重申指令结尾")
	}
}

// TestGenerateMasterPromptSectionGating 测试分区标题的按需输出
func TestGenerateMasterPromptSectionGating(t *testing.T) {
	service := NewGeneratorService()

	// 只填写目的，不填写描述和外观
	form := models.NewPromptFormData()
	form.ApplicationTitle = "Todo App"
	form.Purpose = "Track tasks"

	result := service.GenerateMasterPrompt(form)

	if !strings.Contains(result, "# Todo App") {
		t.Error("应该输出应用标题")
	}

	if !strings.Contains(result, "## Purpose & Overview") {
		t.Error("填写了目的时应该输出 Purpose & Overview 分区")
	}

	if !strings.Contains(result, "**Purpose:** Track tasks") {
		t.Error("应该输出目的内容")
	}

	if strings.Contains(result, "**Description:**") {
		t.Error("描述为空时不应该输出 Description 标签")
	}

	if strings.Contains(result, "## Look & Feel") {
		t.Error("外观字段全空时不应该输出 Look & Feel 分区")
	}

	if strings.Contains(result, "## User Flows") {
		t.Error("用户流程为空时不应该输出 User Flows 分区")
	}
}

// TestGenerateMasterPromptOrGating 测试双字段分区的"或"条件
func TestGenerateMasterPromptOrGating(t *testing.T) {
	service := NewGeneratorService()

	// 只填写配色，不填写视觉设计
	form := models.NewPromptFormData()
	form.ColorScheme = "Dark mode"

	result := service.GenerateMasterPrompt(form)

	if !strings.Contains(result, "## Look & Feel") {
		t.Error("任一组成字段非空时都应该输出分区标题")
	}

	if strings.Contains(result, "**Visual Design:**") {
		t.Error("视觉设计为空时不应该输出 Visual Design 标签")
	}

	if !strings.Contains(result, "**Color Scheme:**\nDark mode") {
		t.Error("应该输出配色内容")
	}
}

// TestGenerateMasterPromptEmptyForm 测试全空表单
func TestGenerateMasterPromptEmptyForm(t *testing.T) {
	service := NewGeneratorService()

	result := service.GenerateMasterPrompt(models.NewPromptFormData())

	// 固定段落仍然输出
	if !strings.HasPrefix(result, "Here is a description for an application I need you to create.") {
		t.Error("全空表单仍应输出开场指令")
	}

	if !strings.Contains(result, "## Coding Standards") {
		t.Error("全空表单仍应输出编码规范段")
	}

	if !strings.Contains(result, "Machine used to run this app:") {
		t.Error("全空表单仍应输出运行环境说明")
	}

	// 动态分区一个都不出现
	for _, header := range []string{
		"## Purpose & Overview",
		"## Look & Feel",
		"## UI Elements Required",
		"## User Flows",
		"## User Inputs",
		"## Actions & Data Processing",
	} {
		if strings.Contains(result, header) {
			t.Errorf("全空表单不应该输出分区: %q", header)
		}
	}

	// 首尾无多余空白
	if result != strings.TrimSpace(result) {
		t.Error("汇编结果的首尾不应该有空白字符")
	}
}

// TestGenerateMasterPromptCodingStandardsLiterals 测试编码规范段的逐字输出
func TestGenerateMasterPromptCodingStandardsLiterals(t *testing.T) {
	service := NewGeneratorService()

	result := service.GenerateMasterPrompt(models.NewPromptFormData())

	// 代码片段保留反引号
	for _, fragment := range []string{
		"- Use descriptive names: `getUserData()` not `getData()`",
		"- Log errors meaningfully: `console.error('Failed to process data:', e)`",
		"**Commits:** Use format `type: brief description`",
		"- Name tests descriptively: `test('returns empty array when no users exist')`",
	} {
		if !strings.Contains(result, fragment) {
			t.Errorf("编码规范段应该逐字包含: %q", fragment)
		}
	}

	// 箭头符号保留原文
	if !strings.Contains(result, "Import order: standard library → third-party → your code") {
		t.Error("导入顺序行应该使用箭头符号")
	}
	if !strings.Contains(result, "**Branches:** main (stable) → dev (active) → feature/thing (new work)") {
		t.Error("分支说明行应该使用箭头符号")
	}
}

// TestGenerateMasterPromptNoSideEffects 测试汇编不修改输入
func TestGenerateMasterPromptNoSideEffects(t *testing.T) {
	service := NewGeneratorService()

	form := models.NewPromptFormData()
	form.ApplicationTitle = "Notes App"
	snapshot := form

	service.GenerateMasterPrompt(form)

	if form != snapshot {
		t.Error("汇编不应该修改输入的表单快照")
	}
}
