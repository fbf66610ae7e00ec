// internal/services/generator_service.go
package services

import (
	"strings"

	"github.com/Corphon/PromptForge/internal/models"
)

// 固定的开场指令：要求下游LLM先产出实现计划，
// 禁止时间估算，且在计划获批前禁止写代码
const masterPromptIntro = "Here is a description for an application I need you to create. " +
	"Please think of the right implementation, architecture, dependencies and resources needed and propose a plan. " +
	"Do not include any time estimations in your proposed plan. " +
	"You must NOT start coding and creating files until the user has approved your plan.\n"

// 固定的结尾段：运行环境说明 + 重申仅计划的指令
const masterPromptMachineNote = "Machine used to run this app: " +
	"I'm using a Macbook and Google Chrome, both updated to the latest version\n"

const masterPromptReminder = "As a reminder, your task is to think of the right implementation, " +
	"architecture, dependencies and resources needed and propose a plan. " +
	"Do not include any time estimations in your proposed plan. " +
	"You must NOT start coding and creating files until the user has approved your plan."

// 固定的编码规范段，随每份主提示词一起输出
// 原文包含反引号代码片段，Go原始字符串无法容纳反引号，用 ~ 占位后回填
var codingStandards = strings.ReplaceAll(`
## Coding Standards

Use these standards when writing code. Keep it practical and maintainable.

### Core Principles
- **Readability > Cleverness** - Future you will thank present you
- **Consistency > Perfection** - Pick a style, stick to it
- **Simple > Complex** - Use the simplest solution that works
- **Make it work, then make it right** - Ship and iterate

### Naming Conventions
- Use descriptive names: ~getUserData()~ not ~getData()~
- Booleans start with is/has/can: ~isActive~, ~hasPermission~
- Be consistent with camelCase or snake_case per language
- Files match their content: ~userService.js~, ~string_utils.py~
- Classes use PascalCase: ~UserManager~

### Code Organization
- One main responsibility per function (< 50 lines ideal)
- Group related code together, separate concerns with folders/modules
- Import order: standard library → third-party → your code
- Keep project structure clean: src/, tests/, docs/, config/

### Comments & Documentation
**DO comment:** Why you made non-obvious decisions, workarounds, complex logic
**DON'T comment:** What code obviously does, or leave commented-out code
**README must have:** What it does, how to run it, key dependencies

### Error Handling
- Validate inputs early, fail fast
- Log errors meaningfully: ~console.error('Failed to process data:', e)~
- Don't catch errors just to rethrow them

### Code Hygiene
- Extract repeated code into functions (DRY principle)
- Replace magic numbers with named constants: ~LEGAL_AGE = 18~
- Delete unused code, imports, and variables - trust version control

### Version Control
**Commits:** Use format ~type: brief description~
- Types: feat, fix, refactor, docs, style, test
- Examples: ~feat: add user auth~, ~fix: resolve memory leak~
- Commit small and often, one logical change per commit

**Branches:** main (stable) → dev (active) → feature/thing (new work)

### Testing
- Test critical logic, bug fixes, and complex algorithms
- Name tests descriptively: ~test('returns empty array when no users exist')~

### Security
- Never commit API keys, passwords, or secrets (use env variables)
- Validate and sanitize all user input
- Use parameterized queries for databases

### Language-Specific
**Python:** Use venvs, follow PEP 8, type hints for public functions, f-strings
**JavaScript:** Use const/let (never var), async/await over .then(), arrow functions for callbacks
**All languages:** Use your language's formatter (Black, Prettier, etc.)

### When to Break Rules
Break these when you have a good reason, you're prototyping, or the alternative is worse. Just be intentional about it.
`, "~", "`")

// GeneratorService 负责把向导表单快照汇编为主提示词
// 纯函数式服务：无副作用、无I/O、无随机性，相同快照必然产出逐字节相同的结果
type GeneratorService struct{}

// NewGeneratorService 创建主提示词汇编服务
func NewGeneratorService() *GeneratorService {
	return &GeneratorService{}
}

// GenerateMasterPrompt 将表单快照汇编为一份完整的主提示词
// 各分区按固定顺序输出，分区标题在任一组成字段非空时出现，
// 缺失的字段不产生占位文本；全空快照仍会输出开场与结尾的固定段落
func (s *GeneratorService) GenerateMasterPrompt(data models.PromptFormData) string {
	var parts []string

	// 开场指令（无条件输出）
	parts = append(parts, masterPromptIntro)
	parts = append(parts, "")

	// 应用标题
	if data.ApplicationTitle != "" {
		parts = append(parts, "# "+data.ApplicationTitle+"\n")
	}

	// 目的与描述
	if data.Purpose != "" || data.HighLevelDescription != "" {
		parts = append(parts, "## Purpose & Overview\n")
		if data.Purpose != "" {
			parts = append(parts, "**Purpose:** "+data.Purpose+"\n")
		}
		if data.HighLevelDescription != "" {
			parts = append(parts, "\n**Description:**\n"+data.HighLevelDescription+"\n")
		}
		parts = append(parts, "")
	}

	// 外观与风格
	if data.LookAndFeel != "" || data.ColorScheme != "" {
		parts = append(parts, "## Look & Feel\n")
		if data.LookAndFeel != "" {
			parts = append(parts, "**Visual Design:**\n"+data.LookAndFeel+"\n")
		}
		if data.ColorScheme != "" {
			parts = append(parts, "\n**Color Scheme:**\n"+data.ColorScheme+"\n")
		}
		parts = append(parts, "")
	}

	// 所需UI元素
	if data.UIElements != "" {
		parts = append(parts, "## UI Elements Required\n")
		parts = append(parts, data.UIElements+"\n\n")
	}

	// 用户流程
	if data.UserFlows != "" {
		parts = append(parts, "## User Flows\n")
		parts = append(parts, data.UserFlows+"\n\n")
	}

	// 用户输入
	if data.UserInputs != "" || data.InputExamples != "" {
		parts = append(parts, "## User Inputs\n")
		if data.UserInputs != "" {
			parts = append(parts, data.UserInputs+"\n")
		}
		if data.InputExamples != "" {
			parts = append(parts, "\n**Examples:**\n"+data.InputExamples+"\n")
		}
		parts = append(parts, "")
	}

	// 操作与数据处理
	if data.Actions != "" || data.DataProcessing != "" {
		parts = append(parts, "## Actions & Data Processing\n")
		if data.Actions != "" {
			parts = append(parts, "**User Actions:**\n"+data.Actions+"\n")
		}
		if data.DataProcessing != "" {
			parts = append(parts, "\n**Data Processing & Rules:**\n"+data.DataProcessing+"\n")
		}
		parts = append(parts, "")
	}

	// 编码规范段
	parts = append(parts, codingStandards)
	parts = append(parts, "")

	// 结尾段：运行环境 + 重申指令
	parts = append(parts, "---\n")
	parts = append(parts, masterPromptMachineNote)
	parts = append(parts, "")
	parts = append(parts, masterPromptReminder)

	return strings.TrimSpace(strings.Join(parts, "\n"))
}
