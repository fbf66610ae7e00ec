// internal/models/wizard.go
package models

import "time"

// DefaultPromptName 新建向导表单时的默认名称
const DefaultPromptName = "Untitled Application"

// SectionCount 向导的固定分区数量
const SectionCount = 7

// PromptFormData 向导表单的完整快照
// 十一个自由文本字段按七个分区分组，分区游标仅控制前端展示，
// 汇编时始终考虑全部字段
type PromptFormData struct {
	// 分区 1: 应用标题
	ApplicationTitle string `json:"application_title"`

	// 分区 2: 目的与描述
	Purpose              string `json:"purpose"`
	HighLevelDescription string `json:"high_level_description"`

	// 分区 3: 外观与风格
	LookAndFeel string `json:"look_and_feel"`
	ColorScheme string `json:"color_scheme"`

	// 分区 4: 所需UI元素
	UIElements string `json:"ui_elements"`

	// 分区 5: 用户流程
	UserFlows string `json:"user_flows"`

	// 分区 6: 用户输入
	UserInputs    string `json:"user_inputs"`
	InputExamples string `json:"input_examples"`

	// 分区 7: 操作与数据处理
	Actions        string `json:"actions"`
	DataProcessing string `json:"data_processing"`

	// 元数据
	PromptName     string `json:"prompt_name"`
	CurrentSection int    `json:"current_section"`
}

// NewPromptFormData 创建全空默认状态的表单快照
func NewPromptFormData() PromptFormData {
	return PromptFormData{
		PromptName:     DefaultPromptName,
		CurrentSection: 0,
	}
}

// WizardSession 服务器端持有的向导会话
// 每个会话独占一份表单状态，互不共享
type WizardSession struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Form       PromptFormData `json:"form"`
	CreatedAt  time.Time      `json:"created_at"`
	LastActive time.Time      `json:"last_active"`
}

// WizardSectionInfo 分区元数据（供导航组件展示）
type WizardSectionInfo struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Fields      []string `json:"fields"`
}

// WizardSections 七个分区的固定定义，顺序即游标取值顺序
var WizardSections = []WizardSectionInfo{
	{
		ID:          0,
		Title:       "Application Title",
		Description: "What is your application called?",
		Fields:      []string{"application_title"},
	},
	{
		ID:          1,
		Title:       "Purpose & Description",
		Description: "Define the purpose and high-level description",
		Fields:      []string{"purpose", "high_level_description"},
	},
	{
		ID:          2,
		Title:       "Look & Feel",
		Description: "Describe the visual design and appearance",
		Fields:      []string{"look_and_feel", "color_scheme"},
	},
	{
		ID:          3,
		Title:       "UI Elements Required",
		Description: "What UI components and elements are needed?",
		Fields:      []string{"ui_elements"},
	},
	{
		ID:          4,
		Title:       "User Flows",
		Description: "Describe how users navigate through the application",
		Fields:      []string{"user_flows"},
	},
	{
		ID:          5,
		Title:       "User Inputs",
		Description: "What inputs will users provide?",
		Fields:      []string{"user_inputs", "input_examples"},
	},
	{
		ID:          6,
		Title:       "Actions & Data Processing",
		Description: "What actions are taken on user inputs and how is data processed?",
		Fields:      []string{"actions", "data_processing"},
	},
}
