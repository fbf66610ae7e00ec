// internal/services/score_service.go
package services

import (
	"math"
	"math/rand"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Corphon/PromptForge/internal/errors"
	"github.com/Corphon/PromptForge/internal/models"
)

// 固定的改进建议与澄清问题，对任何输入都相同
var (
	scoreSuggestions = []string{
		"Consider being more specific about the desired output format",
		"Add examples to clarify your intent",
		"Include context about the domain or task",
	}

	scoreClarifyingQuestions = []string{
		"What is the intended use case for this prompt?",
		"Do you need the output in a specific format?",
		"What is your target audience for this prompt?",
	}
)

// ScoreService 对提示词文本产出启发式质量评分
// 注意：这是占位实现，总分由简单的长度/结构启发式计算，
// 四个子项分数是均匀随机数，与输入内容和总分都无关，
// 待接入真实的模型评分后端后替换
type ScoreService struct{}

// NewScoreService 创建评分服务
func NewScoreService() *ScoreService {
	return &ScoreService{}
}

// ScorePrompt 对提示词计算启发式评分
// 总分 = 50 + min(长度/100, 20) + 含问号加10 + 含换行加10，四舍五入后封顶100
func (s *ScoreService) ScorePrompt(prompt string) (*models.ScoreResult, error) {
	if prompt == "" {
		return nil, apperrors.NewValidationError("提示词内容不能为空", nil)
	}

	baseScore := 50.0
	// 长度按字符数计，多字节文本不虚高
	lengthBonus := math.Min(float64(utf8.RuneCountInString(prompt))/100, 20)

	clarityBonus := 0.0
	if strings.Contains(prompt, "?") {
		clarityBonus = 10
	}

	structureBonus := 0.0
	if strings.Contains(prompt, "\n") {
		structureBonus = 10
	}

	score := math.Min(math.Round(baseScore+lengthBonus+clarityBonus+structureBonus), 100)

	result := &models.ScoreResult{
		Score: score,
		Criteria: map[string]float64{
			"clarity":      rand.Float64() * 100,
			"specificity":  rand.Float64() * 100,
			"structure":    rand.Float64() * 100,
			"completeness": rand.Float64() * 100,
		},
		Suggestions:         append([]string(nil), scoreSuggestions...),
		ClarifyingQuestions: append([]string(nil), scoreClarifyingQuestions...),
	}

	return result, nil
}
