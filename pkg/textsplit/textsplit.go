// Package textsplit segments long Chinese-language text into card-sized
// chunks without calling an LLM. It is the fallback path when no model is
// configured or the model response cannot be used.
package textsplit

import (
	"fmt"
	"strings"
)

// Kind classifies the text so segmentation can follow its structure.
type Kind string

const (
	KindNarrative     Kind = "narrative"
	KindArgumentative Kind = "argumentative"
	KindDescriptive   Kind = "descriptive"
)

var (
	narrativeKeywords     = []string{"故事", "情节", "人物", "对话", "场景", "时间", "地点", "发生", "经历", "遇到"}
	argumentativeKeywords = []string{"观点", "论证", "认为", "因为", "所以", "然而", "但是", "首先", "其次", "总之"}
	descriptiveKeywords   = []string{"介绍", "说明", "特点", "功能", "方法", "步骤", "原理", "结构", "组成"}

	sceneMarkers     = []string{"突然", "接着", "然后", "后来", "最后", "终于", "此时", "这时", "当时", "那天", "第二天"}
	argumentMarkers  = []string{"首先", "其次", "再次", "最后", "另外", "此外", "然而", "但是", "因此", "所以"}
	dimensionMarkers = []string{"外观", "功能", "特点", "优势", "方法", "步骤", "原理", "结构", "用途", "效果"}
)

const hardSegmentCap = 6

// DetectKind scores the text against keyword sets for each kind. Narrative
// wins ties, then argumentative.
func DetectKind(text string) Kind {
	narrative := keywordScore(text, narrativeKeywords)
	argumentative := keywordScore(text, argumentativeKeywords)
	descriptive := keywordScore(text, descriptiveKeywords)

	if narrative >= argumentative && narrative >= descriptive {
		return KindNarrative
	}
	if argumentative >= descriptive {
		return KindArgumentative
	}
	return KindDescriptive
}

func keywordScore(text string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

// Split breaks the text into at most max segments (hard-capped at 6),
// following paragraph boundaries and the kind's transition markers. It always
// returns at least one segment for non-blank input.
func Split(text string, kind Kind, max int) []string {
	var markers []string
	var breakAfter, hardLimit int
	switch kind {
	case KindNarrative:
		markers, breakAfter, hardLimit = sceneMarkers, 500, 1200
	case KindArgumentative:
		markers, breakAfter, hardLimit = argumentMarkers, 600, 1500
	default:
		markers, breakAfter, hardLimit = dimensionMarkers, 600, 1200
	}

	segments := splitByParagraphs(text, markers, breakAfter, hardLimit)

	// Too few or too many means the structure did not cooperate; fall back to
	// an even length-based split.
	if len(segments) < 2 || len(segments) > 8 {
		segments = evenSplit(text)
	}

	limit := hardSegmentCap
	if max > 0 && max < limit {
		limit = max
	}
	if len(segments) > limit {
		segments = segments[:limit]
	}
	return segments
}

func splitByParagraphs(text string, markers []string, breakAfter, hardLimit int) []string {
	var segments []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			segments = append(segments, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		runeLen := len([]rune(current.String())) + len([]rune(para))
		if runeLen > hardLimit {
			flush()
			current.WriteString(para)
		} else {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
		}

		if containsAny(para, markers) && len([]rune(current.String())) > breakAfter {
			flush()
		}
	}
	flush()
	return segments
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// evenSplit cuts the text into 3–5 roughly equal rune-length pieces.
func evenSplit(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	target := len(runes) / 800
	if target < 3 {
		target = 3
	}
	if target > 5 {
		target = 5
	}

	step := len(runes) / target
	if step == 0 {
		step = len(runes)
	}

	var segments []string
	for i := 0; i < len(runes); i += step {
		end := i + step
		if end > len(runes) {
			end = len(runes)
		}
		if s := strings.TrimSpace(string(runes[i:end])); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Summary produces a local title for a segment when no model is available.
func Summary(text string, position int, kind Kind) string {
	var keywords []string
	switch kind {
	case KindNarrative:
		keywords = narrativeKeywords
	case KindArgumentative:
		keywords = argumentativeKeywords
	default:
		keywords = descriptiveKeywords
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return fmt.Sprintf("第%d段：%s相关内容", position, kw)
		}
	}
	return fmt.Sprintf("第%d段内容摘要", position)
}

// ImagePrompt builds a sectioned, platform-styled generation instruction for
// one segment: style positioning, core content, visual and layout directions.
func ImagePrompt(text, stylePrompt string, kind Kind) string {
	style := strings.TrimSpace(stylePrompt)
	if style == "" {
		style = "清新自然风格"
	}

	core := firstRunes(strings.TrimSpace(text), 50)
	if core == "" {
		core = "温馨故事场景"
	}

	var visual string
	switch kind {
	case KindNarrative:
		visual = "人物与场景互动，情感氛围，柔和光线，温暖色调"
	case KindArgumentative:
		visual = "概念化场景，象征元素，层次对比，简洁色调"
	default:
		visual = "对象特征展示，清晰明亮氛围，干净色调"
	}

	sections := []string{
		"【风格定位】" + style,
		"【核心内容】" + core,
		"【视觉元素】" + visual,
		"【排版要求】竖版3:4构图，留白20%，主体突出，背景适度虚化",
		"【细节补充】清新治愈滤镜，画面柔和不刺眼",
	}
	return strings.Join(sections, "；")
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
