package engine

import (
	"fmt"
	"strings"

	"github.com/wayfarerhq/wayfarer/pkg/index"
)

// profilePrompts holds the localized prompt fragment per missing profile
// field. Unlisted fields get a generic fragment.
var profilePrompts = map[string]string{
	"nationality": "請問您的國籍是什麼？",
	"visa_type":   "您目前持有什麼簽證？",
}

func profilePrompt(missing []string) string {
	fragments := make([]string, 0, len(missing))
	for _, field := range missing {
		fragment, ok := profilePrompts[field]
		if !ok {
			fragment = fmt.Sprintf("請提供您的%s。", field)
		}
		fragments = append(fragments, fragment)
	}
	return strings.Join(fragments, " ")
}

func translatePrompt(corpusLanguage, question string) string {
	return fmt.Sprintf("將以下問題翻譯為%s，只輸出翻譯結果：\n\n%s", corpusLanguage, question)
}

func gradePrompt(question string, docs []index.Hit) string {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Text)
	}

	return fmt.Sprintf("問題：%s\n\n文件：\n%s\n\n根據以上文件，請判斷這些文件是否足夠回答問題。",
		question, strings.Join(texts, "\n\n"))
}

// negativeJudgments are the markers that classify a grading response as
// insufficient. Matching free text is a best-effort heuristic; graders
// that answer in another register are read as sufficient.
var negativeJudgments = []string{
	"不相關",
	"無法回答",
	"不足夠",
	"insufficient",
	"not relevant",
	"cannot answer",
}

func judgedInsufficient(response string) bool {
	lowered := strings.ToLower(response)
	for _, marker := range negativeJudgments {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

func synthesisPrompt(question, answerLanguage string, docs []index.Hit) string {
	var citations strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&citations, "[%d] %s\n\n", i+1, doc.Text)
	}

	return fmt.Sprintf("以下資料擷取自台灣移民署公佈資料：\n%s請用%s回答問題「%s」，並引用來源編號。",
		citations.String(), answerLanguage, question)
}
