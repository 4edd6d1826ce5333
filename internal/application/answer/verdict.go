package answer

import "strings"

// Verdict 事实核验结论
type Verdict struct {
	// Hallucinated 为 true 时不得把对应文本当作可靠回答
	Hallucinated bool
	// Recognized 核验输出能否被识别，无法识别时按存在幻觉处理
	Recognized bool
	Raw        string
}

const (
	LabelGrounded     = "grounded"
	LabelHallucinated = "hallucinated"
	LabelUnparsed     = "unparsed"
)

// ParseVerdict 解析核验模型的文本输出。
// "true" 表示存在幻觉，"false" 表示有依据，大小写不敏感；其余输出一律视为存在幻觉。
func ParseVerdict(raw string) Verdict {
	token := strings.ToLower(strings.Trim(strings.TrimSpace(raw), " \t\r\n\"'`.!«»"))
	switch token {
	case "false":
		return Verdict{Hallucinated: false, Recognized: true, Raw: raw}
	case "true":
		return Verdict{Hallucinated: true, Recognized: true, Raw: raw}
	default:
		return Verdict{Hallucinated: true, Recognized: false, Raw: raw}
	}
}

func (v Verdict) Label() string {
	switch {
	case !v.Recognized:
		return LabelUnparsed
	case v.Hallucinated:
		return LabelHallucinated
	default:
		return LabelGrounded
	}
}
