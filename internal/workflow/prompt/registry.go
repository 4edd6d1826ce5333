package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptArtworkInfoV1      PromptID = "artwork_info_v1"
	PromptAnswerConciseV1    PromptID = "answer_concise_v1"
	PromptAnswerExpandedV1   PromptID = "answer_expanded_v1"
	PromptJudgeAnswerV1      PromptID = "judge_answer_v1"
	PromptJudgeArtworkInfoV1 PromptID = "judge_artwork_info_v1"
	PromptRouteNarrationV1   PromptID = "route_narration_v1"
	PromptFarewellV1         PromptID = "farewell_v1"
)

// All 全部已注册的模板
var All = []PromptID{
	PromptArtworkInfoV1,
	PromptAnswerConciseV1,
	PromptAnswerExpandedV1,
	PromptJudgeAnswerV1,
	PromptJudgeArtworkInfoV1,
	PromptRouteNarrationV1,
	PromptFarewellV1,
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

// resolvePromptFiles 模板文件名与 PromptID 一一对应
func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	for _, known := range All {
		if known == id {
			return fmt.Sprintf("templates/%s.system.txt", id), fmt.Sprintf("templates/%s.user.txt", id), nil
		}
	}
	return "", "", fmt.Errorf("unknown prompt id: %s", id)
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
