package node

import (
	"fmt"
	"strings"

	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
)

// routeTextRunes 路线介绍中每个展品描述的最大长度
const routeTextRunes = 600

// BuildRouteBlock 将路线展品按展示顺序编号拼接
func BuildRouteBlock(artworks []wfmodel.RouteArtwork) string {
	if len(artworks) == 0 {
		return ""
	}
	lines := make([]string, 0, len(artworks))
	for i, a := range artworks {
		text := strings.TrimSpace(a.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, TruncateByRunes(text, routeTextRunes)))
	}
	return strings.Join(lines, "\n\n")
}

// OrPlaceholder 空字段在模板中用占位说明代替，避免出现空白段落
func OrPlaceholder(s, placeholder string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return placeholder
}
