// Package entity 定义领域实体
package entity

import "strings"

// Artwork 展品记录，加载后只读，跨会话共享
type Artwork struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	ImageRef  string    `json:"image,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

func (a *Artwork) HasImage() bool {
	return a != nil && strings.TrimSpace(a.ImageRef) != ""
}

func (a *Artwork) HasEmbedding() bool {
	return a != nil && len(a.Embedding) > 0
}
