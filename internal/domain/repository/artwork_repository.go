package repository

import "github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"

// ArtworkCatalog 只读展品目录，按 ID 解析路线中的展品
type ArtworkCatalog interface {
	ByID(id string) (*entity.Artwork, bool)
	Len() int
}
