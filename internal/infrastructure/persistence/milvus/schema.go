package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionArtworks 展品集合
	CollectionArtworks = "artworks"

	fieldID       = "id"
	fieldPosition = "position"
	fieldVector   = "vector"
)

// ArtworksSchema 展品 Collection Schema。position 为语料中的顺序，用于同分排序。
func ArtworksSchema(name string, dim int) *entity.Schema {
	return &entity.Schema{
		CollectionName: name,
		Description:    "Artwork descriptions for route retrieval",
		Fields: []*entity.Field{
			{
				Name:       fieldID,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     fieldPosition,
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     fieldVector,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(dim),
				},
			},
		},
	}
}
