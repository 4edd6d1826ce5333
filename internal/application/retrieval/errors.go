package retrieval

import "errors"

var (
	// ErrVectorDisabled 表示向量检索/索引能力未配置（向量库或 Embedder 不可用）。
	ErrVectorDisabled = errors.New("vector retrieval is disabled")
	// ErrInvalidTopK 检索数量必须不小于 1
	ErrInvalidTopK = errors.New("top k must be at least 1")
	// ErrEmptyEmbedding embedding 服务返回了空结果
	ErrEmptyEmbedding = errors.New("empty embedding result")
	// ErrCorpusNotEmbedded 内存索引要求语料中的每条记录都带有向量
	ErrCorpusNotEmbedded = errors.New("corpus contains records without embeddings")
	// ErrDimensionMismatch 向量维度与语料不一致
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
