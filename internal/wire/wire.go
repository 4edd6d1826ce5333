//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/retrieval"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/tour"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/config"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/infrastructure/llm"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/interfaces/http/handler"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/interfaces/http/router"
	workflowport "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		InfraSet,
		RetrievalSet,
		GuideSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeIndexer 初始化语料索引任务
func InitializeIndexer(ctx context.Context, cfg *config.Config) (*retrieval.Indexer, func(), error) {
	wire.Build(
		ProvideEmbedder,
		ProvideVectorBackend,
		ProvideIndexer,
	)
	return nil, nil, nil
}

// InfraSet 外部依赖提供者集合
var InfraSet = wire.NewSet(
	ProvideRedisClient,
	ProvideSessionStore,
	ProvideVectorBackend,
	ProvidePublisher,
	ProvideRateLimiter,
)

// RetrievalSet 检索提供者集合
var RetrievalSet = wire.NewSet(
	ProvideCorpus,
	ProvideEmbedder,
	ProvideEmbeddingCache,
	ProvideVectorIndex,
	ProvideRetrievalEngine,
)

// GuideSet 导览业务提供者集合
var GuideSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	ProvideGuide,
	ProvideAnswerPipeline,
	ProvideLengthSampler,
	ProvideOrchestrator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewEventHandler,
	wire.Bind(new(handler.EventProcessor), new(*tour.Orchestrator)),
	router.New,
)
