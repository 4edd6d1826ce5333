// Package main 展品语料索引工具：补齐向量，写回语料文件并同步到向量库
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/retrieval"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/config"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/wire"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	var (
		input  = flag.String("corpus", "", "语料文件路径，默认取 guide.corpus_path")
		output = flag.String("out", "", "写回路径，默认覆盖输入文件")
		noSync = flag.Bool("no-sync", false, "只补齐向量，不写入向量库")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *input == "" {
		*input = cfg.Guide.CorpusPath
	}
	if *output == "" {
		*output = *input
	}

	if err := run(ctx, cfg, *input, *output, !*noSync); err != nil {
		logger.Fatal(ctx, "corpus indexing failed", err)
	}
}

func run(ctx context.Context, cfg *config.Config, input, output string, sync bool) error {
	corpus, err := retrieval.LoadCorpusFile(input)
	if err != nil {
		return err
	}
	logger.Info(ctx, "corpus loaded", "path", input, "artworks", corpus.Len(), "missing", len(corpus.Missing()))

	indexer, cleanup, err := wire.InitializeIndexer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	corpus, generated, err := indexer.EmbedMissing(ctx, corpus)
	if err != nil {
		return err
	}
	if generated > 0 || output != input {
		if err := retrieval.WriteCorpusFile(output, corpus); err != nil {
			return fmt.Errorf("failed to write corpus: %w", err)
		}
		logger.Info(ctx, "corpus written", "path", output, "generated", generated)
	}

	if !sync {
		return nil
	}
	if err := indexer.Sync(ctx, corpus); err != nil {
		if errors.Is(err, retrieval.ErrVectorDisabled) {
			logger.Info(ctx, "memory vector backend, nothing to sync")
			return nil
		}
		return err
	}
	return nil
}
