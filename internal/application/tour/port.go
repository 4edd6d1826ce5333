package tour

import (
	"context"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/answer"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
)

// Retriever 按画像与兴趣检索路线展品
type Retriever interface {
	Retrieve(ctx context.Context, profile, query string, k int) ([]*entity.Artwork, error)
}

// AnswerService 展品讲解与问答
type AnswerService interface {
	PresentArtwork(ctx context.Context, artwork *entity.Artwork, profile string) (*answer.Presentation, error)
	Answer(ctx context.Context, question string, artwork *entity.Artwork, profile string) (*answer.Answer, error)
}

// Narrator 路线介绍与告别语
type Narrator interface {
	NarrateRoute(ctx context.Context, in wfmodel.RouteNarrationInput) (string, error)
	Farewell(ctx context.Context, in wfmodel.FarewellInput) (string, error)
}

// TourSummary 导览结束时发布的摘要
type TourSummary struct {
	UserID       string
	RouteLength  int
	Shown        int
	ProfileGiven bool
}

// TourEventSink 导览生命周期事件，可选
type TourEventSink interface {
	TourCompleted(ctx context.Context, summary TourSummary) error
}
