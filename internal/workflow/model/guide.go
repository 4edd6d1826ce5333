package model

// ArtworkInfoInput 展品讲解生成输入
type ArtworkInfoInput struct {
	Grounding string
	Profile   string
}

// ArtworkInfoJudgeInput 展品讲解的事实核验输入
type ArtworkInfoJudgeInput struct {
	Grounding string
	Info      string
}

// AnswerInput 观众提问的回答生成输入
type AnswerInput struct {
	Question  string
	Grounding string
	Profile   string
}

// AnswerJudgeInput 回答的事实核验输入
type AnswerJudgeInput struct {
	Grounding string
	Answer    string
	Question  string
}

// RouteArtwork 路线中的一个展品
type RouteArtwork struct {
	ID   string
	Text string
}

// RouteNarrationInput 路线介绍生成输入
type RouteNarrationInput struct {
	Profile  string
	Query    string
	Artworks []RouteArtwork
}

// FarewellInput 告别语生成输入
type FarewellInput struct {
	Profile string
}
