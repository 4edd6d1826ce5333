package model

// Sampling 单次调用的采样参数，nil 表示使用模型默认值
type Sampling struct {
	Temperature *float32
	MaxTokens   *int
}

func Float32(v float32) *float32 { return &v }

func Int(v int) *int { return &v }
