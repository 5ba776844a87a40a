package inference

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedAudio 模型无法解码输入音频
var ErrUnsupportedAudio = errors.New("audio format not supported by model")

// Input 本地文件和远程URL二选一
type Input struct {
	Path string
	URL  string
}

func (in Input) String() string {
	if in.URL != "" {
		return in.URL
	}
	return in.Path
}

// Options 推理参数，默认值与服务上线时保持一致
type Options struct {
	Language  string // auto, zh, en, yue, ja, ko, nospeech
	UseITN    bool
	BanEmoUnk bool
}

func DefaultOptions() Options {
	return Options{Language: "auto"}
}

// Output 模型原始输出
type Output struct {
	Key          string             `json:"key"`
	Text         string             `json:"text"`
	EmotionProbs map[string]float64 `json:"emotion_probs"`
}

type Model interface {
	// Inference 对单个音频做识别，阻塞直到结果返回
	Inference(ctx context.Context, in Input, opts Options) (*Output, error)
	// Health 检查模型服务是否就绪
	Health(ctx context.Context) error
}

// StatusError 模型服务返回非200
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sensevoice error (status %d): %s", e.StatusCode, e.Body)
}
