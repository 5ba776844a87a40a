// Package inferencetest provides an in-memory inference.Model for tests.
package inferencetest

import (
	"context"
	"os"
	"sync"

	"audioai/internal/inference"
)

// Stub 返回固定输出，并记录每次调用时输入文件是否存在
type Stub struct {
	Output    *inference.Output
	Err       error
	HealthErr error

	mu        sync.Mutex
	Calls     []inference.Input
	Options   []inference.Options
	FileSeen  []bool
	FileBytes [][]byte
}

func NewStub(text string, probs map[string]float64) *Stub {
	return &Stub{Output: &inference.Output{Text: text, EmotionProbs: probs}}
}

func (s *Stub) Inference(ctx context.Context, in inference.Input, opts inference.Options) (*inference.Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, in)
	s.Options = append(s.Options, opts)
	if in.Path != "" {
		data, err := os.ReadFile(in.Path)
		s.FileSeen = append(s.FileSeen, err == nil)
		s.FileBytes = append(s.FileBytes, data)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Output, nil
}

func (s *Stub) Health(context.Context) error {
	return s.HealthErr
}

// LastInput 最近一次调用的输入
func (s *Stub) LastInput() inference.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Calls) == 0 {
		return inference.Input{}
	}
	return s.Calls[len(s.Calls)-1]
}
