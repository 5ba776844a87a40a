package service

import (
	"context"
	"errors"
	"io"
	"net/http"

	"golang.org/x/sync/semaphore"

	"audioai/internal/audio"
	"audioai/internal/config"
	"audioai/internal/inference"
	"audioai/internal/metrics"
	"audioai/internal/normalize"
	errcode "audioai/pkg/err-code"
	"audioai/pkg/log"
)

const inferenceFailed = "inference failed"

// Upload 客户端上传的音频
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type Analysis struct {
	Filename    string
	ContentType string
	Result      *normalize.Result
}

// Analyzer 串联校验、临时文件、模型推理和结果归一化
type Analyzer struct {
	model   inference.Model
	cfg     *config.Manager
	log     *log.Logger
	metrics *metrics.Collector
	sem     *semaphore.Weighted
}

func NewAnalyzer(model inference.Model, cfg *config.Manager, logger *log.Logger, collector *metrics.Collector) *Analyzer {
	a := &Analyzer{
		model:   model,
		cfg:     cfg,
		log:     logger,
		metrics: collector,
	}
	// 并发上限在启动时确定，热更新不改变
	if n := cfg.Get().Inference.MaxConcurrent; n > 0 {
		a.sem = semaphore.NewWeighted(n)
	}
	return a
}

func (a *Analyzer) Health(ctx context.Context) error {
	return a.model.Health(ctx)
}

func (a *Analyzer) AnalyzeURL(ctx context.Context, audioURL string) (*Analysis, error) {
	cfg := a.cfg.Get()
	filename := audio.FilenameFromURL(audioURL)

	if err := cfg.AudioPolicy().ValidateURL(audioURL); err != nil {
		return nil, err
	}

	res, err := a.run(ctx, cfg, inference.Input{URL: audioURL}, filename)
	if err != nil {
		return nil, err
	}
	return &Analysis{Filename: filename, Result: res}, nil
}

func (a *Analyzer) AnalyzeUpload(ctx context.Context, up Upload) (*Analysis, error) {
	cfg := a.cfg.Get()

	contentType, body, err := cfg.AudioPolicy().ResolveContentType(up.ContentType, up.Body)
	if err != nil {
		a.log.Warnf("sniff content type of %s: %v", up.Filename, err)
		return nil, errcode.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}
	if err = audio.ValidateContentType(contentType); err != nil {
		return nil, err
	}

	tf, err := audio.SaveTemp(cfg.Upload.TempDir, up.Filename, body, cfg.Upload.MaxBytes)
	if errors.Is(err, audio.ErrTooLarge) {
		return nil, errcode.NewHTTPError(http.StatusRequestEntityTooLarge, "audio file too large")
	}
	if err != nil {
		a.log.Errorf("save upload %s: %v", up.Filename, err)
		return nil, errcode.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}
	defer func() {
		if rerr := tf.Remove(); rerr != nil {
			a.log.Errorf("remove temp file %s: %v", tf.Path, rerr)
		}
	}()

	res, err := a.run(ctx, cfg, inference.Input{Path: tf.Path}, up.Filename)
	if err != nil {
		return nil, err
	}
	return &Analysis{Filename: up.Filename, ContentType: contentType, Result: res}, nil
}

func (a *Analyzer) run(ctx context.Context, cfg *config.Config, in inference.Input, filename string) (*normalize.Result, error) {
	opts, err := cfg.NormalizeOptions()
	if err != nil {
		// 配置在加载时已校验，这里只会在代码错误时出现
		a.log.Errorf("normalize options: %v", err)
		return nil, errcode.InternalInference(inferenceFailed)
	}

	out, err := a.infer(ctx, cfg, in)
	if errors.Is(err, inference.ErrUnsupportedAudio) {
		return nil, errcode.InvalidAudioFormat(audio.Extension(filename))
	}
	if err != nil {
		var he *errcode.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		a.log.WithFields(log.Fields{"input": in.String()}).Errorf("inference: %v", err)
		return nil, errcode.InternalInference(inferenceFailed)
	}

	res, err := normalize.Normalize(out.Text, out.EmotionProbs, opts)
	if err != nil {
		a.log.WithFields(log.Fields{"input": in.String(), "text": out.Text}).Errorf("normalize model output: %v", err)
		return nil, errcode.InternalInference(inferenceFailed)
	}
	if a.metrics != nil {
		a.metrics.RecordEmotion(string(res.Emotion))
	}
	return res, nil
}

func (a *Analyzer) infer(ctx context.Context, cfg *config.Config, in inference.Input) (*inference.Output, error) {
	if a.sem != nil {
		// Acquire 只会因 ctx 取消或超时失败
		if err := a.sem.Acquire(ctx, 1); err != nil {
			return nil, errcode.NewHTTPError(http.StatusServiceUnavailable, "request cancelled while waiting for inference")
		}
		defer a.sem.Release(1)
	}
	if t := cfg.Inference.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	done := func(error) {}
	if a.metrics != nil {
		done = a.metrics.TrackInference()
	}
	out, err := a.model.Inference(ctx, in, cfg.InferenceOptions())
	done(err)
	return out, err
}
