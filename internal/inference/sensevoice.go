package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"audioai/pkg/log"
)

const (
	DefaultModelID = "iic/SenseVoiceSmall"
	DefaultDevice  = "cuda:0"
)

type Config struct {
	Endpoint string
	ModelID  string
	Device   string
	Timeout  time.Duration
}

// SenseVoice 通过 HTTP 调用 SenseVoice 推理服务，进程内只创建一次
type SenseVoice struct {
	cfg  Config
	log  *log.Logger
	http *http.Client
}

func NewSenseVoice(cfg Config, logger *log.Logger) *SenseVoice {
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &SenseVoice{
		cfg:  cfg,
		log:  logger,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type inferenceResponse struct {
	Results []Output `json:"results"`
}

func (s *SenseVoice) Inference(ctx context.Context, in Input, opts Options) (*Output, error) {
	if in.Path == "" && in.URL == "" {
		return nil, errors.New("no audio provided")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"model", s.cfg.ModelID},
		{"device", s.cfg.Device},
		{"language", opts.Language},
		{"use_itn", strconv.FormatBool(opts.UseITN)},
		{"ban_emo_unk", strconv.FormatBool(opts.BanEmoUnk)},
	}
	if in.URL != "" {
		fields = append(fields, [2]string{"audio_url", in.URL})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if in.URL == "" {
		if err := addAudioFile(w, in.Path); err != nil {
			return nil, fmt.Errorf("add audio file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint+"/inference", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, strings.TrimSpace(string(b)))
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var out inferenceResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, errors.New("sensevoice returned no results")
	}

	s.log.Debugf("sensevoice inference %s done in %v", in, time.Since(start))
	return &out.Results[0], nil
}

func (s *SenseVoice) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func addAudioFile(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
