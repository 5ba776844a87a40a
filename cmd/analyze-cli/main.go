package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"audioai/internal/config"
	"audioai/internal/inference"
	"audioai/internal/schema"
	"audioai/internal/service"
	"audioai/pkg/log"
	"audioai/pkg/util"
)

// 交互式分析本地文件或远程 URL，直接调用模型服务，不经过 HTTP 接口
func main() {
	logger := log.NewLogger(&log.Option{
		Output:      os.Stderr,
		ServiceName: "audioai-cli",
		EncodeType:  log.EncodeTypeConsole,
	})
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("failed to load .env: %v", err)
	}
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = config.DefaultPath
	}
	manager, err := config.NewManager(path, logger)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := manager.Get()

	model := inference.NewSenseVoice(inference.Config{
		Endpoint: cfg.Model.Endpoint,
		ModelID:  cfg.Model.ModelID,
		Device:   cfg.Model.Device,
		Timeout:  cfg.Model.Timeout,
	}, logger)
	analyzer := service.NewAnalyzer(model, manager, logger, nil)

	scanner := bufio.NewScanner(os.Stdin)
	var round int
	for {
		fmt.Println("input an audio file path or url：")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		word := util.RemoveAllPunctuation(input)
		for _, cmd := range cfg.CMDExit {
			if word == cmd {
				fmt.Println("Good bye!")
				return
			}
		}

		round++
		res, err := analyze(context.Background(), analyzer, input)
		if err != nil {
			fmt.Printf("round %d: %s\n", round, err.Error())
			continue
		}
		data, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(data))
	}
}

func analyze(ctx context.Context, analyzer *service.Analyzer, input string) (*schema.AnalyzeResponse, error) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		res, err := analyzer.AnalyzeURL(ctx, input)
		if err != nil {
			return nil, err
		}
		return &schema.AnalyzeResponse{Message: "success", Filename: res.Filename, Result: res.Result}, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// 扩展名识别不出时交给内容嗅探
	res, err := analyzer.AnalyzeUpload(ctx, service.Upload{
		Filename:    filepath.Base(input),
		ContentType: mime.TypeByExtension(filepath.Ext(input)),
		Body:        f,
	})
	if err != nil {
		return nil, err
	}
	return &schema.AnalyzeResponse{
		Message:     "success",
		Filename:    res.Filename,
		ContentType: res.ContentType,
		Result:      res.Result,
	}, nil
}
