package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"audioai/internal/model"
	"audioai/internal/schema"
	"audioai/internal/service"
	errcode "audioai/pkg/err-code"
)

// Analyze 接受 JSON {audio_url} 或 multipart 上传
func (h *Handler) Analyze(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.analyzeUpload(c, false)
		return
	}

	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errcode.NewHTTPError(http.StatusUnprocessableEntity, "audio_url is required"))
		return
	}

	res, err := h.analyzer.AnalyzeURL(c.Request.Context(), req.AudioURL)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, schema.AnalyzeResponse{
		Message:  "success",
		Filename: res.Filename,
		Result:   res.Result,
	})
}

// LegacyAnalyze 仅支持 multipart 上传，响应带 content_type
func (h *Handler) LegacyAnalyze(c *gin.Context) {
	h.analyzeUpload(c, true)
}

// multipartOverhead 表单边界、part 头和其它字段的额外预算
const multipartOverhead = 64 << 10

func (h *Handler) analyzeUpload(c *gin.Context, withContentType bool) {
	// 解析表单前限制请求体，超限时 multipart 解析立即失败，不会把整个请求读完
	if maxBytes := h.cfg.Get().Upload.MaxBytes; maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(errcode.NewHTTPError(http.StatusRequestEntityTooLarge, "audio file too large"))
			return
		}
		_ = c.Error(errcode.NewHTTPError(http.StatusUnprocessableEntity, "file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Errorf("open multipart file %s: %v", fh.Filename, err)
		_ = c.Error(errcode.NewHTTPError(http.StatusBadRequest, "failed to read upload"))
		return
	}
	defer f.Close()

	res, err := h.analyzer.AnalyzeUpload(c.Request.Context(), service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := schema.AnalyzeResponse{
		Message:  "success",
		Filename: res.Filename,
		Result:   res.Result,
	}
	if withContentType {
		resp.ContentType = res.ContentType
	}
	c.JSON(http.StatusOK, resp)
}
