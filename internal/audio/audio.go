package audio

import (
	"bufio"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	errcode "audioai/pkg/err-code"
)

// sniffLen mimetype 默认读取的头部长度
const sniffLen = 3072

var DefaultAllowedExtensions = []string{"wav", "mp3", "m4a", "flac", "ogg", "opus", "aac", "webm", "pcm"}

type Policy struct {
	CheckURLExtension bool
	AllowedExtensions []string
	SniffContent      bool
}

// ValidateContentType 上传文件的 content-type 必须以 audio 开头
func ValidateContentType(contentType string) error {
	if !strings.HasPrefix(contentType, "audio") {
		return errcode.InvalidAudioFormat(contentType)
	}
	return nil
}

// ValidateURL 开启扩展名校验时检查白名单，关闭时直接交给模型判断
func (p Policy) ValidateURL(rawURL string) error {
	if !p.CheckURLExtension {
		return nil
	}
	ext := Extension(FilenameFromURL(rawURL))
	allowed := p.AllowedExtensions
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return nil
		}
	}
	return errcode.InvalidAudioFormat(ext)
}

// ResolveContentType 声明的类型缺失或是通用二进制时按内容嗅探，返回的 reader 包含已读取的头部
func (p Policy) ResolveContentType(declared string, r io.Reader) (string, io.Reader, error) {
	if !p.SniffContent || (declared != "" && declared != "application/octet-stream") {
		return declared, r, nil
	}
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return declared, br, err
	}
	return mimetype.Detect(head).String(), br, nil
}

// FilenameFromURL 取URL路径最后一段
func FilenameFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	parts := strings.Split(rawURL, "/")
	return parts[len(parts)-1]
}

// Extension 小写扩展名，不带点
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
}
