package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrTooLarge = errors.New("audio file too large")

// TempFile 一次请求内的临时音频文件
type TempFile struct {
	Path string
}

// SaveTemp 把上传内容写入临时文件，maxBytes<=0 表示不限制大小
// 任何失败都会删除已创建的文件
func SaveTemp(dir, filename string, r io.Reader, maxBytes int64) (*TempFile, error) {
	ext := filepath.Ext(filepath.Base(filename))
	// 扩展名里出现路径分隔符时丢弃，避免写出目录外
	if strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	f, err := os.CreateTemp(dir, "upload-"+uuid.NewString()+"-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tf := &TempFile{Path: f.Name()}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && maxBytes > 0 && n > maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = tf.Remove()
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	return tf, nil
}

// Remove 删除临时文件，文件已不存在时不报错
func (t *TempFile) Remove() error {
	if err := os.Remove(t.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
