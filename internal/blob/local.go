package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store 抽象文件存储，上传返回可公开访问的地址。
type Store interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// File 待上传的文件。
type File struct {
	Name string
	Body io.Reader
}

// Config 本地文件存储配置。
type Config struct {
	Dir       string `yaml:"dir" json:"dir"`
	PublicURL string `yaml:"public_url" json:"public_url"`
	MaxBytes  int64  `yaml:"max_bytes" json:"max_bytes"`
}

// ErrTooLarge 上传内容超过大小限制。
var ErrTooLarge = errors.New("file exceeds size limit")

// LocalStore 将文件写入本地目录，由 HTTP 服务以静态文件暴露。
type LocalStore struct {
	dir       string
	publicURL string
	maxBytes  int64
}

// NewLocalStore 创建本地存储并确保根目录存在。
func NewLocalStore(cfg Config) (*LocalStore, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		public = "/uploads"
	}
	limit := cfg.MaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	return &LocalStore{dir: dir, publicURL: public, maxBytes: limit}, nil
}

// Dir 返回根目录，供静态文件路由使用。
func (s *LocalStore) Dir() string {
	return s.dir
}

// Upload 以随机文件名保存内容，保留原扩展名。
func (s *LocalStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder = sanitizeFolder(folder)
	if err := os.MkdirAll(filepath.Join(s.dir, folder), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	full := filepath.Join(s.dir, folder, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	case n > s.maxBytes:
		_ = os.Remove(full)
		return "", ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("close file: %w", closeErr)
	}
	return s.publicURL + "/" + path.Join(folder, name), nil
}

// Delete 删除 Upload 返回的地址对应的文件，文件不存在时视为成功。
func (s *LocalStore) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("delete blob: %q is not managed by this store", url)
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func sanitizeFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" || folder == "." {
		return "misc"
	}
	return folder
}
