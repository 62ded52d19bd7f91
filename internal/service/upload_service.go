package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"

	_ "image/gif"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var allowedUploadScenes = map[string]struct{}{
	"product":  {},
	"category": {},
	"draft":    {},
	"common":   {},
}

// UploadResult 上传结果
type UploadResult struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Compressed  bool   `json:"compressed"`
}

// UploadService 文件上传服务
type UploadService struct {
	cfg  config.UploadConfig
	root string
	now  func() time.Time
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg config.UploadConfig) *UploadService {
	root := strings.TrimSpace(cfg.Dir)
	if root == "" {
		root = "uploads"
	}
	return &UploadService{cfg: cfg, root: root, now: time.Now}
}

// SaveFile 保存 multipart 上传的文件
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (*UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return s.Save(src, file.Filename, file.Size, scene)
}

// Save 校验并保存文件，图片在启用压缩且过大时等比缩放
func (s *UploadService) Save(src io.ReadSeeker, filename string, size int64, scene string) (*UploadResult, error) {
	if s.cfg.MaxSize > 0 && size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: max %d MB", ErrUploadTooLarge, s.cfg.MaxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(s.cfg.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
			return nil, fmt.Errorf("%w: extension %s", ErrUploadTypeInvalid, ext)
		}
	}

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return nil, err
	}
	contentType := http.DetectContentType(buffer[:n])
	if len(s.cfg.AllowedTypes) > 0 && !isAllowedContentType(contentType, s.cfg.AllowedTypes) {
		return nil, fmt.Errorf("%w: %s", ErrUploadTypeInvalid, contentType)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	result := &UploadResult{ContentType: contentType, Size: size}
	var payload io.Reader = src

	if strings.HasPrefix(contentType, "image/") {
		imgCfg, _, err := image.DecodeConfig(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadImageInvalid, err)
		}
		if (s.cfg.MaxWidth > 0 && imgCfg.Width > s.cfg.MaxWidth) || (s.cfg.MaxHeight > 0 && imgCfg.Height > s.cfg.MaxHeight) {
			return nil, fmt.Errorf("%w: %dx%d", ErrUploadImageTooLarge, imgCfg.Width, imgCfg.Height)
		}
		result.Width, result.Height = imgCfg.Width, imgCfg.Height
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}

		if s.shouldCompress(contentType, imgCfg) {
			compressed, newExt, width, height, err := s.compress(src)
			if err != nil {
				return nil, err
			}
			payload = bytes.NewReader(compressed)
			ext = newExt
			result.Size = int64(len(compressed))
			result.Width, result.Height = width, height
			result.Compressed = true
			if newExt == ".jpg" {
				result.ContentType = "image/jpeg"
			} else {
				result.ContentType = "image/png"
			}
		}
	}

	normalizedScene := normalizeUploadScene(scene)
	now := s.now()
	year := now.Format("2006")
	month := now.Format("01")
	name := uuid.New().String() + ext
	savePath := filepath.Join(s.root, normalizedScene, year, month, name)

	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return nil, err
	}
	dst, err := os.Create(savePath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, payload); err != nil {
		return nil, err
	}

	result.URL = fmt.Sprintf("/uploads/%s/%s/%s/%s", normalizedScene, year, month, name)
	logger.Infow("upload_saved",
		"scene", normalizedScene,
		"url", result.URL,
		"size", result.Size,
		"compressed", result.Compressed,
	)
	return result, nil
}

func (s *UploadService) shouldCompress(contentType string, imgCfg image.Config) bool {
	if !s.cfg.Compress.Enabled || s.cfg.Compress.MaxEdge <= 0 {
		return false
	}
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return false
	}
	return imgCfg.Width > s.cfg.Compress.MaxEdge || imgCfg.Height > s.cfg.Compress.MaxEdge
}

// compress 等比缩放到最长边 MaxEdge；不透明图片转 JPEG，透明图片保留 PNG
func (s *UploadService) compress(src io.Reader) ([]byte, string, int, int, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("%w: %v", ErrUploadImageInvalid, err)
	}
	width, height := scaledSize(img.Bounds().Dx(), img.Bounds().Dy(), s.cfg.Compress.MaxEdge)
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), img, img.Bounds(), draw.Src, nil)

	var out bytes.Buffer
	if canvas.Opaque() {
		quality := s.cfg.Compress.JPEGQuality
		if quality < 1 || quality > 100 {
			quality = 82
		}
		if err := jpeg.Encode(&out, canvas, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", 0, 0, err
		}
		return out.Bytes(), ".jpg", width, height, nil
	}
	if err := png.Encode(&out, canvas); err != nil {
		return nil, "", 0, 0, err
	}
	return out.Bytes(), ".png", width, height, nil
}

// scaledSize 计算等比缩放后的尺寸，最长边不超过 maxEdge
func scaledSize(width, height, maxEdge int) (int, int) {
	if width <= 0 || height <= 0 || maxEdge <= 0 {
		return width, height
	}
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxEdge {
		return width, height
	}
	w := width * maxEdge / longest
	h := height * maxEdge / longest
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func normalizeUploadScene(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := allowedUploadScenes[value]; ok {
		return value
	}
	return "common"
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

func isAllowedContentType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(contentType, strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}
