package admin

import (
	"github.com/stockdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UploadFile 文件上传，图片超出边长限制时压缩
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.file_missing", nil)
		return
	}
	scene := c.DefaultPostForm("scene", "common")

	result, err := h.UploadService.SaveFile(file, scene)
	if err != nil {
		respondWithMappedError(c, err, uploadErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}

	response.Success(c, gin.H{
		"url":          result.URL,
		"filename":     file.Filename,
		"content_type": result.ContentType,
		"size":         result.Size,
		"width":        result.Width,
		"height":       result.Height,
		"compressed":   result.Compressed,
	})
}
