package httpapi

import (
	"errors"
	"net/http"

	mediaEntity "socialfeed/internal/core/media"

	"github.com/gin-gonic/gin"
)

// maxUploadBody leaves room for multipart framing around one file.
const maxUploadBody = mediaEntity.MaxUploadSize + 1<<20

type MediaController struct {
	mc      MediaUseCase
	maxBody int64
}

func NewMediaController(mc MediaUseCase) *MediaController {
	return &MediaController{mc: mc, maxBody: maxUploadBody}
}

// UploadMedia stores the multipart "file" field and returns a media descriptor
// to embed in a later POST /posts.
func (ctl *MediaController) UploadMedia(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctl.maxBody)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	res, err := ctl.mc.UploadMedia(c.Request.Context(), userID, header.Filename, header.Header.Get("Content-Type"), header.Size, f)
	if err != nil {
		if errors.Is(err, mediaEntity.ErrUnsupportedMedia) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, mediaEntity.ErrStorageUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store media"})
		return
	}
	c.JSON(http.StatusCreated, res)
}
