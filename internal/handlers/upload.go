package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"perrada/internal/imagegen"
	"perrada/internal/imagehost"
)

const (
	uploadTimeout   = 30 * time.Second
	generateTimeout = 60 * time.Second
)

// UploadSigner issues direct-upload signatures.
type UploadSigner interface {
	Sign(now time.Time) (imagehost.Signature, error)
}

/*
POST /admin/api/uploads
- multipart field "image"
*/
func UploadImage(host imagehost.Host) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/uploads"
		defer handlePanic(c, route)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, imagehost.MaxImageSize+1<<20)

		fileHeader, err := c.FormFile("image")
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "image file is required")
			return
		}
		if _, err := imagehost.CheckImage(fileHeader.Filename, fileHeader.Size); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "failed to read image")
			return
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
		defer cancel()

		url, err := host.Upload(ctx, fileHeader.Filename, file)
		if err != nil {
			log.Printf("[%s] upload failed for %s: %v", route, sanitizeLogValue(fileHeader.Filename, 80), err)
			respondWithError(c, http.StatusBadGateway, route, "failed to upload image")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"imageUrl": url})
	}
}

/*
GET /admin/api/uploads/signature
*/
func UploadSignature(signer UploadSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/uploads/signature"
		defer handlePanic(c, route)

		if signer == nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "direct uploads are not configured")
			return
		}

		signature, err := signer.Sign(time.Now())
		if errors.Is(err, imagehost.ErrSigningDisabled) {
			respondWithError(c, http.StatusServiceUnavailable, route, err.Error())
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to sign upload")
			return
		}
		c.JSON(http.StatusOK, signature)
	}
}

type GenerateImageRequest struct {
	ProductName string `json:"productName" binding:"required"`
}

/*
POST /admin/api/products/generate-image
*/
func GenerateImage(gen imagegen.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products/generate-image"
		defer handlePanic(c, route)

		if gen == nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "image generation is not configured")
			return
		}

		var req GenerateImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		name := strings.TrimSpace(req.ProductName)
		if name == "" {
			respondFieldErrors(c, map[string]string{"productName": "is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
		defer cancel()

		dataURI, err := gen.Generate(ctx, name)
		if err != nil {
			log.Printf("[%s] generation failed for %q: %v", route, sanitizeLogValue(name, 80), err)
			respondWithError(c, http.StatusBadGateway, route, "failed to generate image")
			return
		}

		c.JSON(http.StatusOK, gin.H{"imageUrl": dataURI})
	}
}
