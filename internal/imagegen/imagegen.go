// Package imagegen asks the Gemini image models for placeholder product
// photos.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const aspectRatio = "4:3"

var ErrNoImage = errors.New("image generation returned no image")

type Generator interface {
	// Generate returns the image as a data URI.
	Generate(ctx context.Context, productName string) (string, error)
}

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, productName string) (string, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.model, Prompt(productName), &genai.GenerateImagesConfig{
		AspectRatio: aspectRatio,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", ErrNoImage
	}

	img := resp.GeneratedImages[0].Image
	if len(img.ImageBytes) == 0 {
		return "", ErrNoImage
	}
	return DataURI(img.MIMEType, img.ImageBytes), nil
}

// Prompt is the photo brief sent for productName.
func Prompt(productName string) string {
	return fmt.Sprintf(
		"Una fotografía de comida profesional y apetitosa de un %q de \"La Perrada de William\". "+
			"La imagen debe ser de alta calidad, bien iluminada, sobre un fondo blanco y limpio. Estilo fotorealista.",
		strings.TrimSpace(productName),
	)
}

func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
