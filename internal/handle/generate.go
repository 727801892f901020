package handle

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/samber/do"
)

// S3 caps user metadata at 2KB per object, shared by every key.
const maxPromptMetadata = 1024

type GenerateInput struct {
	Prompt string `json:"prompt"`
}

type GenerateOutput struct {
	ImageURL string `json:"imageUrl"`
}

type GenerateHandler struct {
	generator image.Generator
	uploader  store.Uploader
	urls      store.URLBuilder
}

func NewGenerateHandler(i *do.Injector) (*GenerateHandler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &GenerateHandler{
		generator: do.MustInvoke[image.Generator](i),
		uploader:  do.MustInvoke[store.Uploader](i),
		urls:      store.URLBuilder{Scheme: cfg.PublicScheme, Host: cfg.PublicHost},
	}, nil
}

// Handle generates one image for the prompt, stores it under a fresh key and
// returns its public URL. Nothing is written unless generation succeeded.
func (h *GenerateHandler) Handle(ctx context.Context, input GenerateInput) (GenerateOutput, error) {
	prompt := strings.TrimSpace(input.Prompt)
	log := log.FromContextOrDiscard(ctx).WithGroup("GenerateHandler").With("prompt", prompt)
	if prompt == "" {
		return GenerateOutput{}, ErrPromptRequired
	}
	log.Info("generating image")

	res, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		return GenerateOutput{}, &StageError{StageGenerate, err}
	}

	data, err := base64.StdEncoding.DecodeString(res.Payload)
	if err != nil {
		return GenerateOutput{}, &StageError{StageSave, fmt.Errorf("decode image: %w", err)}
	}

	key := store.NewKey()
	err = h.uploader.Upload(ctx, store.UploadParams{
		Key:         key,
		Data:        data,
		ContentType: store.ContentTypePNG,
		Metadata: map[string]string{
			"prompt": escapePrompt(prompt, maxPromptMetadata),
			"model":  res.Model,
			"seed":   strconv.FormatInt(res.Seed, 10),
		},
	})
	if err != nil {
		return GenerateOutput{}, &StageError{StageSave, err}
	}

	out := GenerateOutput{ImageURL: h.urls.URL(key)}
	log.Info("stored image", "key", key, "url", out.ImageURL)
	return out, nil
}

// escapePrompt query-escapes prompt, dropping whole runes from the end so the
// result stays within limit bytes.
func escapePrompt(prompt string, limit int) string {
	var b strings.Builder
	for _, r := range prompt {
		e := url.QueryEscape(string(r))
		if b.Len()+len(e) > limit {
			break
		}
		b.WriteString(e)
	}
	return b.String()
}
