package image

import (
	"context"
	"errors"
)

// NumberOfImages is fixed: every request produces exactly one image.
const NumberOfImages = 1

var ErrNoImages = errors.New("model returned no images")

// ModelError is an error reported by the model in its response body.
type ModelError struct {
	Message string
}

func (e *ModelError) Error() string {
	return "model error: " + e.Message
}

type Params struct {
	Width    int
	Height   int
	CfgScale float64
	Seed     int64
	Quality  string
}

// Result holds the base64 encoded image and what produced it.
type Result struct {
	Payload string
	Model   string
	Seed    int64
}

type Generator interface {
	Generate(context.Context, string) (Result, error)
}
