package image

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/samber/do"
)

type InvokeModelAPI interface {
	InvokeModel(context.Context, *bedrockruntime.InvokeModelInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type titanTextParams struct {
	Text string `json:"text"`
}

type titanConfig struct {
	Quality        string  `json:"quality,omitempty"`
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed"`
}

type titanRequest struct {
	TaskType          string          `json:"taskType"`
	TextToImageParams titanTextParams `json:"textToImageParams"`
	Config            titanConfig     `json:"imageGenerationConfig"`
}

type titanResponse struct {
	Images []string `json:"images"`
	Error  *string  `json:"error"`
}

// BedrockGenerator invokes a Titan text-to-image model through the Bedrock runtime.
type BedrockGenerator struct {
	Client  InvokeModelAPI
	ModelID string
	Params  Params
}

func NewBedrockGenerator(i *do.Injector) (Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &BedrockGenerator{
		Client:  do.MustInvoke[*bedrockruntime.Client](i),
		ModelID: cfg.ModelID,
		Params:  Params(cfg.Image),
	}, nil
}

func (g *BedrockGenerator) Generate(ctx context.Context, prompt string) (Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("BedrockGenerator").With("model", g.ModelID, "params", g.Params)
	log.Info("generating image")

	body, err := json.Marshal(titanRequest{
		TaskType:          "TEXT_IMAGE",
		TextToImageParams: titanTextParams{Text: prompt},
		Config: titanConfig{
			Quality:        g.Params.Quality,
			NumberOfImages: NumberOfImages,
			Height:         g.Params.Height,
			Width:          g.Params.Width,
			CfgScale:       g.Params.CfgScale,
			Seed:           g.Params.Seed,
		},
	})
	if err != nil {
		return Result{}, err
	}

	out, err := g.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.ModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return Result{}, err
	}

	var resp titanResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return Result{}, fmt.Errorf("decode model response: %w", err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return Result{}, &ModelError{Message: *resp.Error}
	}
	if len(resp.Images) == 0 || resp.Images[0] == "" {
		return Result{}, ErrNoImages
	}

	log.Info("received image", "images", len(resp.Images))
	return Result{Payload: resp.Images[0], Model: g.ModelID, Seed: g.Params.Seed}, nil
}
