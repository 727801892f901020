package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/feed"
	"github.com/dmorgan81/imagegen/internal/handle"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/page"
	"github.com/samber/do"
)

// Handler routes API Gateway proxy requests: POST generates an image, GET
// lists stored images. Every outcome, including failures, is returned as a
// response; Handle never returns an error to the Lambda runtime.
type Handler struct {
	configErr error
	generate  *handle.GenerateHandler
	list      *handle.ListHandler
	feed      *feed.Generator
	templator *page.Templator
}

func NewHandler(i *do.Injector) (*Handler, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return &Handler{configErr: err}, nil
	}
	return &Handler{
		generate:  do.MustInvoke[*handle.GenerateHandler](i),
		list:      do.MustInvoke[*handle.ListHandler](i),
		feed:      do.MustInvoke[*feed.Generator](i),
		templator: do.MustInvoke[*page.Templator](i),
	}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := log.FromContextOrDiscard(ctx).With(
		"method", req.HTTPMethod,
		"path", req.Path,
		"requestId", req.RequestContext.RequestID,
	)
	ctx = log.NewContext(ctx, logger)
	log := logger.WithGroup("Handler")
	log.Info("handling lambda request")

	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusNoContent, "", "", nil), nil
	}

	if h.configErr != nil {
		log.Error("configuration error", "error", h.configErr)
		var missing *config.MissingError
		if errors.As(h.configErr, &missing) {
			return message(http.StatusInternalServerError, "%s", missing.Error()), nil
		}
		return message(http.StatusInternalServerError, "Invalid configuration: %v", h.configErr), nil
	}

	switch req.HTTPMethod {
	case http.MethodPost:
		return h.createImage(ctx, req), nil
	case http.MethodGet:
		return h.listImages(ctx, req), nil
	default:
		log.Warn("method not allowed")
		return MethodNotAllowed(), nil
	}
}

func (h *Handler) createImage(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler")

	input, err := decodeBody(req)
	if err != nil {
		log.Warn("invalid request body", "error", err)
		return message(http.StatusBadRequest, "Invalid request body: %v", err)
	}

	out, err := h.generate.Handle(ctx, input)
	if err != nil {
		return failure(ctx, err)
	}
	return respondJSON(http.StatusOK, out, nil)
}

func (h *Handler) listImages(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler")

	format := strings.ToLower(req.QueryStringParameters["format"])
	switch format {
	case "", "json", "rss", "html":
	default:
		log.Warn("unsupported format", "format", format)
		return message(http.StatusBadRequest, "Unsupported format: %s", format)
	}

	if format == "rss" {
		res, err := h.feed.Generate(ctx)
		if err != nil {
			return failure(ctx, &handle.StageError{Stage: handle.StageList, Err: err})
		}
		return respond(http.StatusOK, contentTypeRSS, string(res.RSS), degradedHeader(res.Degraded))
	}

	out, err := h.list.Handle(ctx)
	if err != nil {
		return failure(ctx, err)
	}
	extra := degradedHeader(out.Degraded)

	if format == "html" {
		html, err := h.templator.Template(ctx, out.Images)
		if err != nil {
			return failure(ctx, &handle.StageError{Stage: handle.StageList, Err: err})
		}
		return respond(http.StatusOK, contentTypeHTML, string(html), extra)
	}
	return respondJSON(http.StatusOK, out, extra)
}

func decodeBody(req events.APIGatewayProxyRequest) (handle.GenerateInput, error) {
	var input handle.GenerateInput
	body := req.Body
	if req.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return input, err
		}
		body = string(raw)
	}
	if strings.TrimSpace(body) == "" {
		return input, nil
	}
	err := json.Unmarshal([]byte(body), &input)
	return input, err
}

func failure(ctx context.Context, err error) events.APIGatewayProxyResponse {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler")

	if errors.Is(err, handle.ErrPromptRequired) {
		log.Warn("prompt missing")
		return message(http.StatusBadRequest, "Prompt is required.")
	}

	var se *handle.StageError
	if errors.As(err, &se) {
		log.Error("request failed", "stage", se.Stage, "error", se.Err)
		switch se.Stage {
		case handle.StageGenerate:
			return message(http.StatusInternalServerError, "Error generating image: %v", se.Err)
		case handle.StageSave:
			return message(http.StatusInternalServerError, "Error saving image: %v", se.Err)
		case handle.StageList:
			return message(http.StatusInternalServerError, "Error listing images: %v", se.Err)
		}
	}

	log.Error("request failed", "error", err)
	return message(http.StatusInternalServerError, "Internal Server Error")
}
