package inject

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/imagegen/internal/handler"
	"github.com/samber/do"
)

func TestSetupMissingBucket(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("PUBLIC_HOST", "img.example.com")
	t.Setenv("PUBLIC_HOST_PARAM", "")

	injector := Setup(context.Background())
	defer func() { _ = injector.Shutdown() }()

	h := do.MustInvoke[*handler.Handler](injector)
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	if err != nil {
		t.Fatalf("handle returned error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if body.Message != "S3_BUCKET_NAME environment variable is not set." {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestSetupResolvesHandler(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("PUBLIC_HOST", "img.example.com")
	t.Setenv("PUBLIC_HOST_PARAM", "")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_USE_PATH_STYLE", "true")

	injector := Setup(context.Background())
	defer func() { _ = injector.Shutdown() }()

	h, err := do.Invoke[*handler.Handler](injector)
	if err != nil {
		t.Fatalf("invoke handler: %v", err)
	}
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPatch})
	if err != nil {
		t.Fatalf("handle returned error: %v", err)
	}
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}
