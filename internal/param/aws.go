package param

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/samber/do"
)

type GetParameterAPI interface {
	GetParameter(context.Context, *ssm.GetParameterInput, ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type ParameterStoreFetcher struct {
	Client GetParameterAPI
}

func NewParameterStoreFetcher(i *do.Injector) (Fetcher, error) {
	return &ParameterStoreFetcher{Client: do.MustInvoke[*ssm.Client](i)}, nil
}

func (f *ParameterStoreFetcher) Fetch(ctx context.Context, path string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("ParameterStore").With("path", path)
	log.Info("fetching parameter")

	out, err := f.Client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("fetch parameter %s: %w", path, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("fetch parameter %s: empty response", path)
	}
	return aws.ToString(out.Parameter.Value), nil
}
