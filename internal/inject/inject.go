package inject

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	appconfig "github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/feed"
	"github.com/dmorgan81/imagegen/internal/handle"
	"github.com/dmorgan81/imagegen/internal/handler"
	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/page"
	"github.com/dmorgan81/imagegen/internal/param"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/samber/do"
)

func Setup(ctx context.Context) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*bedrockruntime.Client](injector, func(i *do.Injector) (*bedrockruntime.Client, error) {
		return bedrockruntime.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		cfg := do.MustInvoke[*appconfig.Config](i)
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i), func(o *s3.Options) {
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			}
			o.UsePathStyle = cfg.S3UsePathStyle
		}), nil
	})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	// The parameter store client is only built when PUBLIC_HOST_PARAM is used.
	do.Provide[*appconfig.Config](injector, func(i *do.Injector) (*appconfig.Config, error) {
		return appconfig.Load(ctx, os.LookupEnv, param.FetcherFunc(func(ctx context.Context, path string) (string, error) {
			fetcher, err := do.Invoke[param.Fetcher](i)
			if err != nil {
				return "", err
			}
			return fetcher.Fetch(ctx, path)
		}))
	})

	do.Provide[image.Generator](injector, image.NewBedrockGenerator)
	do.Provide[store.Uploader](injector, store.NewS3Uploader)
	do.Provide[store.Lister](injector, store.NewS3Lister)
	do.Provide[*feed.Generator](injector, feed.NewS3Generator)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*handle.GenerateHandler](injector, handle.NewGenerateHandler)
	do.Provide[*handle.ListHandler](injector, handle.NewListHandler)

	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
