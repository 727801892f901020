package store

import (
	"bytes"
	"context"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type PutObjectAPI interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	Client       PutObjectAPI
	Bucket       string
	StorageClass string
}

func NewS3Uploader(i *do.Injector) (Uploader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &S3Uploader{
		Client:       do.MustInvoke[*s3.Client](i),
		Bucket:       cfg.Bucket,
		StorageClass: cfg.StorageClass,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("S3Uploader").With(
		"key", params.Key,
		"content-type", params.ContentType,
		"bucket", u.Bucket,
	)
	log.Info("uploading to s3", "bytes", len(params.Data))

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.Bucket),
		Key:          aws.String(params.Key),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClass(u.StorageClass),
	})
	return err
}

type S3Lister struct {
	Client s3.ListObjectsV2APIClient
	Bucket string
}

func NewS3Lister(i *do.Injector) (Lister, error) {
	return &S3Lister{
		Client: do.MustInvoke[*s3.Client](i),
		Bucket: do.MustInvoke[*config.Config](i).Bucket,
	}, nil
}

// List walks every page under prefix, drops folder markers and returns the
// objects ordered by last modification, most recent first.
func (l *S3Lister) List(ctx context.Context, prefix string) ([]Object, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("S3Lister").With("bucket", l.Bucket, "prefix", prefix)
	log.Info("listing objects")

	var objects []Object
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(l.Bucket),
		Prefix: aws.String(prefix),
	}
	for {
		page, err := l.Client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, err
		}

		files := lo.Filter(page.Contents, func(o s3types.Object, _ int) bool {
			return o.Key != nil && !strings.HasSuffix(*o.Key, "/")
		})
		objects = append(objects, lo.Map(files, func(o s3types.Object, _ int) Object {
			return Object{Key: *o.Key, LastModified: aws.ToTime(o.LastModified)}
		})...)

		if page.NextContinuationToken == nil || *page.NextContinuationToken == "" {
			break
		}
		input.ContinuationToken = page.NextContinuationToken
	}

	slices.SortStableFunc(objects, func(a, b Object) int {
		return b.LastModified.Compare(a.LastModified)
	})
	log.Info("listed objects", "count", len(objects))
	return objects, nil
}
