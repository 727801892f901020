package feed

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const headConcurrency = 8

type Generator struct {
	Lister store.Lister
	Client s3.HeadObjectAPIClient
	Bucket string
	URLs   store.URLBuilder
	Title  string
	Link   string
	Mode   config.ListFailureMode
}

type Result struct {
	RSS []byte
	// Degraded is set when the listing failed and an empty channel was rendered.
	Degraded bool
}

func NewS3Generator(i *do.Injector) (*Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &Generator{
		Lister: do.MustInvoke[store.Lister](i),
		Client: do.MustInvoke[*s3.Client](i),
		Bucket: cfg.Bucket,
		URLs:   store.URLBuilder{Scheme: cfg.PublicScheme, Host: cfg.PublicHost},
		Title:  cfg.FeedTitle,
		Link:   lo.Ternary(cfg.FeedLink != "", cfg.FeedLink, cfg.BaseURL()),
		Mode:   cfg.ListFailureMode,
	}, nil
}

// Generate renders the stored images as an RSS 2.0 document, newest first.
// Item titles come from the prompt recorded in each object's metadata. A
// failed listing yields an empty channel unless the mode is strict.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed").With("mode", g.Mode)
	log.Info("generating rss feed")

	degraded := false
	objects, err := g.Lister.List(ctx, store.Prefix)
	if err != nil {
		if g.Mode == config.ListStrict {
			return Result{}, err
		}
		log.Error("listing failed, rendering empty feed", "error", err)
		objects, degraded = nil, true
	}

	items := make([]*feeds.Item, len(objects))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(headConcurrency)
	for idx, obj := range objects {
		idx, obj := idx, obj
		group.Go(func() error {
			link := g.URLs.URL(obj.Key)
			item := &feeds.Item{
				Id:        link,
				Title:     path.Base(obj.Key),
				Link:      &feeds.Link{Href: link},
				Created:   obj.LastModified,
				Enclosure: &feeds.Enclosure{Url: link, Type: store.ContentTypePNG, Length: "0"},
			}
			items[idx] = item

			out, err := g.Client.HeadObject(gctx, &s3.HeadObjectInput{
				Bucket: aws.String(g.Bucket),
				Key:    aws.String(obj.Key),
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("could not read object metadata", "key", obj.Key, "error", err)
				return nil
			}

			meta := out.Metadata
			if prompt, err := url.QueryUnescape(meta["prompt"]); err == nil && prompt != "" {
				item.Title = prompt
			}
			if meta["model"] != "" {
				item.Description = fmt.Sprintf("%s (seed %s)", meta["model"], meta["seed"])
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	feed := &feeds.Feed{
		Title:       g.Title,
		Link:        &feeds.Link{Href: g.Link},
		Description: "Images generated from text prompts",
		Updated:     time.Now().UTC(),
		Items:       items,
	}
	if len(objects) > 0 {
		feed.Updated = objects[0].LastModified
	}
	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Created.After(b.Created)
	})

	rss, err := feed.ToRss()
	if err != nil {
		return Result{}, err
	}
	return Result{RSS: []byte(rss), Degraded: degraded}, nil
}
