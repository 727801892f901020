package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/samber/do"
)

//go:embed assets/gallery.html
var galleryTmpl string

type Params struct {
	Title  string
	Images []string
}

type Templator struct {
	title string
	tmpl  *template.Template
	once  sync.Once
}

func NewTemplator(i *do.Injector) (*Templator, error) {
	return &Templator{title: do.MustInvoke[*config.Config](i).FeedTitle}, nil
}

func (g *Templator) Template(ctx context.Context, images []string) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("gallery").Parse(galleryTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Info("generating page", "images", len(images))

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, Params{Title: g.title, Images: images}); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
