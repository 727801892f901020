package handle

import (
	"context"

	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type ListOutput struct {
	Images []string `json:"images"`
	// Degraded is set when the listing failed and an empty result was substituted.
	Degraded bool `json:"-"`
}

type ListHandler struct {
	lister store.Lister
	urls   store.URLBuilder
	mode   config.ListFailureMode
}

func NewListHandler(i *do.Injector) (*ListHandler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &ListHandler{
		lister: do.MustInvoke[store.Lister](i),
		urls:   store.URLBuilder{Scheme: cfg.PublicScheme, Host: cfg.PublicHost},
		mode:   cfg.ListFailureMode,
	}, nil
}

func (h *ListHandler) Handle(ctx context.Context) (ListOutput, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("ListHandler").With("mode", h.mode)
	log.Info("listing images")

	objects, err := h.lister.List(ctx, store.Prefix)
	if err != nil {
		if h.mode == config.ListStrict {
			return ListOutput{}, &StageError{StageList, err}
		}
		log.Error("listing failed, returning empty result", "error", err)
		return ListOutput{Images: []string{}, Degraded: true}, nil
	}

	return ListOutput{
		Images: lo.Map(objects, func(o store.Object, _ int) string {
			return h.urls.URL(o.Key)
		}),
	}, nil
}
