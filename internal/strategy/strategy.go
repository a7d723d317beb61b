package strategy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
	"github.com/nerrad567/lovelace-strategy/internal/views"
)

// GenerateDashboard assembles the dashboard of a session.
//
// Views are, in order: every exposed view that has cards (in the configured
// view order), one subview per visible area, then the configured extra views.
// Views and area subviews are built concurrently; a view that fails to build
// is logged and left out.
//
// Parameters:
//   - ctx: cancels generation between units
//   - reg: the initialised session
//   - workers: bounds concurrent builders; 0 or less means unbounded
//
// Returns:
//   - lovelace.Dashboard: the generated configuration
//   - error: only the context error when ctx is cancelled
func GenerateDashboard(ctx context.Context, reg *registry.Registry, workers int) (lovelace.Dashboard, error) {
	if !reg.Initialized() {
		reg.Log().Fatal("Registry not initialized!")
	}

	opts := reg.Options()
	names := opts.ExposedViews()
	areas := reg.Areas()

	topViews := make([]lovelace.View, len(names))
	areaViews := make([]lovelace.View, len(areas))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			view, err := buildView(reg, name)
			if err != nil {
				reg.Log().Error("Error importing view!", "view", name, "error", err)
				return nil
			}
			if len(view.Cards()) > 0 {
				topViews[i] = view
			}
			return nil
		})
	}

	for i, area := range areas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			areaViews[i] = areaSubview(gctx, reg, area, workers)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return lovelace.Dashboard{}, err
	}

	out := make([]lovelace.View, 0, len(names)+len(areas)+len(opts.ExtraViews))
	for _, v := range topViews {
		if v != nil {
			out = append(out, v)
		}
	}
	out = append(out, areaViews...)
	for _, v := range opts.ExtraViews {
		out = append(out, v.Clone())
	}

	reg.Log().Debug("dashboard generated", "views", len(out))
	return lovelace.Dashboard{Views: out}, nil
}

// buildView runs one view factory, turning a panic into an error.
func buildView(reg *registry.Registry, name string) (view lovelace.View, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnitPanicked, r)
		}
	}()

	f, err := views.For(name)
	if err != nil {
		return nil, err
	}
	return f.Build(reg)
}
