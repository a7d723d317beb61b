package strategy

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/lovelace-strategy/internal/cards"
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/internal/query"
	"github.com/nerrad567/lovelace-strategy/internal/registry"
)

const statefulSceneSuffix = "_stateful_scene"

// GenerateAreaView builds the subview of one area.
//
// The view starts with the area's extra cards, followed by one vertical
// stack per exposed, supported domain holding a domain header and the entity
// cards, and ends with a miscellaneous stack for entities of unsupported
// domains unless domains.default is hidden.
//
// Parameters:
//   - ctx: cancels the per-domain builders
//   - reg: the initialised session
//   - areaID: a visible area (including "undisclosed")
//   - workers: bounds concurrent domain builders; 0 or less means unbounded
//
// Returns:
//   - lovelace.View: a subview with title, path and cards
//   - error: ErrUnknownArea when areaID is not a visible area
func GenerateAreaView(ctx context.Context, reg *registry.Registry, areaID string, workers int) (lovelace.View, error) {
	area, ok := reg.Area(areaID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArea, areaID)
	}
	return areaSubview(ctx, reg, area, workers), nil
}

func areaSubview(ctx context.Context, reg *registry.Registry, area registry.Area, workers int) lovelace.View {
	return lovelace.View{
		"title":   area.Name,
		"path":    area.AreaID,
		"subview": true,
		"cards":   areaCards(ctx, reg, area, workers),
	}
}

// areaCards builds the cards of an area subview. A domain that fails to
// build is logged and left out.
func areaCards(ctx context.Context, reg *registry.Registry, area registry.Area, workers int) []lovelace.Card {
	opts := reg.Options()
	entities := reg.EntityQuery().WhereAreaID(hass.Some(area.AreaID), true).List()

	viewCards := make([]lovelace.Card, 0, len(area.ExtraCards)+len(opts.DomainOrder())+1)
	for _, c := range area.ExtraCards {
		viewCards = append(viewCards, c.Clone())
	}

	var domains []string
	for _, d := range opts.ExposedDomains() {
		if cards.IsSupported(d) {
			domains = append(domains, d)
		}
	}

	sections := make([]lovelace.Card, len(domains))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, domain := range domains {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			section, err := domainSection(reg, entities, domain)
			if err != nil {
				reg.Log().Error("Error creating card configurations for domain", "domain", domain, "area", area.AreaID, "error", err)
				return nil
			}
			sections[i] = section
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range sections {
		if s != nil {
			viewCards = append(viewCards, s)
		}
	}

	if !opts.Domains[options.DefaultDomain].IsHidden() {
		if misc := miscellaneousSection(reg, area, entities); misc != nil {
			viewCards = append(viewCards, misc)
		}
	}
	return viewCards
}

// domainSection stacks a domain header over the cards of the area's entities
// in domain. It returns nil when there is nothing to show.
func domainSection(reg *registry.Registry, areaEntities []hass.Entity, domain string) (section lovelace.Card, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnitPanicked, r)
		}
	}()

	entities := query.New(areaEntities, reg).
		WhereDomain(domain).
		Where(func(e hass.Entity) bool {
			return domain != "switch" || !strings.HasSuffix(e.EntityID, statefulSceneSuffix)
		}).
		List()
	if len(entities) == 0 {
		return nil, nil
	}

	factory, err := cards.For(domain)
	if err != nil {
		return nil, err
	}

	opts := reg.Options()
	ids := make([]string, 0, len(entities))
	domainCards := make([]lovelace.Card, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.EntityID)

		if domain == "sensor" {
			// Only numeric sensors get a graph; the rest are left out.
			if _, ok := reg.States().Attribute(e.EntityID, "unit_of_measurement"); !ok {
				continue
			}
			domainCards = append(domainCards, cards.Graph(reg, e, cards.Overrides(opts, e)))
			continue
		}
		domainCards = append(domainCards, factory.Build(reg, e, cards.Overrides(opts, e)))
	}

	if domain == "binary_sensor" {
		domainCards = lovelace.StackHorizontal(domainCards, nil)
	}
	if len(domainCards) == 0 {
		return nil, nil
	}

	header := cards.Header(reg, lovelace.EntityTarget(ids...), opts.Domain(domain).HeaderOptions)
	return lovelace.VerticalStack(append([]lovelace.Card{header}, domainCards...)...), nil
}

// miscellaneousSection lists the area's entities whose domain has no card of
// its own.
func miscellaneousSection(reg *registry.Registry, area registry.Area, areaEntities []hass.Entity) lovelace.Card {
	entities := query.New(areaEntities, reg).
		Not().
		Where(func(e hass.Entity) bool { return cards.IsSupported(e.Domain()) }).
		List()
	if len(entities) == 0 {
		return nil
	}

	factory, err := cards.For(cards.Miscellaneous)
	if err != nil {
		reg.Log().Error("Error creating card configurations for domain", "domain", cards.Miscellaneous, "error", err)
		return nil
	}

	opts := reg.Options()
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.EntityID)
	}

	miscCards := make([]lovelace.Card, 0, len(entities)+1)
	miscCards = append(miscCards, cards.Header(reg, cards.AreaTarget(area, ids), opts.Domain(options.DefaultDomain).HeaderOptions))
	for _, e := range entities {
		miscCards = append(miscCards, factory.Build(reg, e, opts.CardOverrides(e.EntityID)))
	}
	return lovelace.VerticalStack(miscCards...)
}
