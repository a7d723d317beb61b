// Package options builds the effective strategy options from the built-in
// defaults and the user's override tree.
//
// The user tree is the "strategy.options" block of a dashboard: any subset of
// the defaults, with extra keys allowed where the schema accepts free card
// configuration (area overlays, view settings, card_options).
//
// Usage:
//
//	override, err := options.LoadOverride("strategy.yaml")
//	if err != nil {
//	    return err
//	}
//	opts, err := options.Build(localizer, override)
//	if errors.Is(err, options.ErrInvalidOverride) {
//	    // abort the generation
//	}
//	for _, name := range opts.ExposedViews() {
//	    // ...
//	}
package options
