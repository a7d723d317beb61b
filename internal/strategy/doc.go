// Package strategy turns a generation session into a dashboard.
//
// A typical run:
//
//	reg, err := strategy.NewSession(ctx, src, strategy.SessionConfig{
//	    Language: "en",
//	    Override: override,
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	dashboard, err := strategy.GenerateDashboard(ctx, reg, 4)
//
// GenerateDashboard builds the top-level views and the area subviews
// concurrently and joins them in their configured order. GenerateAreaView
// builds a single area subview on demand.
package strategy
