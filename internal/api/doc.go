// Package api serves generated dashboards over HTTP.
//
// Routes, all under /api/v1:
//
//	GET  /health                 component health
//	GET  /dashboard              latest dashboard (?format=yaml for YAML)
//	POST /dashboard/generate     run a generation now
//	GET  /dashboard/views/{path} one view of the latest dashboard
//	GET  /generations            generation history (?source, failed, limit, offset)
//	GET  /generations/{id}       one generation with its dashboard
//	GET  /ws                     websocket stream of dashboard.generated events
//
// The server follows the lifecycle of the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
