package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementGeneration is written once per dashboard generation.
const MeasurementGeneration = "dashboard_generation"

// Generation summarises one run for the metrics store.
type Generation struct {
	Site     string
	Source   string
	Language string
	Failed   bool
	Views    int
	Areas    int
	Entities int
	Cards    int
	Duration time.Duration
	At       time.Time
}

// WriteGeneration queues one dashboard_generation point. It does nothing
// when the client is closed.
func (c *Client) WriteGeneration(g Generation) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(generationPoint(g))
}

// generationPoint tags the point by site, source, language and status;
// the counts and the duration are fields.
func generationPoint(g Generation) *write.Point {
	status := "ok"
	if g.Failed {
		status = "failed"
	}
	at := g.At
	if at.IsZero() {
		at = time.Now()
	}

	return write.NewPoint(MeasurementGeneration,
		map[string]string{
			"site":     g.Site,
			"source":   g.Source,
			"language": g.Language,
			"status":   status,
		},
		map[string]any{
			"views":       g.Views,
			"areas":       g.Areas,
			"entities":    g.Entities,
			"cards":       g.Cards,
			"duration_ms": g.Duration.Milliseconds(),
		},
		at,
	)
}
