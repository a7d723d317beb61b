// Package influxdb records generation metrics in InfluxDB 2.
//
// Each run of the generator becomes one dashboard_generation point tagged
// with site, source, language and status, carrying the view, area, entity
// and card counts and the run duration. Writes are batched and never block
// a generation; failures reach the SetOnError callback.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics off
//	}
//	defer client.Close()
//
//	client.WriteGeneration(influxdb.Generation{Source: "cli", Views: 12})
package influxdb
