// Package query filters and sorts Home Assistant registry records.
//
// A Query records a chain of filters over one record kind (entities, devices
// or areas) and runs it on demand. Filters compare tri-state registry fields
// strictly: a field that is missing, a field that is null and a field with a
// value are three different things.
//
// Usage:
//
//	lights := query.New(session.Entities(), session).
//	    WhereDomain("light").
//	    WhereAreaID(hass.Some("kitchen"), true).
//	    Not().WhereEntityCategory(hass.Some("diagnostic")).
//	    IsNotHidden(true).
//	    List()
//
// Not negates the next filter only. OrderBy returns a new Query so a sorted
// and an unsorted view of the same chain can coexist.
package query
