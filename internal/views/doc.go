// Package views builds the top-level views of the dashboard: the home view
// and one view per supported domain listing that domain's entities grouped
// by area.
package views
