// Package chips builds the chips shown at the top of the home view: a
// weather chip and one counter per enabled domain, which turns every entity
// of the domain off on tap and opens the domain view on hold.
package chips
