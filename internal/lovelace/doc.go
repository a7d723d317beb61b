// Package lovelace holds the fragment types the generator produces (cards,
// chips, views) and small helpers shared by every builder: layered merging,
// deep cloning, action descriptors and horizontal stacking.
//
// Fragments are loosely typed maps because the frontend accepts arbitrary
// card-specific keys and users may override any of them.
package lovelace
