// Package wikidump mines a Wikimedia Commons XML dump for images of
// known entities.
//
// The dumps are available from the wikimedia group here:
//
//	https://dumps.wikimedia.org/commonswiki/latest/
//
// File pages are matched to entities through their categories: an
// entity lists the Commons categories it belongs to, and every
// qualifying "File:" page tagged with one of them is attached to the
// entity's images.
//
// See the programs under tools/ for the fetch, parse, convert and load
// steps of the pipeline.
package wikidump
