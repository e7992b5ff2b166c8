// Package domain models hand-written fishing diary entries.
//
// # Data Source
//
// The diary is a plain-text file kept by hand over several decades. Each trip
// is one line; blank lines and headings are interleaved freely. A trip line
// follows this loose grammar:
//
//	<date> <dash> <anglers> <dash> <content>
//	e.g. "2/15/2002, Fri – Bob/Jim – Spring River, sunny and cool, caught 6 on a jig"
//
// The dash is a hyphen or an en-dash with optional whitespace on either side.
// Only the first two dashes separate fields; the content keeps any further
// dashes verbatim. A bare hyphen between two digits ("04-07", "16-19") is part
// of the date and never separates fields.
//
// # Date Encodings
//
// Rules are tried in order and the first match wins:
//
//	Text-month range:  "04-07 October 2018"  -> 2018-10-04 .. 2018-10-07
//	Slash range:       "2/16-19/2014"        -> 2014-02-16 .. 2014-02-19
//	Single date:       "10/7/1994", "10-7-1994", "2/15/2002, Fri"
//	Fallback:          anything else is kept verbatim
//
// Every record carries a [DateStatus] so a verbatim fallback can be told apart
// from a parsed date.
//
// # Extraction
//
// Location, lures, and weather come from small ordered [TagSet] vocabularies.
// Locations match as a case-sensitive prefix of the content; lures and weather
// match as case-insensitive substrings anywhere in the content. See
// [DefaultVocabulary].
//
// # Water Data
//
// Records can be joined with USGS gauge readings keyed by date and station.
// Readings live in a separate dataset and never modify the record. See
// [LookupWaterData].
package domain
