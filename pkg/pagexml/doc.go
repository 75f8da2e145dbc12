// Package pagexml converts PAGE XML documents from the eScriptorium/Kraken
// export dialect into the form the Transkribus importer accepts.
//
// # Overview
//
// The converter parses the input into an element tree, applies a fixed
// ordered sequence of structural edits, and serializes the result:
//
//  1. Namespace rewrite: every namespace declaration is removed from the
//     root element and the canonical 2013-07-15 PAGE content namespace is
//     declared in its place. Elements carrying a prefix bound to a PAGE
//     content namespace (any version) fold into the canonical default
//     namespace; unrelated namespaces on sub-elements are preserved.
//  2. Empty Unicode fill: Unicode elements whose text is missing, empty, or
//     whitespace-only receive the "[text]" placeholder.
//  3. TextRegion geometry: regions without a Coords child get one inserted
//     as their first child, with placeholder points.
//  4. TextLine geometry: lines without a Coords child get one inserted
//     first, and lines without a Baseline child get one inserted directly
//     after the Coords, each check independent of the other.
//
// # Why a tree, not text substitution
//
// An earlier generation of this tool edited the document as a flat string
// with regular expressions. That approach misparses attribute values
// containing '>', misses self-closing and namespace-prefixed tags, and
// fires on escaped element-like text inside description fields. Operating
// on a parsed tree sidesteps all of those by construction; the package
// tests pin each documented breaking case.
//
// # Usage
//
//	out, err := pagexml.Transform(input, pagexml.Options{})
//	if err != nil {
//	    // errors.ErrCodeParse: input was not well-formed XML
//	}
//
// The transform holds no state between calls and never touches anything
// beyond the bytes it is given, so concurrent calls are safe.
package pagexml
