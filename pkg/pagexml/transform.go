package pagexml

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/htrtools/pageconv/pkg/errors"
)

// Element local names the converter acts on. Matching is by local name so
// prefixed forms (pc:TextRegion) are recognized the same as unprefixed ones.
const (
	tagTextRegion = "TextRegion"
	tagTextLine   = "TextLine"
	tagUnicode    = "Unicode"
	tagCoords     = "Coords"
	tagBaseline   = "Baseline"
)

// Transform converts one PAGE XML document from eScriptorium form to
// Transkribus form and returns the serialized result.
//
// The only rejection condition is malformed XML, reported as
// errors.ErrCodeParse with the parser's diagnostic. Once parsing succeeds
// the transform always succeeds: every structural gap has a defined filler.
// On failure nothing is returned; there are no partial results.
func Transform(input []byte, opts Options) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(input); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse document")
	}
	if err := TransformDocument(doc, opts); err != nil {
		return nil, err
	}
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "serialize document")
	}
	return out, nil
}

// TransformDocument applies the conversion to an already parsed document,
// mutating it in place. Callers that hold a tree (for example the HTTP
// service after a streaming read) can use this to skip a re-parse.
func TransformDocument(doc *etree.Document, opts Options) error {
	opts.SetDefaults()

	root := doc.Root()
	if root == nil {
		return errors.New(errors.ErrCodeParse, "document has no root element")
	}

	// Namespace rewriting is independent of element matching: the
	// structural pass compares local names only.
	rewriteNamespaces(root, opts.TargetNamespace)
	apply(root, &opts)
	return nil
}

// apply walks the tree once and dispatches on local name. Nested
// occurrences of the same element are each evaluated independently.
func apply(el *etree.Element, opts *Options) {
	switch el.Tag {
	case tagTextRegion:
		ensureCoords(el, opts.RegionPoints, opts)
	case tagTextLine:
		ensureCoords(el, opts.LinePoints, opts)
		ensureBaseline(el, opts)
	case tagUnicode:
		fillUnicode(el, opts)
	}
	for _, child := range el.ChildElements() {
		apply(child, opts)
	}
}

// ensureCoords inserts a placeholder Coords as the element's first child
// unless one already exists anywhere among its immediate children.
func ensureCoords(el *etree.Element, points string, opts *Options) {
	if findChild(el, tagCoords) != nil {
		return
	}
	coords := etree.NewElement(tagCoords)
	coords.CreateAttr("points", points)
	el.InsertChildAt(0, coords)
	opts.Logger.Debug("inserted Coords", "parent", el.Tag, "id", el.SelectAttrValue("id", ""))
}

// ensureBaseline inserts a placeholder Baseline directly after the Coords
// child unless a Baseline already exists. The check is independent of
// whether the Coords was pre-existing or just inserted.
func ensureBaseline(el *etree.Element, opts *Options) {
	if findChild(el, tagBaseline) != nil {
		return
	}
	baseline := etree.NewElement(tagBaseline)
	baseline.CreateAttr("points", opts.BaselinePoints)

	// ensureCoords ran first, so a Coords child always exists here.
	if coords := findChild(el, tagCoords); coords != nil {
		el.InsertChildAt(coords.Index()+1, baseline)
	} else {
		el.InsertChildAt(0, baseline)
	}
	opts.Logger.Debug("inserted Baseline", "id", el.SelectAttrValue("id", ""))
}

// fillUnicode sets the placeholder text when the element's content is
// missing, empty, or whitespace-only. Non-empty text is left untouched,
// including single characters and bare punctuation.
func fillUnicode(el *etree.Element, opts *Options) {
	if strings.TrimSpace(el.Text()) != "" {
		return
	}
	el.SetText(opts.TextPlaceholder)
	opts.Logger.Debug("filled empty Unicode")
}

// findChild returns the first immediate child with the given local name,
// regardless of namespace prefix, or nil.
func findChild(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}
