package pagexml

import (
	"io"

	"github.com/charmbracelet/log"
)

// TargetNamespace is the canonical PAGE content namespace declared on every
// output document. Transkribus expects the 2013-07-15 schema revision.
const TargetNamespace = "http://schema.primaresearch.org/PAGE/gts/pagecontent/2013-07-15"

// Default placeholder values for synthesized content. The geometry values
// are deterministic stand-ins, not derived from any document data: the
// importer requires the elements to exist, and correct coordinates can be
// redrawn inside Transkribus afterwards.
const (
	// DefaultTextPlaceholder fills Unicode elements that carry no
	// transcription.
	DefaultTextPlaceholder = "[text]"

	// DefaultRegionPoints is the placeholder polygon for a TextRegion's
	// synthesized Coords.
	DefaultRegionPoints = "0,0 100,0 100,100 0,100"

	// DefaultLinePoints is the placeholder polygon for a TextLine's
	// synthesized Coords.
	DefaultLinePoints = "0,0 100,0 100,20 0,20"

	// DefaultBaselinePoints is the placeholder polyline for a TextLine's
	// synthesized Baseline.
	DefaultBaselinePoints = "0,10 100,10"
)

// Options configures a conversion. The zero value is valid: every field
// defaults to the canonical constant above.
type Options struct {
	// TargetNamespace overrides the namespace declared on the output root.
	TargetNamespace string

	// TextPlaceholder overrides the filler for empty Unicode elements.
	TextPlaceholder string

	// RegionPoints overrides the synthesized TextRegion Coords points.
	RegionPoints string

	// LinePoints overrides the synthesized TextLine Coords points.
	LinePoints string

	// BaselinePoints overrides the synthesized TextLine Baseline points.
	BaselinePoints string

	// Logger receives debug-level records of each structural edit.
	// Defaults to a discard logger; the transform never prints on its own.
	Logger *log.Logger
}

// SetDefaults fills unset fields with the canonical defaults.
// It is idempotent.
func (o *Options) SetDefaults() {
	if o.TargetNamespace == "" {
		o.TargetNamespace = TargetNamespace
	}
	if o.TextPlaceholder == "" {
		o.TextPlaceholder = DefaultTextPlaceholder
	}
	if o.RegionPoints == "" {
		o.RegionPoints = DefaultRegionPoints
	}
	if o.LinePoints == "" {
		o.LinePoints = DefaultLinePoints
	}
	if o.BaselinePoints == "" {
		o.BaselinePoints = DefaultBaselinePoints
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
