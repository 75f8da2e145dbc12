package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/htrtools/pageconv/pkg/cache"
	"github.com/htrtools/pageconv/pkg/errors"
	"github.com/htrtools/pageconv/pkg/pagexml"
)

const sampleInput = `<PcGts xmlns="http://schema.primaresearch.org/PAGE/gts/pagecontent/2019-07-15"><TextRegion id="r1"><TextLine id="l1"><TextEquiv><Unicode/></TextEquiv></TextLine></TextRegion></PcGts>`

func TestConvertWithoutCache(t *testing.T) {
	r := NewRunner(nil, nil)
	defer r.Close()

	res, err := r.Convert(context.Background(), "sample.xml", []byte(sampleInput), Options{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if res.CacheHit {
		t.Error("first conversion with NullCache reported a cache hit")
	}
	if !bytes.Contains(res.Output, []byte(pagexml.TargetNamespace)) {
		t.Error("output does not declare the target namespace")
	}
	if res.Stats.InputBytes != len(sampleInput) || res.Stats.OutputBytes != len(res.Output) {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestConvertCacheRoundTrip(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil)
	defer r.Close()

	ctx := context.Background()
	first, err := r.Convert(ctx, "sample.xml", []byte(sampleInput), Options{})
	if err != nil {
		t.Fatalf("first Convert: %v", err)
	}
	if first.CacheHit {
		t.Error("first conversion should miss the cache")
	}

	second, err := r.Convert(ctx, "sample.xml", []byte(sampleInput), Options{})
	if err != nil {
		t.Fatalf("second Convert: %v", err)
	}
	if !second.CacheHit {
		t.Error("second conversion should hit the cache")
	}
	if !bytes.Equal(first.Output, second.Output) {
		t.Error("cached output differs from computed output")
	}

	// Refresh bypasses the lookup but still succeeds.
	third, err := r.Convert(ctx, "sample.xml", []byte(sampleInput), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Convert: %v", err)
	}
	if third.CacheHit {
		t.Error("refresh conversion should not report a cache hit")
	}
}

func TestConvertOptionsChangeCacheKey(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil)
	defer r.Close()

	ctx := context.Background()
	if _, err := r.Convert(ctx, "a", []byte(sampleInput), Options{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	custom := Options{Transform: pagexml.Options{TextPlaceholder: "???"}}
	res, err := r.Convert(ctx, "a", []byte(sampleInput), custom)
	if err != nil {
		t.Fatalf("Convert with custom options: %v", err)
	}
	if res.CacheHit {
		t.Error("different options must not share a cache entry")
	}
	if !bytes.Contains(res.Output, []byte("???")) {
		t.Error("custom placeholder missing from output")
	}
}

func TestConvertParseErrorPropagates(t *testing.T) {
	r := NewRunner(nil, nil)
	defer r.Close()

	_, err := r.Convert(context.Background(), "bad.xml", []byte("<PcGts><unclosed>"), Options{})
	if err == nil {
		t.Fatal("Convert succeeded on malformed input")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeParse)
	}
}
