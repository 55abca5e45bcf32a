// Package authority extracts external authority identifiers (GND, GeoNames)
// from the reference URIs found in CMIF corpora.
package authority

import "strings"

// Scheme names an authority file
type Scheme string

const (
	SchemeGND      Scheme = "gnd"
	SchemeGeoNames Scheme = "geonames"
)

// Extractor pulls the identifier of one scheme out of a URI
type Extractor struct {
	scheme Scheme
	marker string
}

// NewExtractor creates an extractor that returns whatever follows marker
func NewExtractor(scheme Scheme, marker string) *Extractor {
	return &Extractor{scheme: scheme, marker: marker}
}

// Extract returns the trailing segment after the last occurrence of the
// scheme marker. Absence is the common case and is not an error.
func (e *Extractor) Extract(uri string) (string, bool) {
	if uri == "" || e.marker == "" {
		return "", false
	}
	idx := strings.LastIndex(uri, e.marker)
	if idx < 0 {
		return "", false
	}
	return uri[idx+len(e.marker):], true
}

var (
	gnd      = NewExtractor(SchemeGND, "gnd/")
	geonames = NewExtractor(SchemeGeoNames, "geonames.org/")
)

// GND extracts a GND identifier, e.g. http://d-nb.info/gnd/118540238
func GND(uri string) (string, bool) {
	return gnd.Extract(uri)
}

// GeoNames extracts a GeoNames identifier, e.g. https://www.geonames.org/2812482
func GeoNames(uri string) (string, bool) {
	return geonames.Extract(uri)
}

// Registry maps schemes to their extractors
type Registry struct {
	extractors map[Scheme]*Extractor
}

// NewRegistry returns a registry holding the GND and GeoNames extractors
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[Scheme]*Extractor)}
	r.Register(gnd)
	r.Register(geonames)
	return r
}

// Register adds or replaces the extractor for its scheme
func (r *Registry) Register(e *Extractor) {
	r.extractors[e.scheme] = e
}

// Extract resolves uri with the extractor for scheme s
func (r *Registry) Extract(s Scheme, uri string) (string, bool) {
	e, ok := r.extractors[s]
	if !ok {
		return "", false
	}
	return e.Extract(uri)
}
