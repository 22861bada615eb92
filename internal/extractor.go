package internal

import "strconv"

// ExtractorSource reads one value from the request. It reports false when
// the value is absent or empty.
type ExtractorSource = func(Context) (string, bool)

// Extractor returns the value of the first source that has one. Request ids
// come from headers; form keys and steps come from params, posted fields
// and the query.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor trying sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns ("", false) when every source misses.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok {
			return v, true
		}
	}
	return "", false
}

// Int extracts a value and parses it as a decimal int. found is false when
// no source has a value; err is set when the value is not a number.
func (e Extractor) Int(c Context) (n int, found bool, err error) {
	v, found := e.Extract(c)
	if !found {
		return 0, false, nil
	}
	n, err = strconv.Atoi(v)
	return n, true, err
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return present(func(c Context) string { return c.Header(name) })
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return present(func(c Context) string { return c.Query(name) })
}

// FromParam reads a URL parameter.
func FromParam(name string) ExtractorSource {
	return present(func(c Context) string { return c.Param(name) })
}

// FromForm reads a posted field; the query is not consulted.
func FromForm(name string) ExtractorSource {
	return present(func(c Context) string { return c.Request().PostFormValue(name) })
}

// present turns a getter returning "" for missing values into a source.
func present(get func(Context) string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := get(c)
		return v, v != ""
	}
}
