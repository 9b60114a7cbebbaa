package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for date filters.
const DateLayout = "2006-01-02"

// Params collects optional query parameters for an outbound call. Empty
// values are skipped, so an unfiltered listing carries no query string.
type Params struct {
	values url.Values
}

// New returns an empty parameter set.
func New() *Params {
	return &Params{values: url.Values{}}
}

// Set adds key=value when value is not empty.
func (p *Params) Set(key, value string) *Params {
	if value != "" {
		p.values.Set(key, value)
	}
	return p
}

// SetBool adds key=true|false when b is not nil.
func (p *Params) SetBool(key string, b *bool) *Params {
	if b != nil {
		p.values.Set(key, strconv.FormatBool(*b))
	}
	return p
}

// SetDate adds key=YYYY-MM-DD when t is not zero.
func (p *Params) SetDate(key string, t time.Time) *Params {
	if !t.IsZero() {
		p.values.Set(key, t.Format(DateLayout))
	}
	return p
}

// SetList joins items with "," into a single parameter.
func (p *Params) SetList(key string, items []string) *Params {
	if len(items) > 0 {
		p.values.Set(key, strings.Join(items, ","))
	}
	return p
}

// Len returns the number of parameters set.
func (p *Params) Len() int {
	return len(p.values)
}

// Encode returns the parameters in key order with spaces as %20. Commas are
// left literal so joined lists read as a,b on the wire.
func (p *Params) Encode() string {
	// QueryEscape turns a literal "+" into %2B, so every remaining "+" is a space.
	return listEscaper.Replace(p.values.Encode())
}

var listEscaper = strings.NewReplacer("+", "%20", "%2C", ",")

// Append returns path with the encoded parameters, or path unchanged when no
// parameter is set.
func Append(path string, p *Params) string {
	if p == nil || p.Len() == 0 {
		return path
	}
	return path + "?" + p.Encode()
}
