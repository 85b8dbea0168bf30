// Package locale renders borrow dates the way a browser's toLocaleDateString would for a language tag.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// layouts holds the numeric short-date layout per supported tag.
// The first entry is the fallback.
var layouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "2/1/2006"},
	{language.Italian, "2/1/2006"},
	{language.Dutch, "2-1-2006"},
	{language.Portuguese, "02/01/2006"},
	{language.Japanese, "2006/1/2"},
	{language.Chinese, "2006/1/2"},
	{language.Korean, "2006. 1. 2."},
	{language.Swedish, "2006-01-02"},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(layouts))
	for i, l := range layouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// Formatter renders dates for one locale.
type Formatter struct {
	tag    language.Tag
	layout string
	loc    *time.Location
}

// New returns a formatter for the closest supported match of tag.
// Dates are rendered in loc; nil means time.Local.
func New(tag string, loc *time.Location) (*Formatter, error) {
	parsed, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", tag, err)
	}
	if loc == nil {
		loc = time.Local
	}

	_, idx, _ := matcher.Match(parsed)
	return &Formatter{tag: layouts[idx].tag, layout: layouts[idx].layout, loc: loc}, nil
}

// Default is the en-US formatter in local time.
func Default() *Formatter {
	return &Formatter{tag: layouts[0].tag, layout: layouts[0].layout, loc: time.Local}
}

// Format renders t as a short numeric date.
func (f *Formatter) Format(t time.Time) string {
	return t.In(f.loc).Format(f.layout)
}

// Tag is the matched language tag.
func (f *Formatter) Tag() string {
	return f.tag.String()
}
