// Package pubdate extracts a publication timestamp from raw HTML.
package pubdate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Source names the strategy that produced a timestamp.
type Source string

const (
	SourceNone        Source = ""
	SourceArticleMeta Source = "meta:article:published_time"
	SourcePubdateMeta Source = "meta:pubdate"
	SourceDateMeta    Source = "meta:date"
	SourceTimeTag     Source = "time:datetime"
	SourceText        Source = "text"
)

// Result is the outcome of an extraction. OK is false when no strategy
// produced a usable timestamp; Time is then the zero value.
type Result struct {
	Time   time.Time
	Source Source
	OK     bool
}

// TimePtr returns a pointer to Time, or nil when the result is absent.
func (r Result) TimePtr() *time.Time {
	if !r.OK {
		return nil
	}
	t := r.Time
	return &t
}

// attrStrategies are tried in order before falling back to the text scan.
var attrStrategies = []struct {
	source   Source
	selector string
	attr     string
}{
	{SourceArticleMeta, `meta[property="article:published_time"]`, "content"},
	{SourcePubdateMeta, `meta[name="pubdate"]`, "content"},
	{SourceDateMeta, `meta[name="date"]`, "content"},
	{SourceTimeTag, `time[datetime]`, "datetime"},
}

// textDateRe finds YYYY-MM-DD-like dates separated by '-', '/' or '.'.
var textDateRe = regexp.MustCompile(`\b(20\d{2}|19\d{2})[-/.](0?[1-9]|1[0-2])[-/.](0?[1-9]|[12]\d|3[01])\b`)

// Extract tries each strategy in priority order and returns the first
// timestamp that normalizes. A strategy whose value does not normalize falls
// through to the next one. Malformed HTML yields an absent result.
func Extract(html string) Result {
	if strings.TrimSpace(html) == "" {
		return Result{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}
	}

	for _, st := range attrStrategies {
		val, ok := doc.Find(st.selector).First().Attr(st.attr)
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		if t, ok := Normalize(val); ok {
			return Result{Time: t, Source: st.source, OK: true}
		}
	}

	doc.Find("script, style, noscript, template").Remove()
	if t, ok := scanText(doc.Text()); ok {
		return Result{Time: t, Source: SourceText, OK: true}
	}
	return Result{}
}

// scanText returns the first calendar-valid date found in text.
func scanText(text string) (time.Time, bool) {
	for _, m := range textDateRe.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow (Feb 31 -> Mar 3); reject those.
		if t.Day() == day && int(t.Month()) == month {
			return t, true
		}
	}
	return time.Time{}, false
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04",
}

// Normalize parses an ISO-8601 date-time or a plain YYYY-MM-DD or YYYYMMDD
// date into UTC.
// A trailing "Z" is stripped first, so zone-less values are read as UTC.
func Normalize(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "Z"), "z")
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range []string{time.DateOnly, "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
