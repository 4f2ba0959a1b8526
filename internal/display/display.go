// Package display renders the locale-baked snapshot strings stored on
// video records. Formatting happens once, when a record is built or
// stamped; the formatted strings are what gets persisted.
package display

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale matches the locale the page historically rendered in.
const DefaultLocale = "zh-CN"

// Formatter formats numbers and timestamps for one display locale.
type Formatter struct {
	tag            language.Tag
	printer        *message.Printer
	dateLayout     string
	dateTimeLayout string
}

// NewFormatter builds a Formatter for the given BCP 47 locale tag.
// An unparseable locale falls back to DefaultLocale.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}

	f := &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
	}

	// Year-first date order for CJK locales, month-first otherwise.
	base, _ := tag.Base()
	switch base.String() {
	case "zh", "ja", "ko":
		f.dateLayout = "2006/1/2"
		f.dateTimeLayout = "2006/1/2 15:04:05"
	default:
		f.dateLayout = "1/2/2006"
		f.dateTimeLayout = "1/2/2006 15:04:05"
	}

	return f
}

// Locale returns the resolved locale tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// GroupedInt renders n with the locale's digit grouping.
func (f *Formatter) GroupedInt(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// Date renders t as a localized date string.
func (f *Formatter) Date(t time.Time) string {
	return t.Format(f.dateLayout)
}

// DateTime renders t as a localized date-and-time string.
func (f *Formatter) DateTime(t time.Time) string {
	return t.Format(f.dateTimeLayout)
}
