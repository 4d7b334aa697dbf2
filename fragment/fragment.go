// Package fragment renders storable values as XML property-list
// fragments.
//
// A fragment is a snippet rooted at the value itself, not a full plist
// document. The output is byte-exact with the platform plist serializer:
// the same float digit counts, entity escaping, and tag spelling, so
// fragments survive a round trip through a plist reader on the other
// side of a process boundary.
package fragment

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/prefstore/storable"
)

// Encode renders a value as an XML property-list fragment.
func Encode(v storable.Value) string {
	var b strings.Builder
	encode(&b, v)
	return b.String()
}

func encode(b *strings.Builder, v storable.Value) {
	switch v.Kind() {
	case storable.KindBool:
		val, _ := storable.ToBool(v)
		if val {
			b.WriteString("<true/>")
		} else {
			b.WriteString("<false/>")
		}
	case storable.KindInt:
		b.WriteString("<integer>")
		if i, ok := storable.ToInt64(v); ok {
			b.WriteString(strconv.FormatInt(i, 10))
		} else {
			// Beyond the int64 range the integer is necessarily an
			// unsigned magnitude.
			u, _ := storable.ToUint64(v)
			b.WriteString(strconv.FormatUint(u, 10))
		}
		b.WriteString("</integer>")
	case storable.KindFloat:
		f, _ := storable.ToFloat64(v)
		b.WriteString("<real>")
		b.WriteString(formatReal(f))
		b.WriteString("</real>")
	case storable.KindString:
		s, _ := storable.ToString(v)
		b.WriteString("<string>")
		b.WriteString(escape(s))
		b.WriteString("</string>")
	case storable.KindData:
		d, _ := storable.ToData(v)
		b.WriteString("<data>")
		b.WriteString(base64.StdEncoding.EncodeToString(d))
		b.WriteString("</data>")
	case storable.KindDate:
		t, _ := storable.ToDate(v)
		b.WriteString("<date>")
		b.WriteString(t.UTC().Format("2006-01-02T15:04:05Z"))
		b.WriteString("</date>")
	case storable.KindArray:
		if v.Len() == 0 {
			b.WriteString("<array/>")
			return
		}
		b.WriteString("<array>")
		for i := 0; i < v.Len(); i++ {
			encode(b, v.Index(i))
		}
		b.WriteString("</array>")
	case storable.KindDict:
		if v.Len() == 0 {
			b.WriteString("<dict/>")
			return
		}
		b.WriteString("<dict>")
		for _, key := range v.Keys() {
			b.WriteString("<key>")
			b.WriteString(escape(key))
			b.WriteString("</key>")
			val, _ := v.Get(key)
			encode(b, val)
		}
		b.WriteString("</dict>")
	}
}

// formatReal prints a float the way the reference plist serializer does:
// DBL_DIG+2 (17) significant digits in general format, with fixed
// spellings for the non-finite values and zero.
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "+infinity"
	case math.IsInf(f, -1):
		return "-infinity"
	case f == 0:
		return "0.0"
	default:
		return strconv.FormatFloat(f, 'g', 17, 64)
	}
}

// escape entity-escapes the three characters the reference serializer
// escapes, ampersand first so already-written entities are not escaped
// again. Quotes are intentionally left alone.
func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
