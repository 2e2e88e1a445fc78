package translationloader

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/message"
)

// valuePrinter converts replacement values to text using the number formatting of a locale.
type valuePrinter struct {
	p *message.Printer
}

func newValuePrinter(l Locale) valuePrinter {
	return valuePrinter{p: message.NewPrinter(l.Tag())}
}

func (vp valuePrinter) format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return vp.p.Sprintf("%d", v)
	case float32, float64:
		return vp.p.Sprintf("%.2f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	}

	valueOf := reflect.ValueOf(value)

	switch valueOf.Kind() {
	case reflect.String:
		return valueOf.String()
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, valueOf.Len())
		for i := 0; i < valueOf.Len(); i++ {
			parts = append(parts, vp.format(valueOf.Index(i).Interface()))
		}

		return strings.Join(parts, ", ")
	case reflect.Map:
		parts := make([]string, 0, valueOf.Len())
		for _, key := range valueOf.MapKeys() {
			parts = append(parts, fmt.Sprintf("%s: %s", vp.format(key.Interface()), vp.format(valueOf.MapIndex(key).Interface())))
		}

		// Map iteration order is random.
		sort.Strings(parts)

		return strings.Join(parts, ", ")
	}

	return fmt.Sprint(value)
}
