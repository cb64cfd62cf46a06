package config

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteTable writes every option and its value, in declaration order.
func (o Options) WriteTable(w io.Writer) error {
	t := table.NewWriter()
	t.SetTitle("Placer Options")
	t.AppendHeader(table.Row{"Option", "Value"})

	appendOptions(t, "", reflect.ValueOf(o))

	_, err := io.WriteString(w, t.Render()+"\n")

	return err
}

func appendOptions(t table.Writer, prefix string, v reflect.Value) {
	typ := v.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			appendOptions(t, prefix+name+".", fv)
			continue
		}

		t.AppendRow(table.Row{prefix + name, formatValue(fv)})
	}
}

func formatValue(v reflect.Value) string {
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%v", v.Interface())
}
