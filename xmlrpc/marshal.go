package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"reflect"
	"sort"
	"time"
)

const dateTimeLayout = "20060102T15:04:05"

// Marshal serializes method and params into an XML-RPC <methodCall>
// request document under the given Format. It is a pure function: equal
// (method, params, format) triples always yield byte-identical output,
// which is what lets the Two-Stage dispatcher encode a shared request
// body once per distinct Format and reuse it across every proxy in the
// group.
func Marshal(method string, params []any, format Format) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("<?xml version=\"1.0\"")
	if format.Encoding != "" {
		buf.WriteString(` encoding="`)
		buf.WriteString(format.Encoding)
		buf.WriteString(`"`)
	}
	buf.WriteString("?>\n<methodCall><methodName>")
	if err := xml.EscapeText(&buf, []byte(method)); err != nil {
		return nil, fmt.Errorf("xmlrpc: marshal method name: %w", err)
	}
	buf.WriteString("</methodName><params>")

	for _, p := range params {
		buf.WriteString("<param><value>")
		if err := writeValue(&buf, reflect.ValueOf(p), format.AllowNone); err != nil {
			return nil, err
		}
		buf.WriteString("</value></param>")
	}

	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v reflect.Value, allowNone bool) error {
	if !v.IsValid() || (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		if !allowNone {
			return fmt.Errorf("xmlrpc: nil value not allowed (allow-none is off)")
		}
		buf.WriteString("<nil/>")
		return nil
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fmt.Fprintf(buf, "<int>%d</int>", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		fmt.Fprintf(buf, "<int>%d</int>", v.Uint())
	case reflect.Float32, reflect.Float64:
		fmt.Fprintf(buf, "<double>%v</double>", v.Float())
	case reflect.String:
		buf.WriteString("<string>")
		if err := xml.EscapeText(buf, []byte(v.String())); err != nil {
			return fmt.Errorf("xmlrpc: marshal string: %w", err)
		}
		buf.WriteString("</string>")
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			buf.WriteString("<dateTime.iso8601>")
			buf.WriteString(t.UTC().Format(dateTimeLayout))
			buf.WriteString("</dateTime.iso8601>")
			return nil
		}
		return fmt.Errorf("xmlrpc: unsupported struct type %s", v.Type())
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			data, ok := v.Interface().([]byte)
			if !ok {
				data = make([]byte, v.Len())
				reflect.Copy(reflect.ValueOf(data), v)
			}
			buf.WriteString("<base64>")
			buf.WriteString(base64.StdEncoding.EncodeToString(data))
			buf.WriteString("</base64>")
			return nil
		}
		buf.WriteString("<array><data>")
		for i := 0; i < v.Len(); i++ {
			buf.WriteString("<value>")
			if err := writeValue(buf, v.Index(i), allowNone); err != nil {
				return err
			}
			buf.WriteString("</value>")
		}
		buf.WriteString("</data></array>")
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("xmlrpc: struct map must have string keys, got %s", v.Type())
		}
		buf.WriteString("<struct>")
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, key := range keys {
			buf.WriteString("<member><name>")
			if err := xml.EscapeText(buf, []byte(key.String())); err != nil {
				return fmt.Errorf("xmlrpc: marshal member name: %w", err)
			}
			buf.WriteString("</name><value>")
			if err := writeValue(buf, v.MapIndex(key), allowNone); err != nil {
				return err
			}
			buf.WriteString("</value></member>")
		}
		buf.WriteString("</struct>")
	default:
		return fmt.Errorf("xmlrpc: unsupported value kind %s", v.Kind())
	}
	return nil
}
