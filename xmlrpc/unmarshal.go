package xmlrpc

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// valueNode mirrors the XML-RPC <value> grammar: at most one of its
// typed fields is present per instance. This mirrors the
// Encoder/Decoder split used by the xmlrpc clients in the retrieval
// pack, declaratively instead of via a hand-rolled token walk.
type valueNode struct {
	Int      *string     `xml:"int"`
	I4       *string     `xml:"i4"`
	Boolean  *string     `xml:"boolean"`
	String   *string     `xml:"string"`
	Double   *string     `xml:"double"`
	DateTime *string     `xml:"dateTime.iso8601"`
	Base64   *string     `xml:"base64"`
	Struct   *structNode `xml:"struct"`
	Array    *arrayNode  `xml:"array"`
	Nil      *struct{}   `xml:"nil"`
	CharData string      `xml:",chardata"`
}

type memberNode struct {
	Name  string    `xml:"name"`
	Value valueNode `xml:"value"`
}

type structNode struct {
	Members []memberNode `xml:"member"`
}

type arrayNode struct {
	Values []valueNode `xml:"data>value"`
}

type methodResponseNode struct {
	XMLName xml.Name    `xml:"methodResponse"`
	Params  *paramsNode `xml:"params"`
	Fault   *valueNode  `xml:"fault>value"`
}

type paramsNode struct {
	Params []paramNode `xml:"param"`
}

type paramNode struct {
	Value valueNode `xml:"value"`
}

// Unmarshal decodes an XML-RPC <methodResponse> document. A response
// carrying <fault> yields a non-nil Fault and a nil values slice; a
// normal response yields the decoded param values and a nil Fault.
func Unmarshal(body []byte) (values []any, fault *Fault, err error) {
	var resp methodResponseNode
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("xmlrpc: decode response: %w", err)
	}

	if resp.Fault != nil {
		fv, err := resp.Fault.toGo()
		if err != nil {
			return nil, nil, fmt.Errorf("xmlrpc: decode fault: %w", err)
		}
		members, ok := fv.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("xmlrpc: fault value is not a struct")
		}
		f := &Fault{}
		if code, ok := members["faultCode"]; ok {
			f.Code = toInt(code)
		}
		if msg, ok := members["faultString"]; ok {
			if s, ok := msg.(string); ok {
				f.Message = s
			}
		}
		return nil, f, nil
	}

	if resp.Params == nil {
		return nil, nil, nil
	}
	values = make([]any, 0, len(resp.Params.Params))
	for _, p := range resp.Params.Params {
		v, err := p.Value.toGo()
		if err != nil {
			return nil, nil, err
		}
		values = append(values, v)
	}
	return values, nil, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func (v *valueNode) toGo() (any, error) {
	switch {
	case v.Int != nil:
		return parseInt(*v.Int)
	case v.I4 != nil:
		return parseInt(*v.I4)
	case v.Boolean != nil:
		return strings.TrimSpace(*v.Boolean) == "1", nil
	case v.String != nil:
		return *v.String, nil
	case v.Double != nil:
		f, err := strconv.ParseFloat(strings.TrimSpace(*v.Double), 64)
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: decode double: %w", err)
		}
		return f, nil
	case v.DateTime != nil:
		t, err := time.Parse(dateTimeLayout, strings.TrimSpace(*v.DateTime))
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: decode dateTime.iso8601: %w", err)
		}
		return t, nil
	case v.Base64 != nil:
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*v.Base64))
		if err != nil {
			return nil, fmt.Errorf("xmlrpc: decode base64: %w", err)
		}
		return data, nil
	case v.Nil != nil:
		return nil, nil
	case v.Struct != nil:
		m := make(map[string]any, len(v.Struct.Members))
		for _, member := range v.Struct.Members {
			mv, err := member.Value.toGo()
			if err != nil {
				return nil, err
			}
			m[member.Name] = mv
		}
		return m, nil
	case v.Array != nil:
		arr := make([]any, 0, len(v.Array.Values))
		for i := range v.Array.Values {
			av, err := v.Array.Values[i].toGo()
			if err != nil {
				return nil, err
			}
			arr = append(arr, av)
		}
		return arr, nil
	default:
		// No typed child element: XML-RPC treats a bare <value> as an
		// implicit string.
		return v.CharData, nil
	}
}

func parseInt(s string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("xmlrpc: decode int: %w", err)
	}
	return n, nil
}
