package grant

import (
	"net/url"
	"strings"
)

// Param is one ordered key/value pair destined for a redirect URI. Plain
// url.Values cannot serve here: its encoder sorts keys, and the protocol
// serializations are ordered.
type Param struct {
	Key   string
	Value string
}

// AddParamsToURI appends params to uri, preserving their order. With
// fragment set, parameters land in the URI fragment instead of the query
// string; implicit-grant responses require that so tokens never show up in
// server logs as query strings.
func AddParamsToURI(uri string, params []Param, fragment bool) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}

	encoded := encodeParams(params)
	if fragment {
		existing := u.EscapedFragment()
		u.Fragment = ""
		u.RawFragment = ""
		base := u.String()
		if existing != "" {
			encoded = existing + "&" + encoded
		}
		return base + "#" + encoded, nil
	}

	if u.RawQuery != "" {
		u.RawQuery += "&" + encoded
	} else {
		u.RawQuery = encoded
	}
	return u.String(), nil
}

// IsAbsoluteURI reports whether s is a syntactically absolute URI per RFC
// 3986: it parses and carries a scheme.
func IsAbsoluteURI(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.IsAbs()
}

func encodeParams(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
