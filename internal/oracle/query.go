package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Collectors carry oraclize-style price query descriptors of the form
//
//	json(https://host/path).0.price_usd
//
// parseQuery splits the descriptor into the URL to fetch and the dot-path
// to walk through the decoded JSON document.
func parseQuery(query string) (url string, path []string, err error) {
	if !strings.HasPrefix(query, "json(") {
		return "", nil, fmt.Errorf("unsupported price query %q", query)
	}
	end := strings.LastIndex(query, ")")
	if end < 0 {
		return "", nil, fmt.Errorf("unterminated price query %q", query)
	}

	url = query[len("json("):end]
	if url == "" {
		return "", nil, fmt.Errorf("empty url in price query %q", query)
	}

	rest := strings.TrimPrefix(query[end+1:], ".")
	if rest != "" {
		path = strings.Split(rest, ".")
	}
	return url, path, nil
}

// extract walks a decoded JSON document along the descriptor path. Numeric
// tokens index arrays, everything else keys objects.
func extract(doc interface{}, path []string) (json.Number, error) {
	node := doc
	for _, token := range path {
		switch v := node.(type) {
		case []interface{}:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(v) {
				return "", fmt.Errorf("bad array index %q", token)
			}
			node = v[i]
		case map[string]interface{}:
			child, ok := v[token]
			if !ok {
				return "", fmt.Errorf("missing key %q", token)
			}
			node = child
		default:
			return "", fmt.Errorf("cannot descend into %T with %q", node, token)
		}
	}

	switch v := node.(type) {
	case json.Number:
		return v, nil
	case string:
		return json.Number(v), nil
	default:
		return "", fmt.Errorf("price is %T, want number or string", node)
	}
}
