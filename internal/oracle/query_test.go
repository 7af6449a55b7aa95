package oracle

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantURL string
		want    []string
		wantErr bool
	}{
		{
			"coinmarketcap style",
			"json(https://api.coinmarketcap.com/v1/ticker/ethereum/).0.price_usd",
			"https://api.coinmarketcap.com/v1/ticker/ethereum/",
			[]string{"0", "price_usd"},
			false,
		},
		{
			"no path",
			"json(https://rates.example/spot)",
			"https://rates.example/spot",
			nil,
			false,
		},
		{
			"nested path",
			"json(https://rates.example/all).data.BTC.quote.USD.price",
			"https://rates.example/all",
			[]string{"data", "BTC", "quote", "USD", "price"},
			false,
		},
		{"not json", "xml(https://rates.example/spot)", "", nil, true},
		{"unterminated", "json(https://rates.example/spot", "", nil, true},
		{"empty url", "json()", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, path, err := parseQuery(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if url != tt.wantURL {
				t.Errorf("parseQuery() url = %q, want %q", url, tt.wantURL)
			}
			if !reflect.DeepEqual(path, tt.want) {
				t.Errorf("parseQuery() path = %v, want %v", path, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	decode := func(s string) interface{} {
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var doc interface{}
		if err := dec.Decode(&doc); err != nil {
			t.Fatalf("bad fixture: %v", err)
		}
		return doc
	}

	tests := []struct {
		name    string
		doc     string
		path    []string
		want    string
		wantErr bool
	}{
		{"array then key", `[{"price_usd": "30000.25"}]`, []string{"0", "price_usd"}, "30000.25", false},
		{"numeric leaf", `{"price": 412.07}`, []string{"price"}, "412.07", false},
		{"bare number", `30000`, nil, "30000", false},
		{"missing key", `{"price": 1}`, []string{"rate"}, "", true},
		{"index out of range", `[1]`, []string{"5"}, "", true},
		{"non-numeric leaf", `{"price": {"usd": 1}}`, []string{"price"}, "", true},
		{"descend into scalar", `{"price": 1}`, []string{"price", "usd"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract(decode(tt.doc), tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extract() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("extract() = %q, want %q", got, tt.want)
			}
		})
	}
}
