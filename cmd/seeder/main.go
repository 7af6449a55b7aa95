// Seeder registers the initial collector set, refiller set and direct
// funding mappings against a running instance. Safe to rerun: duplicate
// collectors and identical mappings are reported and skipped.
package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type seedCollector struct {
	Symbol     string `json:"symbol"`
	Decimals   uint8  `json:"decimals"`
	PriceQuery string `json:"price_query"`
}

var collectors = []seedCollector{
	{"ETH", 18, "json(https://api.coinmarketcap.com/v1/ticker/ethereum/).0.price_usd"},
	{"BTC", 8, "json(https://api.coinmarketcap.com/v1/ticker/bitcoin/).0.price_usd"},
}

func main() {
	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	owner := os.Getenv("OWNER_ADDRESS")
	if owner == "" {
		log.Fatal("OWNER_ADDRESS environment variable is required")
	}

	client := &http.Client{Timeout: 5 * time.Second}

	log.Println("--- Seeding Collectors ---")
	for _, c := range collectors {
		post(client, baseURL+"/api/v1/collectors", owner, c)
	}

	log.Println("--- Seeding Refillers ---")
	for _, addr := range splitList(os.Getenv("REFILLER_ADDRESSES")) {
		post(client, baseURL+"/api/v1/refillers", owner, map[string]string{"address": addr})
	}

	// DIRECT_FUNDERS is a comma list of address:funderId pairs
	log.Println("--- Seeding Direct Funders ---")
	for _, pair := range splitList(os.Getenv("DIRECT_FUNDERS")) {
		sep := strings.LastIndex(pair, ":")
		if sep <= 0 {
			log.Fatalf("Bad DIRECT_FUNDERS entry %q, want address:funderId", pair)
		}
		funderID, err := strconv.ParseUint(pair[sep+1:], 10, 64)
		if err != nil {
			log.Fatalf("Bad DIRECT_FUNDERS entry %q: %v", pair, err)
		}
		post(client, baseURL+"/api/v1/funders/direct", owner, map[string]interface{}{
			"address":   pair[:sep],
			"funder_id": funderID,
		})
	}

	log.Println("Seeding complete.")
}

func post(client *http.Client, url, caller string, payload interface{}) {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Caller-Address", caller)

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		log.Printf("POST %s -> %d", url, resp.StatusCode)
	case resp.StatusCode == http.StatusConflict:
		log.Printf("POST %s -> already present, skipping", url)
	default:
		log.Fatalf("POST %s -> unexpected status %d", url, resp.StatusCode)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
