package engine

// Collector is a registered accepted currency. Index 0 is reserved for the
// native currency; entries are append-only and immutable once added.
type Collector struct {
	Symbol     string `json:"symbol"`
	Decimals   uint8  `json:"decimals"`
	PriceQuery string `json:"price_query"`
}

// AddCollector registers a new accepted currency and returns its index.
// Owner only. Symbols are unique; decimals may not exceed the native
// currency's precision.
func (e *Engine) AddCollector(caller, symbol string, decimals uint8, priceQuery string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOwner(caller) {
		return 0, ErrUnauthorized
	}
	if decimals > nativeDecimals {
		return 0, ErrInvalidDecimals
	}
	for _, c := range e.collectors {
		if c.Symbol == symbol {
			return 0, ErrDuplicateSymbol
		}
	}

	e.collectors = append(e.collectors, Collector{
		Symbol:     symbol,
		Decimals:   decimals,
		PriceQuery: priceQuery,
	})
	return len(e.collectors) - 1, nil
}

// Collector returns the registered currency at index.
func (e *Engine) Collector(index int) (Collector, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.collectors) {
		return Collector{}, ErrNotFound
	}
	return e.collectors[index], nil
}

// Collectors returns a copy of the full registry in index order.
func (e *Engine) Collectors() []Collector {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Collector, len(e.collectors))
	copy(out, e.collectors)
	return out
}

// CollectorsCount returns the number of registered currencies.
func (e *Engine) CollectorsCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.collectors)
}
