package exchange

// Strategy identifiers understood by the default parsers.
const (
	StrategyWikiTable = "wiki_table"
	StrategyCSV       = "csv"
	StrategyLines     = "lines"
)

var (
	// US listings are already in Yahoo form.
	usTicker    = Rewrite{Pattern: `^([A-Z]{1,5})$`, Replace: `${1}`}
	lseTicker   = Rewrite{Pattern: `^([A-Z]{2,4})$`, Replace: `${1}.L`}
	athexTicker = Rewrite{Pattern: `^Athex:\s*(\w*)\s*(\[.+)?`, Replace: `${1}.AT`}
	sseTicker   = Rewrite{Pattern: `^SSE:\s*(\d+)$`, Replace: `${1}.SS`}
	szseTicker  = Rewrite{Pattern: `^SZSE:\s*(\d+)$`, Replace: `${1}.SZ`}
)

// DefaultSpecs lists the indices the collector knows out of the box.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			ID:       "DJIA",
			Name:     "Dow Jones Industrial Average",
			Source:   "https://en.wikipedia.org/wiki/Dow_Jones_Industrial_Average",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 2, Column: "Symbol", Rewrites: []Rewrite{usTicker}},
		},
		{
			ID:       "SNP_500",
			Name:     "S&P 500",
			Source:   "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 0, Column: "Symbol", Rewrites: []Rewrite{usTicker}},
		},
		{
			ID:       "NASDAQ_100",
			Name:     "Nasdaq-100",
			Source:   "https://en.wikipedia.org/wiki/Nasdaq-100",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 4, Column: "Symbol", Rewrites: []Rewrite{usTicker}},
		},
		{
			ID:       "FTSE_100",
			Name:     "FTSE 100",
			Source:   "https://en.wikipedia.org/wiki/FTSE_100_Index",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 4, Column: "Ticker", Rewrites: []Rewrite{lseTicker}},
		},
		{
			ID:       "FTSE_250",
			Name:     "FTSE 250",
			Source:   "https://en.wikipedia.org/wiki/FTSE_250_Index",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 3, Column: "Ticker", Rewrites: []Rewrite{lseTicker}},
		},
		{
			ID:       "ATHEX",
			Name:     "FTSE/Athex Large Cap",
			Source:   "https://en.wikipedia.org/wiki/FTSE/Athex_Large_Cap",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 2, Column: "Traded as", Rewrites: []Rewrite{athexTicker}},
		},
		{
			ID:       "CSI_100",
			Name:     "CSI 100",
			Source:   "https://en.wikipedia.org/wiki/CSI_100_Index",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 3, Column: "Ticker", Rewrites: []Rewrite{sseTicker, szseTicker}},
		},
		{
			ID:       "CSI_300",
			Name:     "CSI 300",
			Source:   "https://en.wikipedia.org/wiki/CSI_300_Index",
			Strategy: StrategyWikiTable,
			Options:  ParseOptions{Table: 3, Column: "Ticker", Rewrites: []Rewrite{sseTicker, szseTicker}},
		},
	}
}

// Default returns a registry populated with DefaultSpecs.
func Default() *Registry {
	r := NewRegistry()
	for _, s := range DefaultSpecs() {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}
