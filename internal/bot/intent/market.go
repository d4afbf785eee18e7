package intent

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

// MarketData holds the live market figures substituted into reply templates
// at response time. The static table never embeds these values directly;
// separating data from rendering lets operators refresh figures without
// touching the intent table.
type MarketData struct {
	FLAvgHomePrice  int     `yaml:"fl_avg_home_price"`
	MiamiCondoPrice int     `yaml:"miami_condo_price"`
	BTCPrice        int     `yaml:"btc_price"`
	DeFiLoanRate    float64 `yaml:"defi_loan_rate"`
}

// DefaultMarketData returns the built-in market figures.
func DefaultMarketData() MarketData {
	return MarketData{
		FLAvgHomePrice:  450000,
		MiamiCondoPrice: 600000,
		BTCPrice:        60000,
		DeFiLoanRate:    4.5,
	}
}

// ParseMarketData decodes a market data YAML document. Zero-valued fields
// fall back to the built-in defaults so a partial file stays usable.
func ParseMarketData(data []byte) (MarketData, error) {
	md := DefaultMarketData()
	if err := yaml.Unmarshal(data, &md); err != nil {
		return MarketData{}, fmt.Errorf("market data parse: %w", err)
	}
	return md, nil
}

// RenderReply substitutes market data values into a reply template. A
// template that fails to parse or execute is returned verbatim: a stale
// placeholder in the reply text beats dropping the reply entirely.
func RenderReply(reply string, md MarketData) string {
	tmpl, err := template.New("reply").Option("missingkey=error").Parse(reply)
	if err != nil {
		return reply
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, md); err != nil {
		return reply
	}
	return buf.String()
}
