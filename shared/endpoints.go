package shared

// Exchange endpoints referenced by URL-prefix matching. Requests and
// validators must agree on these exactly.
const (
	RiskURL        = "https://papi.binance.com/papi/v1/um/positionRisk"
	BalanceURL     = "https://papi.binance.com/papi/v1/balance"
	SpotBalanceURL = "https://api.binance.com/api/v3/account"
)

// UnifiedURLs are the portfolio-margin endpoints, in request order.
var UnifiedURLs = []string{RiskURL, BalanceURL}

// SpotURLs are the spot endpoints.
var SpotURLs = []string{SpotBalanceURL}
