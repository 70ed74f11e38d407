package models

import (
	"fmt"
	"strings"
)

// MarketProfile encapsulates market-specific trading conventions used when
// generating and executing allocations.
type MarketProfile struct {
	Code            string
	Name            string
	Timezone        string
	Currency        string
	LotSize         int
	TickSize        float64
	StampDuty       float64
	ShortFee        float64
	MinCommission   float64
	CommissionRates map[string]float64
	HolidayCalendar string
	SettlementDays  int
}

var marketProfiles = map[string]MarketProfile{
	"cn": {
		Code:            "cn",
		Name:            "A-Shares",
		Timezone:        "Asia/Shanghai",
		Currency:        "CNY",
		LotSize:         100,
		TickSize:        0.01,
		StampDuty:       0.001,
		MinCommission:   5.0,
		CommissionRates: map[string]float64{"stock": 0.0003, "etf": 0.0002},
		HolidayCalendar: "XSHG",
		SettlementDays:  1,
	},
	"us": {
		Code:            "us",
		Name:            "US Equities",
		Timezone:        "America/New_York",
		Currency:        "USD",
		LotSize:         1,
		TickSize:        0.01,
		ShortFee:        0.0005,
		CommissionRates: map[string]float64{"stock": 0.0005, "option": 0.015},
		HolidayCalendar: "XNYS",
		SettlementDays:  2,
	},
	"hk": {
		Code:            "hk",
		Name:            "Hong Kong Equities",
		Timezone:        "Asia/Hong_Kong",
		Currency:        "HKD",
		LotSize:         100,
		TickSize:        0.01,
		StampDuty:       0.001,
		MinCommission:   10.0,
		CommissionRates: map[string]float64{"stock": 0.00027},
		HolidayCalendar: "XHKG",
		SettlementDays:  2,
	},
	"crypto": {
		Code:            "crypto",
		Name:            "Crypto Spot",
		Timezone:        "UTC",
		Currency:        "USD",
		LotSize:         1,
		TickSize:        0.01,
		CommissionRates: map[string]float64{"spot": 0.0005},
	},
}

// ProfileFor resolves a market code to its profile. Unknown codes are a
// configuration error surfaced before any date is processed.
func ProfileFor(code string) (MarketProfile, error) {
	p, ok := marketProfiles[strings.ToLower(code)]
	if !ok {
		return MarketProfile{}, fmt.Errorf("unknown market code %q, available: %v", code, MarketCodes())
	}
	return p, nil
}

// MarketCodes lists the supported market codes.
func MarketCodes() []string {
	codes := make([]string, 0, len(marketProfiles))
	for _, code := range []string{"cn", "us", "hk", "crypto"} {
		if _, ok := marketProfiles[code]; ok {
			codes = append(codes, code)
		}
	}
	return codes
}
