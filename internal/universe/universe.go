// Package universe holds the static instrument list the engine trades.
package universe

import (
	"sort"

	"QuantBoard/internal/model"
)

// Default is the built-in A-share watchlist.
var Default = []model.Instrument{
	{Code: "600519", Name: "贵州茅台"},
	{Code: "000858", Name: "五粮液"},
	{Code: "601318", Name: "中国平安"},
	{Code: "600036", Name: "招商银行"},
	{Code: "000333", Name: "美的集团"},
	{Code: "300750", Name: "宁德时代"},
	{Code: "002594", Name: "比亚迪"},
	{Code: "601012", Name: "隆基绿能"},
	{Code: "600276", Name: "恒瑞医药"},
	{Code: "000001", Name: "平安银行"},
}

// Sorted returns a copy of the instruments ordered by ascending code with
// duplicate codes removed (first occurrence wins).
func Sorted(instruments []model.Instrument) []model.Instrument {
	seen := make(map[string]bool, len(instruments))
	out := make([]model.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if inst.Code == "" || seen[inst.Code] {
			continue
		}
		seen[inst.Code] = true
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup finds an instrument by code.
func Lookup(instruments []model.Instrument, code string) (model.Instrument, bool) {
	for _, inst := range instruments {
		if inst.Code == code {
			return inst, true
		}
	}
	return model.Instrument{}, false
}
