package notifier

import (
	"fmt"
	"strings"

	"QuantBoard/internal/model"
)

// maxTradeLines caps the trade ledger excerpt in a backtest report.
const maxTradeLines = 10

// FormatBacktestReport formats a finished backtest as an HTML message.
func FormatBacktestReport(res *model.BacktestResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>QuantBoard 回测报告</b> | %s ~ %s\n\n",
		res.Start.Format(model.DateLayout), res.End.Format(model.DateLayout)))

	b.WriteString(fmt.Sprintf("初始资金: ¥%.2f\n", res.InitialCapital))
	b.WriteString(fmt.Sprintf("期末市值: ¥%.2f\n", res.FinalValue))
	b.WriteString(fmt.Sprintf("总收益: ¥%+.2f (%+.2f%%)\n", res.TotalProfit, res.TotalReturnPct))
	b.WriteString(fmt.Sprintf("交易次数: %d (买入 %d / 卖出 %d)\n\n", res.TradeCount, res.BuyCount, res.SellCount))

	m := res.Metrics
	b.WriteString("📈 <b>绩效指标:</b>\n")
	b.WriteString(fmt.Sprintf("  胜率: %.2f%%\n", m.WinRate))
	b.WriteString(fmt.Sprintf("  最大回撤: %.2f%%\n", m.MaxDrawdownPct))
	b.WriteString(fmt.Sprintf("  已实现盈亏: ¥%+.2f\n", m.RealizedProfit))
	b.WriteString(fmt.Sprintf("  浮动盈亏: ¥%+.2f\n", m.UnrealizedProfit))

	if len(res.Trades) > 0 {
		b.WriteString("\n💰 <b>最近交易:</b>\n")
		trades := res.Trades
		if len(trades) > maxTradeLines {
			trades = trades[len(trades)-maxTradeLines:]
		}
		for _, tr := range trades {
			b.WriteString(fmt.Sprintf("  %s %s %s(%s) %d股 @%.2f",
				tr.Date.Format(model.DateLayout), tr.Action, tr.Name, tr.Code, tr.Shares, tr.Price))
			if tr.Action == model.ActionSell {
				b.WriteString(fmt.Sprintf(" 盈亏 %+.2f", tr.Profit))
			}
			b.WriteString(fmt.Sprintf(" [%s]\n", tr.Reason))
		}
	}

	if len(res.OpenPositions) > 0 {
		b.WriteString("\n📦 <b>持仓:</b>\n")
		for _, p := range res.OpenPositions {
			b.WriteString(fmt.Sprintf("  %s(%s) %d股 成本 %.2f 现价 %.2f 市值 ¥%.2f\n",
				p.Name, p.Code, p.Shares, p.CostBasis, p.LastPrice, p.MarketValue))
		}
	}

	return b.String()
}

// FormatSnapshot formats the watchlist snapshot for display.
func FormatSnapshot(snap *model.Snapshot) string {
	var b strings.Builder
	st := snap.Stats
	b.WriteString(fmt.Sprintf("📋 <b>自选股快照</b> | %s\n\n", snap.AsOf.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("共 %d 只: 上涨 %d / 下跌 %d / 平盘 %d, 平均涨跌 %+.2f%%\n",
		st.Total, st.Up, st.Down, st.Flat, st.AvgChangePct))

	writeQuotes := func(title string, quotes []model.Quote) {
		if len(quotes) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("\n%s\n", title))
		for _, q := range quotes {
			b.WriteString(fmt.Sprintf("  %s(%s) %.2f %+.2f%% RSI %.1f\n", q.Name, q.Code, q.Price, q.ChangePct, q.RSI))
		}
	}
	writeQuotes("🟢 <b>买入信号:</b>", snap.BuyQuotes)
	writeQuotes("🔴 <b>卖出信号:</b>", snap.SellQuotes)

	if len(snap.BuyQuotes) == 0 && len(snap.SellQuotes) == 0 {
		b.WriteString("\n今日无信号\n")
	}
	return b.String()
}
