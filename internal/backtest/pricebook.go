package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alphaframe/alphaframe/internal/external/yahoo"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// PriceSource supplies historical daily closes
type PriceSource interface {
	GetDailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]yahoo.Bar, error)
}

// PriceBook holds the full price history for a simulation so the
// walk never goes back to the network. Bars are kept ascending by
// date per ticker.
type PriceBook struct {
	bars map[string][]yahoo.Bar
}

// BuildPriceBook fetches the close series for every ticker up front.
// A ticker whose history cannot be fetched is dropped with a warning;
// an entirely empty book is an error.
func BuildPriceBook(ctx context.Context, src PriceSource, tickers []string, start, end time.Time, log *logger.Logger) (*PriceBook, error) {
	book := &PriceBook{bars: make(map[string][]yahoo.Bar, len(tickers))}

	for _, ticker := range tickers {
		bars, err := src.GetDailyCloses(ctx, ticker, start, end)
		if err != nil {
			log.WithError(err).WithField("ticker", ticker).Warn("Price history fetch failed, ticker dropped")
			continue
		}
		if len(bars) == 0 {
			continue
		}
		sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
		book.bars[ticker] = bars
	}

	if len(book.bars) == 0 {
		return nil, fmt.Errorf("no price history for any of %d tickers", len(tickers))
	}

	return book, nil
}

// CloseOn returns the last close on or before the given date
func (b *PriceBook) CloseOn(ticker string, date time.Time) (float64, bool) {
	bars, ok := b.bars[ticker]
	if !ok {
		return 0, false
	}

	cutoff := endOfDay(date)
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(cutoff) })
	if i == 0 {
		return 0, false
	}
	return bars[i-1].Close, true
}

// PricesOn collects the effective close for every ticker that has one
func (b *PriceBook) PricesOn(date time.Time, tickers []string) map[string]float64 {
	prices := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		if close, ok := b.CloseOn(ticker, date); ok {
			prices[ticker] = close
		}
	}
	return prices
}

// ChangeOver returns the percent change from the first close inside
// the lookback window to the last close on or before the date, plus
// that latest close. At least two bars must fall in the window.
func (b *PriceBook) ChangeOver(ticker string, date time.Time, lookbackDays int) (pct, price float64, ok bool) {
	bars, exists := b.bars[ticker]
	if !exists {
		return 0, 0, false
	}

	cutoff := endOfDay(date)
	from := cutoff.AddDate(0, 0, -lookbackDays)

	var window []yahoo.Bar
	for _, bar := range bars {
		if bar.Date.After(cutoff) {
			break
		}
		if !bar.Date.Before(from) {
			window = append(window, bar)
		}
	}

	if len(window) < 2 || window[0].Close <= 0 {
		return 0, 0, false
	}

	first := window[0].Close
	last := window[len(window)-1].Close
	return (last - first) / first * 100, last, true
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
