package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"

	"github.com/dreampivot/trader/market"
)

// Binance is the live spot exchange backed by the Binance REST API.
type Binance struct {
	client *binance.Client
	log    zerolog.Logger
}

// NewBinance creates a Binance client. With testnet set, all requests go
// to the spot testnet instead of production.
func NewBinance(apiKey, apiSecret string, testnet bool, log zerolog.Logger) *Binance {
	if testnet {
		binance.UseTestnet = true
	}
	return &Binance{
		client: binance.NewClient(apiKey, apiSecret),
		log:    log.With().Str("exchange", "binance").Logger(),
	}
}

func (b *Binance) Name() string { return "binance" }

// Connect pings the API to verify reachability and credentials wiring.
func (b *Binance) Connect(ctx context.Context) error {
	if err := b.client.NewPingService().Do(ctx); err != nil {
		return fmt.Errorf("binance ping: %w", err)
	}
	b.log.Debug().Msg("connected")
	return nil
}

// FetchCandles loads recent klines for the symbol, oldest first.
func (b *Binance) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) (market.Series, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(market.FlattenSymbol(symbol)).
		Interval(timeframe).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s %s: %w", symbol, timeframe, err)
	}

	series := make(market.Series, 0, len(klines))
	for _, k := range klines {
		candle, err := klineToCandle(k)
		if err != nil {
			return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
		}
		series = append(series, candle)
	}
	return series, nil
}

// FetchTicker returns the 24h stats snapshot for the symbol.
func (b *Binance) FetchTicker(ctx context.Context, symbol string) (market.Ticker, error) {
	stats, err := b.client.NewListPriceChangeStatsService().
		Symbol(market.FlattenSymbol(symbol)).
		Do(ctx)
	if err != nil {
		return market.Ticker{}, fmt.Errorf("fetch ticker %s: %w", symbol, err)
	}
	if len(stats) == 0 {
		return market.Ticker{}, fmt.Errorf("fetch ticker %s: no data", symbol)
	}

	s := stats[0]
	last, _ := strconv.ParseFloat(s.LastPrice, 64)
	bid, _ := strconv.ParseFloat(s.BidPrice, 64)
	ask, _ := strconv.ParseFloat(s.AskPrice, 64)
	volume, _ := strconv.ParseFloat(s.Volume, 64)

	return market.Ticker{
		Symbol: symbol,
		Bid:    bid,
		Ask:    ask,
		Last:   last,
		Volume: volume,
		Time:   time.UnixMilli(s.CloseTime),
	}, nil
}

// FetchBalances returns the non-zero spot balances.
func (b *Binance) FetchBalances(ctx context.Context) (map[string]market.Balance, error) {
	account, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}

	out := make(map[string]market.Balance)
	for _, bal := range account.Balances {
		free, _ := strconv.ParseFloat(bal.Free, 64)
		locked, _ := strconv.ParseFloat(bal.Locked, 64)
		if free == 0 && locked == 0 {
			continue
		}
		out[bal.Asset] = market.Balance{
			Currency: bal.Asset,
			Free:     free,
			Used:     locked,
			Total:    free + locked,
		}
	}
	return out, nil
}

// CreateOrder places a spot order. Market orders report the average fill
// price; limit orders report the requested price.
func (b *Binance) CreateOrder(ctx context.Context, symbol string, side market.Side, orderType market.OrderType, amount, price float64) (market.Order, error) {
	svc := b.client.NewCreateOrderService().
		Symbol(market.FlattenSymbol(symbol)).
		Side(binanceSide(side)).
		Quantity(strconv.FormatFloat(amount, 'f', 8, 64))

	switch orderType {
	case market.Limit:
		svc = svc.Type(binance.OrderTypeLimit).
			TimeInForce(binance.TimeInForceTypeGTC).
			Price(strconv.FormatFloat(price, 'f', 8, 64))
	default:
		svc = svc.Type(binance.OrderTypeMarket)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return market.Order{}, fmt.Errorf("create %s %s order %s: %w", side, orderType, symbol, err)
	}

	fillPrice := price
	if avg := averageFillPrice(resp.Fills); avg > 0 {
		fillPrice = avg
	}

	order := market.Order{
		ID:     strconv.FormatInt(resp.OrderID, 10),
		Symbol: symbol,
		Side:   side,
		Type:   orderType,
		Amount: amount,
		Price:  fillPrice,
		Status: string(resp.Status),
		Time:   time.UnixMilli(resp.TransactTime),
	}

	b.log.Info().
		Str("symbol", symbol).
		Str("side", string(side)).
		Float64("amount", amount).
		Float64("price", fillPrice).
		Str("order_id", order.ID).
		Msg("order placed")

	return order, nil
}

// CancelOrder cancels an open order by exchange order ID.
func (b *Binance) CancelOrder(ctx context.Context, orderID, symbol string) (bool, error) {
	oid, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("cancel order: bad id %q: %w", orderID, err)
	}
	_, err = b.client.NewCancelOrderService().
		Symbol(market.FlattenSymbol(symbol)).
		OrderID(oid).
		Do(ctx)
	if err != nil {
		return false, fmt.Errorf("cancel order %s on %s: %w", orderID, symbol, err)
	}
	return true, nil
}

func binanceSide(side market.Side) binance.SideType {
	if side == market.Sell {
		return binance.SideTypeSell
	}
	return binance.SideTypeBuy
}

func averageFillPrice(fills []*binance.Fill) float64 {
	var qty, value float64
	for _, f := range fills {
		p, _ := strconv.ParseFloat(f.Price, 64)
		q, _ := strconv.ParseFloat(f.Quantity, 64)
		qty += q
		value += p * q
	}
	if qty == 0 {
		return 0
	}
	return value / qty
}

func klineToCandle(k *binance.Kline) (market.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("bad open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("bad high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("bad low %q: %w", k.Low, err)
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("bad close %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return market.Candle{}, fmt.Errorf("bad volume %q: %w", k.Volume, err)
	}
	return market.Candle{
		Time:   time.UnixMilli(k.OpenTime),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
