package journal

const schema = `
CREATE TABLE IF NOT EXISTS signals (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	strategy TEXT NOT NULL,
	action TEXT NOT NULL,
	confidence REAL NOT NULL,
	reason TEXT NOT NULL,
	price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	amount REAL NOT NULL,
	price REAL NOT NULL,
	value REAL NOT NULL,
	fee REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolio (
	time DATETIME NOT NULL,
	total_value REAL NOT NULL,
	balances TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_symbol_time ON signals(symbol, time);
CREATE INDEX IF NOT EXISTS idx_trades_symbol_time ON trades(symbol, time);
CREATE INDEX IF NOT EXISTS idx_portfolio_time ON portfolio(time);
`
