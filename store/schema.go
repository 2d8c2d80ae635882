package store

// Schema is the authoritative database layout. Column names and quoting are
// load-bearing: existing daily_accounting.db files must keep working, so the
// DDL is preserved verbatim.
const Schema = `
CREATE TABLE IF NOT EXISTS broker (
	"Date" TEXT PRIMARY KEY,
	"P&L" REAL,
	"Reporting Error" REAL,
	"Cumulative P&L" REAL,
	"Mark-to-Market" REAL,
	"Change in Dividend Accruals" REAL,
	"Interest" REAL,
	"Dividends" REAL,
	"Deposits & Withdrawals" REAL,
	"Change in Interest Accruals" REAL,
	"Commissions" REAL,
	"Total Broker" REAL
);

CREATE TABLE IF NOT EXISTS other_transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	"Date" TEXT NOT NULL,
	"Amount" REAL,
	"Account Description" TEXT,
	"Transaction Description" TEXT,
	"Counted in P&L" BOOLEAN,
	"Overnight" BOOLEAN,
	"Additional Info" TEXT,
	UNIQUE("Date", "Account Description", "Transaction Description", "Amount")
);

CREATE TABLE IF NOT EXISTS valuation_dates (
	"Date" TEXT PRIMARY KEY,
	"Fund Value" REAL
);

CREATE TABLE IF NOT EXISTS overall (
	"Date" TEXT PRIMARY KEY,
	"Broker P&L" REAL,
	"Total Broker" REAL,
	"Other P&L" REAL,
	"Total Other" REAL,
	"Total P&L" REAL,
	"Period Starting NAV" REAL,
	"Start Fund Value (Accounts Total)" REAL,
	"End Fund Value (Accounts Total)" REAL,
	"Start Fund Value (NAV + Cum. P&L)" REAL,
	"End Fund Value (NAV + Cum. P&L)" REAL,
	"Daily Return" REAL,
	"Period Cumulative Return" REAL
);
`
