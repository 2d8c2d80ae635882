// Package report renders a date-ranged Excel workbook from the store: the
// overall ledger, the brokerage snapshots, and the other transactions, one
// sheet each. Return columns are written as live formulas so reviewers can
// trace them in the spreadsheet.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/linksignis/navledger/ledger"
	"github.com/linksignis/navledger/store"
)

const (
	sheetOverall = "Overall"
	sheetBroker  = "Brokerage Account"
	sheetOther   = "Other Transactions"

	// Whole numbers with parentheses for negatives, the statement style.
	moneyFormat   = "#,##0;(#,##0)"
	percentFormat = "0.00%"
)

var overallHeader = []string{
	"Date", "Broker P&L", "Total Broker", "Other P&L", "Total Other",
	"Total P&L", "Period Starting NAV",
	"Start Fund Value (Accounts Total)", "End Fund Value (Accounts Total)",
	"Start Fund Value (NAV + Cum. P&L)", "End Fund Value (NAV + Cum. P&L)",
	"Daily Fund Return", "Period Cumulative Return",
}

var brokerHeader = []string{
	"Date", "P&L", "Reporting Error", "Cumulative P&L", "Mark-to-Market",
	"Change in Dividend Accruals", "Interest", "Dividends",
	"Deposits & Withdrawals", "Change in Interest Accruals", "Commissions",
	"Total Broker",
}

var otherHeader = []string{
	"Date", "Amount", "Account Description", "Transaction Description",
	"Counted in P&L", "Overnight", "Additional Info",
}

// Generate writes the workbook for [start, end] to path. It fails when no
// brokerage data falls in the range; the other sheets are omitted when
// empty.
func Generate(st *store.Store, start, end ledger.Date, path string, log *zap.Logger) error {
	overall, err := st.OverallBetween(start, end)
	if err != nil {
		return err
	}
	broker, err := brokerDaysBetween(st, start, end)
	if err != nil {
		return err
	}
	if len(broker) == 0 {
		return fmt.Errorf("no broker data between %s and %s", start, end)
	}
	other, err := otherTransactionsBetween(st, start, end)
	if err != nil {
		return err
	}

	if n := ValidateBrokerPL(broker, log); n > 0 {
		log.Warn("broker P&L discrepancies in report range", zap.Int("count", n))
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := []string{sheetBroker}
	if len(overall) > 0 {
		sheets = []string{sheetOverall, sheetBroker}
	}

	if len(overall) > 0 {
		if err := writeOverall(f, overall); err != nil {
			return err
		}
	}
	if err := writeBroker(f, broker); err != nil {
		return err
	}
	if len(other) > 0 {
		if err := writeOther(f, other); err != nil {
			return err
		}
		sheets = append(sheets, sheetOther)
	}

	// The default sheet is replaced by whichever comes first.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	idx, err := f.GetSheetIndex(sheets[0])
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	log.Info("report generated",
		zap.String("path", path),
		zap.Strings("sheets", sheets),
		zap.Stringer("start", start),
		zap.Stringer("end", end))
	return nil
}

func writeOverall(f *excelize.File, rows []ledger.Row) error {
	if _, err := f.NewSheet(sheetOverall); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetOverall, "A1", &overallHeader); err != nil {
		return err
	}

	money, percent, err := styles(f)
	if err != nil {
		return err
	}

	for i, r := range rows {
		rowNum := i + 2
		values := []any{
			r.Date.String(),
			cellValue(r.BrokerPL),
			cellValue(r.TotalBroker),
			r.OtherPL,
			r.TotalOther,
			r.TotalPL,
			cellValue(r.PeriodStartingNAV),
			r.StartFundValue,
			r.EndFundValue,
			cellValue(r.StartFundValueNAV),
			cellValue(r.EndFundValueNAV),
		}
		cell := fmt.Sprintf("A%d", rowNum)
		if err := f.SetSheetRow(sheetOverall, cell, &values); err != nil {
			return err
		}

		// Live formulas so the returns stay auditable in the workbook.
		daily := fmt.Sprintf("J%d", rowNum)
		if err := f.SetCellFormula(sheetOverall, fmt.Sprintf("L%d", rowNum),
			fmt.Sprintf("F%d/%s", rowNum, daily)); err != nil {
			return err
		}

		var periodFormula string
		if i == 0 {
			periodFormula = fmt.Sprintf("F%d/G%d", rowNum, rowNum)
		} else {
			// A new period starting NAV resets the cumulative return.
			periodFormula = fmt.Sprintf("IF(G%d<>G%d,F%d/G%d,(M%d*G%d+F%d)/G%d)",
				rowNum, rowNum-1, rowNum, rowNum, rowNum-1, rowNum-1, rowNum, rowNum)
		}
		if err := f.SetCellFormula(sheetOverall, fmt.Sprintf("M%d", rowNum), periodFormula); err != nil {
			return err
		}
	}

	last := len(rows) + 1
	if err := f.SetCellStyle(sheetOverall, "B2", fmt.Sprintf("K%d", last), money); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetOverall, "L2", fmt.Sprintf("M%d", last), percent); err != nil {
		return err
	}
	return f.SetColWidth(sheetOverall, "A", "A", 12)
}

func writeBroker(f *excelize.File, days []ledger.BrokerDay) error {
	if _, err := f.NewSheet(sheetBroker); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetBroker, "A1", &brokerHeader); err != nil {
		return err
	}

	money, _, err := styles(f)
	if err != nil {
		return err
	}

	for i, d := range days {
		rowNum := i + 2
		values := []any{
			d.Date.String(),
			cellValue(d.PL),
			cellValue(d.ReportingError),
			cellValue(d.CumulativePL),
			cellValue(d.MarkToMarket),
			cellValue(d.DividendAccrualChange),
			cellValue(d.Interest),
			cellValue(d.Dividends),
			cellValue(d.DepositsWithdrawals),
			cellValue(d.InterestAccrualChange),
			cellValue(d.Commissions),
			cellValue(d.TotalBroker),
		}
		if err := f.SetSheetRow(sheetBroker, fmt.Sprintf("A%d", rowNum), &values); err != nil {
			return err
		}

		// From the second day on, P&L is the ex-dividend, ex-interest change
		// in the account total, written as a formula over the neighbours.
		if i > 0 {
			formula := fmt.Sprintf("L%d-L%d-I%d-H%d-G%d",
				rowNum, rowNum-1, rowNum, rowNum, rowNum)
			if err := f.SetCellFormula(sheetBroker, fmt.Sprintf("B%d", rowNum), formula); err != nil {
				return err
			}
		}
	}

	last := len(days) + 1
	if err := f.SetCellStyle(sheetBroker, "B2", fmt.Sprintf("L%d", last), money); err != nil {
		return err
	}
	return f.SetColWidth(sheetBroker, "A", "A", 12)
}

func writeOther(f *excelize.File, txs []ledger.OtherTransaction) error {
	if _, err := f.NewSheet(sheetOther); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetOther, "A1", &otherHeader); err != nil {
		return err
	}

	money, _, err := styles(f)
	if err != nil {
		return err
	}

	for i, tx := range txs {
		values := []any{
			tx.Date.String(),
			tx.Amount,
			tx.Account,
			tx.Description,
			yesNo(tx.CountedInPL),
			yesNo(tx.Overnight),
			tx.Note,
		}
		if err := f.SetSheetRow(sheetOther, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}

	last := len(txs) + 1
	if err := f.SetCellStyle(sheetOther, "B2", fmt.Sprintf("B%d", last), money); err != nil {
		return err
	}
	return f.SetColWidth(sheetOther, "A", "A", 12)
}

func styles(f *excelize.File) (money, percent int, err error) {
	moneyFmt := moneyFormat
	money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return 0, 0, err
	}
	percentFmt := percentFormat
	percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percentFmt})
	if err != nil {
		return 0, 0, err
	}
	return money, percent, nil
}

func cellValue(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func brokerDaysBetween(st *store.Store, start, end ledger.Date) ([]ledger.BrokerDay, error) {
	all, err := st.BrokerDays()
	if err != nil {
		return nil, err
	}
	var out []ledger.BrokerDay
	for _, d := range all {
		if d.Date.Before(start) || d.Date.After(end) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func otherTransactionsBetween(st *store.Store, start, end ledger.Date) ([]ledger.OtherTransaction, error) {
	all, err := st.OtherTransactions()
	if err != nil {
		return nil, err
	}
	var out []ledger.OtherTransaction
	for _, tx := range all {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}
