// ABOUTME: Transaction commands: list, add, get, update, delete, summary, categories
// ABOUTME: Amounts are shown in the preferred currency

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/prefs"
	"github.com/PrathikReddy560/SpendX/internal/tui/styles"
)

var (
	txFilter      api.TransactionFilter
	txAmount      string
	txCategory    int
	txType        string
	txUpdateType  string
	txDescription string
	txDate        string
	summaryYear   int
	summaryMonth  int
)

var txCmd = &cobra.Command{
	Use:     "tx",
	Aliases: []string{"transactions"},
	Short:   "Manage transactions",
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runTxList(ctx, w, a, txFilter)
	}),
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Long: `Record a transaction. Type defaults to expense and date to today.

Example:
  spendx tx add --amount 250 --category 1 --description "lunch"`,
	Args: cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		amount, err := parseAmount(txAmount)
		if err != nil {
			return fail(w, err)
		}
		in := api.TransactionCreate{
			Amount:     amount,
			CategoryID: txCategory,
			Type:       txType,
			Date:       txDate,
		}
		if in.Date == "" {
			in.Date = time.Now().Format(time.DateOnly)
		}
		if txDescription != "" {
			in.Description = &txDescription
		}
		return runTxAdd(ctx, w, a, in)
	}),
}

var txGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one transaction",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			return runTxGet(ctx, w, a, args[0])
		})(cmd, args)
	},
}

var txUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change fields of a transaction",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			update, err := txUpdateFromFlags(cmd)
			if err != nil {
				return fail(w, err)
			}
			return runTxUpdate(ctx, w, a, args[0], update)
		})(cmd, args)
	},
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			return runTxDelete(ctx, w, a, args[0])
		})(cmd, args)
	},
}

var txSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Income and spending for a month",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runTxSummary(ctx, w, a, summaryYear, summaryMonth)
	}),
}

var txCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List transaction categories",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runTxCategories(ctx, w, a)
	}),
}

func init() {
	lf := txListCmd.Flags()
	lf.IntVar(&txFilter.Page, "page", 1, "Page number")
	lf.IntVar(&txFilter.PerPage, "per-page", api.DefaultPerPage, "Items per page (max 100)")
	lf.StringVar(&txFilter.StartDate, "from", "", "Start date (YYYY-MM-DD)")
	lf.StringVar(&txFilter.EndDate, "to", "", "End date (YYYY-MM-DD)")
	lf.IntVar(&txFilter.CategoryID, "category", 0, "Category ID")
	lf.StringVar(&txFilter.Type, "type", "", "income or expense")

	for _, c := range []*cobra.Command{txAddCmd, txUpdateCmd} {
		f := c.Flags()
		f.StringVar(&txAmount, "amount", "", "Amount")
		f.IntVar(&txCategory, "category", 0, "Category ID (see 'spendx tx categories')")
		f.StringVar(&txDescription, "description", "", "Description")
		f.StringVar(&txDate, "date", "", "Date (YYYY-MM-DD)")
	}
	txAddCmd.Flags().StringVar(&txType, "type", api.TypeExpense, "income or expense")
	txUpdateCmd.Flags().StringVar(&txUpdateType, "type", "", "income or expense")

	now := time.Now()
	txSummaryCmd.Flags().IntVar(&summaryYear, "year", now.Year(), "Year")
	txSummaryCmd.Flags().IntVar(&summaryMonth, "month", int(now.Month()), "Month (1-12)")

	txCmd.AddCommand(txListCmd, txAddCmd, txGetCmd, txUpdateCmd, txDeleteCmd, txSummaryCmd, txCategoriesCmd)
	rootCmd.AddCommand(txCmd)
}

// parseAmount accepts plain decimal input such as "250" or "99.50".
func parseAmount(s string) (api.Money, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &api.ValidationError{Field: "amount", Message: "Amount must be a number"}
	}
	return api.Money(v), nil
}

// txUpdateFromFlags includes only the flags the user actually set.
func txUpdateFromFlags(cmd *cobra.Command) (api.TransactionUpdate, error) {
	var u api.TransactionUpdate
	changed := cmd.Flags().Changed
	if changed("amount") {
		amount, err := parseAmount(txAmount)
		if err != nil {
			return u, err
		}
		u.Amount = &amount
	}
	if changed("category") {
		u.CategoryID = &txCategory
	}
	if changed("type") {
		u.Type = &txUpdateType
	}
	if changed("description") {
		u.Description = &txDescription
	}
	if changed("date") {
		u.Date = &txDate
	}
	return u, nil
}

func runTxList(ctx context.Context, w io.Writer, a *app, f api.TransactionFilter) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	page, err := a.api.ListTransactions(ctx, f)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, page)
	}
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return exitOK
	}
	cur := a.currency()
	for _, tx := range page.Items {
		fmt.Fprintln(w, formatTxLine(tx, cur))
	}
	fmt.Fprintln(w, styles.Subtitle.Render(fmt.Sprintf("Page %d of %d (%d total)", page.Page, max(page.Pages, 1), page.Total)))
	return exitOK
}

func formatTxLine(tx api.Transaction, cur prefs.Currency) string {
	desc := ""
	if tx.Description != nil {
		desc = *tx.Description
	}
	return fmt.Sprintf("%s  %-10s  %-18s  %-24s  %s",
		tx.ID, tx.Date, truncate(tx.Category.Name, 18), truncate(desc, 24),
		styles.Amount(tx.Type, cur.FormatAmount(float64(tx.Amount))))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatTxDetail(tx *api.Transaction, cur prefs.Currency) string {
	desc := "-"
	if tx.Description != nil && *tx.Description != "" {
		desc = *tx.Description
	}
	lines := []string{
		styles.KV("ID", tx.ID),
		styles.KV("Date", tx.Date),
		styles.KV("Type", tx.Type),
		styles.KV("Amount", cur.FormatAmount(float64(tx.Amount))),
		styles.KV("Category", tx.Category.Name),
		styles.KV("Description", desc),
	}
	if tx.IsAutoDetected {
		lines = append(lines, styles.KV("Source", "auto-detected"))
	}
	return strings.Join(lines, "\n")
}

func runTxAdd(ctx context.Context, w io.Writer, a *app, in api.TransactionCreate) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	tx, err := a.api.CreateTransaction(ctx, in)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, tx)
	}
	fmt.Fprintf(w, "Added %s %s (%s)\n", tx.Type, a.currency().FormatAmount(float64(tx.Amount)), tx.ID)
	return exitOK
}

func runTxGet(ctx context.Context, w io.Writer, a *app, id string) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	tx, err := a.api.GetTransaction(ctx, id)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, tx)
	}
	fmt.Fprintln(w, formatTxDetail(tx, a.currency()))
	return exitOK
}

func runTxUpdate(ctx context.Context, w io.Writer, a *app, id string, u api.TransactionUpdate) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	tx, err := a.api.UpdateTransaction(ctx, id, u)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, tx)
	}
	fmt.Fprintln(w, formatTxDetail(tx, a.currency()))
	return exitOK
}

func runTxDelete(ctx context.Context, w io.Writer, a *app, id string) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	if err := a.api.DeleteTransaction(ctx, id); err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, map[string]string{"deleted": id})
	}
	fmt.Fprintf(w, "Deleted %s\n", id)
	return exitOK
}

func runTxSummary(ctx context.Context, w io.Writer, a *app, year, month int) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	s, err := a.api.Summary(ctx, year, month)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, s)
	}
	cur := a.currency()
	title := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	lines := []string{
		styles.Title.Render(title),
		styles.KV("Income", cur.FormatAmount(float64(s.TotalIncome))),
		styles.KV("Spent", cur.FormatAmount(float64(s.TotalExpense))),
		styles.KV("Balance", cur.FormatAmount(float64(s.Balance))),
	}
	if len(s.CategoryBreakdown) > 0 {
		lines = append(lines, "", styles.Subtitle.Render("By category"))
		for _, c := range s.CategoryBreakdown {
			lines = append(lines, fmt.Sprintf("  %-18s %12s  %5.1f%%  (%d)",
				truncate(c.CategoryName, 18), cur.FormatAmount(float64(c.Amount)), c.Percentage, c.TransactionCount))
		}
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	return exitOK
}

func runTxCategories(ctx context.Context, w io.Writer, a *app) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	cats, err := a.api.Categories(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, cats)
	}
	for _, c := range cats {
		fmt.Fprintf(w, "%4d  %s\n", c.ID, c.Name)
	}
	return exitOK
}
