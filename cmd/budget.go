// ABOUTME: Budget commands: current, set, history
// ABOUTME: Renders usage bars per category

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
	budgetYear   int
	budgetMonth  int
	budgetTotal  string
	budgetLimits []string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Monthly budgets",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runBudgetCurrent(ctx, w, a)
	}),
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace a month's budget",
	Long: `Create or replace a month's budget. Per-category limits are CATEGORY_ID=AMOUNT.

Example:
  spendx budget set --total 20000 --limit 1=5000 --limit 3=2500`,
	Args: cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		in, err := budgetFromFlags()
		if err != nil {
			return fail(w, err)
		}
		return runBudgetSet(ctx, w, a, in)
	}),
}

var budgetHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Past budgets",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runBudgetHistory(ctx, w, a)
	}),
}

func init() {
	now := time.Now()
	f := budgetSetCmd.Flags()
	f.IntVar(&budgetYear, "year", now.Year(), "Year")
	f.IntVar(&budgetMonth, "month", int(now.Month()), "Month (1-12)")
	f.StringVar(&budgetTotal, "total", "", "Total monthly limit")
	f.StringArrayVar(&budgetLimits, "limit", nil, "Category limit as CATEGORY_ID=AMOUNT (repeatable)")

	budgetCmd.AddCommand(budgetSetCmd, budgetHistoryCmd)
	rootCmd.AddCommand(budgetCmd)
}

func budgetFromFlags() (api.BudgetCreate, error) {
	total, err := parseAmount(budgetTotal)
	if err != nil {
		return api.BudgetCreate{}, &api.ValidationError{Field: "total_limit", Message: "Total limit must be a number"}
	}
	limits, err := parseLimits(budgetLimits)
	if err != nil {
		return api.BudgetCreate{}, err
	}
	return api.BudgetCreate{Year: budgetYear, Month: budgetMonth, TotalLimit: total, CategoryLimits: limits}, nil
}

// parseLimits turns CATEGORY_ID=AMOUNT pairs into category limits.
func parseLimits(pairs []string) ([]api.CategoryLimit, error) {
	limits := make([]api.CategoryLimit, 0, len(pairs))
	for _, pair := range pairs {
		id, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, &api.ValidationError{Field: "category_limits", Message: fmt.Sprintf("invalid limit %q, want CATEGORY_ID=AMOUNT", pair)}
		}
		catID, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return nil, &api.ValidationError{Field: "category_limits", Message: fmt.Sprintf("invalid category ID in %q", pair)}
		}
		m, err := parseAmount(amount)
		if err != nil {
			return nil, &api.ValidationError{Field: "category_limits", Message: fmt.Sprintf("invalid amount in %q", pair)}
		}
		limits = append(limits, api.CategoryLimit{CategoryID: catID, LimitAmount: m})
	}
	return limits, nil
}

func formatBudget(b *api.Budget, cur prefs.Currency) string {
	title := time.Date(b.Year, time.Month(b.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	lines := []string{
		styles.Title.Render("Budget for " + title),
		fmt.Sprintf("%s  %s of %s (%.0f%%)",
			styles.BudgetBar(b.PercentageUsed, 20),
			cur.FormatAmount(float64(b.TotalSpent)),
			cur.FormatAmount(float64(b.TotalLimit)),
			b.PercentageUsed),
		styles.KV("Remaining", cur.FormatAmount(float64(b.Remaining))),
	}
	for _, c := range b.CategoryLimits {
		lines = append(lines, fmt.Sprintf("  %-18s %s  %s / %s",
			truncate(c.CategoryName, 18),
			styles.BudgetBar(c.PercentageUsed, 10),
			cur.FormatAmount(float64(c.SpentAmount)),
			cur.FormatAmount(float64(c.LimitAmount))))
	}
	return strings.Join(lines, "\n")
}

func runBudgetCurrent(ctx context.Context, w io.Writer, a *app) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	b, err := a.api.CurrentBudget(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, b)
	}
	fmt.Fprintln(w, formatBudget(b, a.currency()))
	return exitOK
}

func runBudgetSet(ctx context.Context, w io.Writer, a *app, in api.BudgetCreate) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	b, err := a.api.SetBudget(ctx, in)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, b)
	}
	fmt.Fprintln(w, formatBudget(b, a.currency()))
	return exitOK
}

func runBudgetHistory(ctx context.Context, w io.Writer, a *app) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	l, err := a.api.BudgetHistory(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, l)
	}
	if len(l.Items) == 0 {
		fmt.Fprintln(w, "No budgets yet.")
		return exitOK
	}
	cur := a.currency()
	for _, b := range l.Items {
		fmt.Fprintf(w, "%04d-%02d  %s  %s of %s\n",
			b.Year, b.Month,
			styles.BudgetBar(b.PercentageUsed, 10),
			cur.FormatAmount(float64(b.TotalSpent)),
			cur.FormatAmount(float64(b.TotalLimit)))
	}
	return exitOK
}
