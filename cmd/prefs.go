// ABOUTME: Preference commands for display currency and language
// ABOUTME: Preferences live beside credentials but survive logout

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PrathikReddy560/SpendX/internal/prefs"
	"github.com/PrathikReddy560/SpendX/internal/tui/styles"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change display preferences",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runPrefsShow(w, a)
	}),
}

var prefsCurrencyCmd = &cobra.Command{
	Use:   "currency [CODE]",
	Short: "Show supported currencies or pick one",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			if len(args) == 0 {
				return runListCurrencies(w, a)
			}
			return runSetCurrency(w, a, args[0])
		})(cmd, args)
	},
}

var prefsLanguageCmd = &cobra.Command{
	Use:   "language [CODE]",
	Short: "Show supported languages or pick one",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			if len(args) == 0 {
				return runListLanguages(w, a)
			}
			return runSetLanguage(w, a, args[0])
		})(cmd, args)
	},
}

func init() {
	prefsCmd.AddCommand(prefsCurrencyCmd, prefsLanguageCmd)
	rootCmd.AddCommand(prefsCmd)
}

type prefsView struct {
	Currency prefs.Currency `json:"currency"`
	Language prefs.Language `json:"language"`
}

func runPrefsShow(w io.Writer, a *app) int {
	cur, err := a.prefs.Currency()
	if err != nil {
		return fail(w, err)
	}
	lang, err := a.prefs.Language()
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, prefsView{Currency: cur, Language: lang})
	}
	fmt.Fprintln(w, styles.KV("Currency", fmt.Sprintf("%s (%s %s)", cur.Code, cur.Symbol, cur.Name)))
	fmt.Fprintln(w, styles.KV("Language", fmt.Sprintf("%s (%s)", lang.Name, lang.NativeName)))
	return exitOK
}

func runListCurrencies(w io.Writer, a *app) int {
	selected := a.currency()
	if IsJSONOutput() {
		return printJSON(w, prefs.Currencies())
	}
	for _, c := range prefs.Currencies() {
		fmt.Fprintf(w, "%s %s  %s %s\n", marker(c.Code == selected.Code), c.Code, c.Symbol, c.Name)
	}
	return exitOK
}

func runSetCurrency(w io.Writer, a *app, code string) int {
	c, err := a.prefs.SetCurrency(code)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}
	if IsJSONOutput() {
		return printJSON(w, c)
	}
	fmt.Fprintf(w, "Currency set to %s (%s)\n", c.Name, c.Symbol)
	return exitOK
}

func runListLanguages(w io.Writer, a *app) int {
	selected, err := a.prefs.Language()
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, prefs.Languages())
	}
	for _, l := range prefs.Languages() {
		fmt.Fprintf(w, "%s %s  %s (%s)\n", marker(l.Code == selected.Code), l.Code, l.Name, l.NativeName)
	}
	return exitOK
}

func runSetLanguage(w io.Writer, a *app, code string) int {
	l, err := a.prefs.SetLanguage(code)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}
	if IsJSONOutput() {
		return printJSON(w, l)
	}
	fmt.Fprintf(w, "Language set to %s\n", l.Name)
	return exitOK
}

func marker(selected bool) string {
	if selected {
		return styles.StatusOK.Render("●")
	}
	return "○"
}
