// ABOUTME: AI assistant commands: chat, history, predict, insights
// ABOUTME: Chat runs full-screen on a terminal or one-shot with a message argument

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/tui/chat"
	"github.com/PrathikReddy560/SpendX/internal/tui/styles"
	"github.com/PrathikReddy560/SpendX/logger"
)

var conversationID string

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "AI spending assistant",
}

var aiChatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the assistant",
	Long: `Ask the assistant about your finances.

With a message, prints the reply and exits. Without one, opens a chat screen.

Example:
  spendx ai chat "where did most of my money go this month?"`,
	Run: func(cmd *cobra.Command, args []string) {
		message := strings.Join(args, " ")
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			if message != "" {
				return runChatOnce(ctx, w, a, message, conversationID)
			}
			if !isTerminal(os.Stdin) {
				fmt.Fprintln(w, "Error: a message is required when not running on a terminal")
				return exitUsage
			}
			return runChatScreen(ctx, w, a, conversationID)
		})(cmd, args)
	},
}

var aiHistoryCmd = &cobra.Command{
	Use:   "history CONVERSATION_ID",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			return runChatHistory(ctx, w, a, args[0])
		})(cmd, args)
	},
}

var aiPredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast next month's spending",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runPredict(ctx, w, a)
	}),
}

var aiInsightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Tips and warnings about your spending",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runInsights(ctx, w, a)
	}),
}

func init() {
	aiChatCmd.Flags().StringVar(&conversationID, "conversation", "", "Continue this conversation ID")

	aiCmd.AddCommand(aiChatCmd, aiHistoryCmd, aiPredictCmd, aiInsightsCmd)
	rootCmd.AddCommand(aiCmd)
}

func runChatOnce(ctx context.Context, w io.Writer, a *app, message, conv string) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	resp, err := a.api.Chat(ctx, message, conv)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp)
	}
	fmt.Fprintln(w, resp.Message.Content)
	fmt.Fprintln(w, styles.Subtitle.Render("conversation "+resp.ConversationID))
	return exitOK
}

// runChatScreen owns the terminal, so logs go to a file under the config dir.
func runChatScreen(ctx context.Context, w io.Writer, a *app, conv string) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	var history []api.ChatMessage
	if conv != "" {
		h, err := a.api.ChatHistory(ctx, conv)
		if err != nil {
			return fail(w, err)
		}
		history = h.Messages
	}

	logPath := a.cfg.LogPath()
	if logPath == "" {
		logPath = filepath.Join(a.cfg.ConfigDir, "debug.log")
	}
	closeLog, err := logger.Init(logger.Options{Level: a.cfg.LogLevel, Format: a.cfg.LogFormat, File: logPath})
	if err != nil {
		logger.Discard()
	}
	defer closeLog()

	m := chat.New(ctx, a.api, conv, history)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailed
	}
	if id := m.ConversationID(); id != "" {
		fmt.Fprintf(w, "Conversation saved as %s\n", id)
	}
	return exitOK
}

func runChatHistory(ctx context.Context, w io.Writer, a *app, id string) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	h, err := a.api.ChatHistory(ctx, id)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, h)
	}
	for _, m := range h.Messages {
		who := styles.UserMessage.Render("You")
		if m.Role != "user" {
			who = styles.StatusOK.Render("SpendX AI")
		}
		fmt.Fprintf(w, "%s\n%s\n\n", who, m.Content)
	}
	return exitOK
}

func runPredict(ctx context.Context, w io.Writer, a *app) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	p, err := a.api.Predict(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, p)
	}
	cur := a.currency()
	lines := []string{
		styles.Title.Render("Forecast for " + p.NextMonth),
		styles.KV("Predicted", cur.FormatAmount(float64(p.PredictedTotal))),
		styles.KV("Last month", cur.FormatAmount(float64(p.LastMonthTotal))),
		styles.KV("Could save", cur.FormatAmount(float64(p.PotentialSavings))),
		styles.KV("Risk", riskStyle(p.RiskLevel)),
	}
	for _, c := range p.CategoryPredictions {
		lines = append(lines, fmt.Sprintf("  %-18s %12s  %+6.1f%%  %s",
			truncate(c.CategoryName, 18), cur.FormatAmount(float64(c.PredictedAmount)), c.ChangePercentage, c.Trend))
	}
	if p.Explanation != "" {
		lines = append(lines, "", p.Explanation)
	}
	for _, r := range p.Recommendations {
		lines = append(lines, "• "+r)
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	return exitOK
}

func riskStyle(level string) string {
	switch level {
	case "high":
		return styles.StatusCritical.Render(level)
	case "medium":
		return styles.StatusWarning.Render(level)
	}
	return styles.StatusOK.Render(level)
}

func runInsights(ctx context.Context, w io.Writer, a *app) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	in, err := a.api.Insights(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, in)
	}
	if len(in.Insights) == 0 {
		fmt.Fprintln(w, "No insights yet. Add a few transactions first.")
		return exitOK
	}
	for _, i := range in.Insights {
		title := i.Title
		switch i.Type {
		case "warning":
			title = styles.StatusWarning.Render(title)
		case "achievement":
			title = styles.StatusOK.Render(title)
		default:
			title = styles.ValueStyle.Render(title)
		}
		fmt.Fprintf(w, "%s\n  %s\n", title, i.Description)
	}
	return exitOK
}
