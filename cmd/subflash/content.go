package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/subflash/internal/msglist"
	"github.com/verte-zerg/subflash/internal/store"
)

var (
	messageCategory     string
	messageBullets      bool
	messageFile         string
	messageSkipExisting bool
	messageMaxRunes     int
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage message categories",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE:  runCategoryListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create a category and make it current",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoryAddCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a category and its messages",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoryRmCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use NAME",
		Short: "Select the current category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoryUseCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "weight NAME WEIGHT",
		Short: "Set a category sampling weight",
		Args:  cobra.ExactArgs(2),
		RunE:  runCategoryWeightCmd,
	})
	return cmd
}

func runCategoryListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	cats, err := st.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	current, err := st.CurrentCategory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load current category: %w", err)
	}
	if len(cats) == 0 {
		return writeLine(cmd, "No categories. Run: subflash category add NAME")
	}
	for _, c := range cats {
		marker := " "
		if c.Name == current {
			marker = "*"
		}
		active := ""
		if c.Active {
			active = "  active"
		}
		if err := writeLine(cmd, "%s %s  messages=%d  weight=%s%s", marker, c.Name, c.Messages, formatWeight(c.Weight), active); err != nil {
			return err
		}
	}
	return nil
}

func runCategoryAddCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.AddCategory(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}
	return writeLine(cmd, "Added category %q", strings.TrimSpace(args[0]))
}

func runCategoryRmCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeleteCategory(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return writeLine(cmd, "Deleted category %q", args[0])
}

func runCategoryUseCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.SetCurrentCategory(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to select category: %w", err)
	}
	return writeLine(cmd, "Current category: %s", args[0])
}

func runCategoryWeightCmd(cmd *cobra.Command, args []string) error {
	weight, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid weight %q: %w", args[1], err)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("weight must be a finite number")
	}
	if weight < 0 {
		return fmt.Errorf("weight must be >= 0")
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.SetWeight(cmd.Context(), args[0], weight); err != nil {
		return fmt.Errorf("failed to set weight: %w", err)
	}
	return writeLine(cmd, "Weight of %s: %s", args[0], formatWeight(weight))
}

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Manage messages of a category",
	}
	cmd.PersistentFlags().StringVarP(&messageCategory, "category", "c", "", "category (default: current)")

	addCmd := &cobra.Command{
		Use:   "add [MESSAGE...]",
		Short: "Add messages to a category",
		RunE:  runMessageAddCmd,
	}
	addCmd.Flags().BoolVar(&messageBullets, "bullets", false, "read one message per line from stdin")
	addCmd.Flags().StringVarP(&messageFile, "file", "f", "", "read one message per line from a file")
	addCmd.Flags().BoolVar(&messageSkipExisting, "skip-existing", false, "skip messages already in the category")
	addCmd.Flags().IntVar(&messageMaxRunes, "max-runes", 0, "skip messages longer than N characters (0 = no limit)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List messages of a category",
		Args:  cobra.NoArgs,
		RunE:  runMessageListCmd,
	})
	cmd.AddCommand(addCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "rm INDEX",
		Short: "Delete a message by its 1-based index",
		Args:  cobra.ExactArgs(1),
		RunE:  runMessageRmCmd,
	})
	return cmd
}

func resolveMessageCategory(cmd *cobra.Command, st *store.Store) (string, error) {
	if messageCategory != "" {
		return messageCategory, nil
	}
	current, err := st.CurrentCategory(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to load current category: %w", err)
	}
	if current == "" {
		return "", fmt.Errorf("no current category; pass --category or run: subflash category add NAME")
	}
	return current, nil
}

func runMessageListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	category, err := resolveMessageCategory(cmd, st)
	if err != nil {
		return err
	}
	msgs, err := st.ListMessages(cmd.Context(), category)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	if len(msgs) == 0 {
		return writeLine(cmd, "No messages in %s", category)
	}
	for i, msg := range msgs {
		if err := writeLine(cmd, "%3d  %s", i+1, msg); err != nil {
			return err
		}
	}
	return nil
}

func runMessageAddCmd(cmd *cobra.Command, args []string) error {
	msgs, err := collectMessages(cmd, args)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	category, err := resolveMessageCategory(cmd, st)
	if err != nil {
		return err
	}
	filters := []msglist.FilterFunc{msglist.MaxRunes(messageMaxRunes)}
	if messageSkipExisting {
		existing, err := st.ListMessages(ctx, category)
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		filters = append(filters, msglist.SkipExisting(existing))
	}
	msgs = msglist.Filter(msgs, filters...)
	if len(msgs) == 0 {
		return writeLine(cmd, "Nothing to add")
	}
	if err := st.AddMessages(ctx, category, msgs...); err != nil {
		return fmt.Errorf("failed to add messages: %w", err)
	}
	return writeLine(cmd, "Added %d message(s) to %s", len(msgs), category)
}

func collectMessages(cmd *cobra.Command, args []string) ([]string, error) {
	var msgs []string
	if text := strings.TrimSpace(strings.Join(args, " ")); text != "" {
		msgs = append(msgs, text)
	}
	if messageBullets {
		lines, err := msglist.Parse(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		msgs = append(msgs, lines...)
	}
	if messageFile != "" {
		lines, err := msglist.Load(messageFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", messageFile, err)
		}
		msgs = append(msgs, lines...)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("no messages given; pass text, --bullets or --file")
	}
	return msgs, nil
}

func runMessageRmCmd(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[0], err)
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	category, err := resolveMessageCategory(cmd, st)
	if err != nil {
		return err
	}
	if err := st.DeleteMessage(cmd.Context(), category, index); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return writeLine(cmd, "Deleted message %d from %s", index, category)
}

func newActiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "active",
		Short: "Manage the categories flashed together",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active categories",
		Args:  cobra.NoArgs,
		RunE:  runActiveListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set NAME...",
		Short: "Replace the active set",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runActiveSetCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Activate every category",
		Args:  cobra.NoArgs,
		RunE:  runActiveAllCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the active set (flash the current category only)",
		Args:  cobra.NoArgs,
		RunE:  runActiveClearCmd,
	})
	return cmd
}

func runActiveListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	names, err := st.ActiveCategories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list active categories: %w", err)
	}
	if len(names) == 0 {
		return writeLine(cmd, "No active categories; the current category is flashed")
	}
	for _, name := range names {
		if err := writeLine(cmd, "%s", name); err != nil {
			return err
		}
	}
	return nil
}

func runActiveSetCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	if err := st.SetActiveCategories(ctx, args); err != nil {
		return fmt.Errorf("failed to set active categories: %w", err)
	}
	names, err := st.ActiveCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active categories: %w", err)
	}
	if len(names) < len(args) {
		log := consoleLogger()
		log.Warn().Int("requested", len(args)).Int("active", len(names)).Msg("unknown categories were ignored")
	}
	return writeLine(cmd, "Active: %s", strings.Join(names, ", "))
}

func runActiveAllCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.ActivateAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to activate categories: %w", err)
	}
	return writeLine(cmd, "All categories active")
}

func runActiveClearCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.SetActiveCategories(cmd.Context(), nil); err != nil {
		return fmt.Errorf("failed to clear active categories: %w", err)
	}
	return writeLine(cmd, "Active set cleared")
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

