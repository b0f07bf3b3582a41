package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kalambet/autoreply/internal/config"
	"github.com/kalambet/autoreply/internal/profile"
	"github.com/kalambet/autoreply/internal/storage"
)

// --- profile ---

func newProfileCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or reset the learned communication style",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the stored style profile and a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			mgr := profile.NewManager(profile.NewFileStore(cfg.Style.ProfilePath))

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				p, err := mgr.GetProfile()
				if err != nil {
					return fmt.Errorf("reading profile: %w", err)
				}
				return printJSON(stdout, profile.Document{SchemaVersion: profile.SchemaVersion, Profile: p})
			}

			summary, err := mgr.GetSummary()
			if err != nil {
				return err
			}
			printStatus("File", "%s", cfg.Style.ProfilePath)
			fmt.Fprintln(stdout, summary)
			return nil
		},
	}
	show.Flags().Bool("json", false, "print the stored document as JSON")

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the style profile file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(stdout, profileSchema())
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored style profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				printWarning("This will delete the learned communication style. Use --confirm to proceed.")
				return nil
			}

			cfg := loadConfig()
			mgr := profile.NewManager(profile.NewFileStore(cfg.Style.ProfilePath))
			if err := mgr.Reset(); err != nil {
				return fmt.Errorf("resetting profile: %w", err)
			}
			printSuccess("Profile %s removed", cfg.Style.ProfilePath)
			return nil
		},
	}
	reset.Flags().Bool("confirm", false, "confirm profile reset")

	cmd.AddCommand(show, schema, reset)
	return cmd
}

func profileSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&profile.Document{})
	s.Title = "Communication style profile"
	return s
}

// --- replies ---

func newRepliesCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replies",
		Short: "Inspect the log of generated replies",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent replies, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			contact, _ := cmd.Flags().GetString("contact")
			asJSON, _ := cmd.Flags().GetBool("json")
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			replies, err := store.RecentReplies(cmd.Context(), limit, contact)
			if err != nil {
				return fmt.Errorf("listing replies: %w", err)
			}
			if asJSON {
				if replies == nil {
					replies = []storage.Reply{}
				}
				return printJSON(stdout, replies)
			}
			if len(replies) == 0 {
				printWarning("No replies logged yet")
				return nil
			}
			printReplies(stdout, replies)
			return nil
		},
	}
	list.Flags().Int("limit", 20, "maximum number of replies")
	list.Flags().String("contact", "", "only show replies to this contact")
	list.Flags().Bool("json", false, "print as JSON")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count logged replies by source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			counts, err := store.CountBySource(cmd.Context())
			if err != nil {
				return fmt.Errorf("counting replies: %w", err)
			}
			total := 0
			for _, c := range counts {
				total += c.Count
			}
			for _, c := range counts {
				fmt.Fprintf(stdout, "%-10s %d (%.0f%%)\n", c.Source, c.Count, 100*float64(c.Count)/float64(total))
			}
			fmt.Fprintf(stdout, "%-10s %d\n", "total", total)
			return nil
		},
	}

	cmd.AddCommand(list, stats)
	return cmd
}

func openStore() (*storage.Store, error) {
	cfg := loadConfig()
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

func printReplies(w io.Writer, replies []storage.Reply) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCONTACT\tSOURCE\tMESSAGE\tREPLY")
	for _, r := range replies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Contact,
			r.Source,
			clip(r.Message, 40),
			clip(r.Reply, 60),
		)
	}
	tw.Flush()
}

// clip shortens s to n runes for table output.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// --- rules ---

func newRulesCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the active rule set",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active keyword lists, thresholds and reply pools as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			enc := yaml.NewEncoder(stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(loadRules(cfg.Rules.Path))
		},
	}

	cmd.AddCommand(show)
	return cmd
}

// --- config ---

func newConfigCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			printStatus("File", "%s", config.FilePath())
			for _, k := range config.ShowAll(cfg) {
				fmt.Fprintf(stdout, "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if err := config.SetKey(key, value); err != nil {
				return err
			}

			printSuccess("Set %s", key)
			return nil
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value so the default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.UnsetKey(args[0]); err != nil {
				return err
			}
			printSuccess("Unset %s", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, set, unset)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
