package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kokistudios/board/internal/rules"
	"github.com/kokistudios/board/internal/store"
	"github.com/kokistudios/board/internal/ui"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

// debug is set by --debug and overrides log.level from config.
var debug bool

func main() {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:           "board",
		Short:         "board — prefix-rule post parser",
		Long:          "Parse freeform posts into typed blocks and inline tags, and filter collections of posts by tag.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.Init(noColor)
			if debug {
				return ui.SetLevel("debug")
			}
			return nil
		},
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "posts", Title: "Post Commands:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)

	for _, c := range []*cobra.Command{parseCmd(), filterCmd(), tagsCmd()} {
		c.GroupID = "posts"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{initCmd(), rulesCmd(), configCmd(), doctorCmd()} {
		c.GroupID = "config"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(completionCmd())

	if err := rootCmd.Execute(); err != nil {
		if ui.Logger == nil {
			ui.Init(noColor)
		}
		ui.Error(err.Error())
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Initialize BOARD_HOME directory structure",
		Long:    "Create the BOARD_HOME directory (~/.board by default) with config.yaml and an editable copy of the built-in rules in rules/default.yaml.",
		Example: "  board init\n  board init --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := store.Home()
			if err := store.Init(home, force); err != nil {
				return err
			}
			ui.Success("board initialized")
			ui.Detail("Home:", ui.Bold(home))
			ui.Detail("Rules:", filepath.Join(home, "rules", "default.yaml"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if BOARD_HOME already exists")
	return cmd
}

// loadStore reads BOARD_HOME, falling back to defaults when it was never
// initialized, and applies the configured log level.
func loadStore() (*store.Store, error) {
	s, err := store.LoadOrDefault(store.Home())
	if err != nil {
		return nil, err
	}
	if !debug {
		if err := ui.SetLevel(s.Config.Log.Level); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// rulesSource names where the configured rule set comes from.
func rulesSource(s *store.Store) string {
	if p := s.RulesPath(); p != "" {
		return p
	}
	return ui.Dim("built-in rules")
}

// loadRules resolves the rule set: an explicit --rules file wins over config.
func loadRules(s *store.Store, override string) (rules.RuleSet, error) {
	if override != "" {
		ui.Logger.Debug("loading rule set", "path", override)
		return rules.Load(override)
	}
	ui.Logger.Debug("loading rule set", "path", s.RulesPath())
	return s.RuleSet()
}

func rulesCmd() *cobra.Command {
	var rulesPath string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active rule set",
		Long:  "Print the block and inline rules used for parsing, as YAML. Prefixes claimed by more than one rule are reported as warnings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			rs, err := loadRules(s, rulesPath)
			if err != nil {
				return err
			}
			for _, w := range rules.ConflictWarnings(rs.Blocks) {
				ui.Warning(w)
			}
			data, err := rs.Marshal()
			if err != nil {
				return err
			}
			_, err = ui.Data().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rule set file to use instead of the configured one")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit board configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configGetCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(s.Config)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = ui.Data().Write(data)
			return err
		},
	}
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			v, err := s.ConfigValue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(ui.Data(), v)
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a board configuration value. Valid keys: rules.path, log.level, output.format.",
		Example: `  board config set rules.path rules/default.yaml
  board config set log.level debug
  board config set output.format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Load(store.Home())
			if err != nil {
				return fmt.Errorf("board not initialized — run 'board init' first: %w", err)
			}
			if err := s.SetConfigValue(args[0], args[1]); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Set %s = %s", args[0], args[1]))
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check health of BOARD_HOME and the configured rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := store.Home()
			if _, err := store.Load(home); err != nil && !fix {
				return fmt.Errorf("board not initialized — run 'board init' first: %w", err)
			}

			if fix {
				ui.SectionHeader("DOCTOR — repair mode")
				fixed := store.FixIssues(home)
				for _, f := range fixed {
					ui.Success(fmt.Sprintf("[FIXED] %s", f))
				}
				if len(fixed) == 0 {
					ui.EmptyState("Nothing to fix.")
				}
			} else {
				ui.SectionHeader("DOCTOR — health check")
			}
			if s, err := store.LoadOrDefault(home); err == nil {
				ui.Detail("Home:", ui.Bold(home))
				ui.Detail("Rules:", rulesSource(s))
			}

			issues := store.CheckHealth(home)
			if len(issues) == 0 {
				ui.Success("Everything looks good")
				return nil
			}

			hasError := false
			for _, issue := range issues {
				if issue.Severity == "error" {
					ui.Error(fmt.Sprintf("[ERR]  %s", issue.Message))
					hasError = true
				} else {
					ui.Warning(fmt.Sprintf("[WARN] %s", issue.Message))
				}
			}

			if hasError {
				os.Exit(2)
			}
			os.Exit(1)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Recreate a missing config, rules directory, or default rule set")
	return cmd
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generate shell completion scripts",
		Long:      "Generate shell completion scripts for bash, zsh, or fish. Output the script to stdout for sourcing in your shell profile.",
		Example:   "  board completion bash > ~/.bashrc.d/board\n  board completion zsh > ~/.zfunc/_board",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", args[0])
			}
		},
	}
}
