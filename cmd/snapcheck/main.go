package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"snapcheck/internal/app"
	"snapcheck/internal/check"
	"snapcheck/internal/config"
	"snapcheck/internal/encryption"
	"snapcheck/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Exit codes: 0 clean, 1 operational error, 2 integrity findings.
const exitFindings = 2

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App bound to the given state
// directory. The caller must close the returned App.
func newApp(operation, stateDir string, cmd *cobra.Command) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config (run `snapcheck config init` first): %w", err)
	}

	if threads, _ := cmd.Flags().GetInt("threads"); threads > 0 {
		cfg.Threads = threads
	}

	extra := config.ExcludeConfig{}
	extra.Directories, _ = cmd.Flags().GetStringArray("exclude-dir")
	extra.Files, _ = cmd.Flags().GetStringArray("exclude-file")
	extra.Paths, _ = cmd.Flags().GetStringArray("exclude-path")

	a, err := app.NewApp(cfg, operation, stateDir, extra)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "snapcheck",
	Short: "Detect unintended change in a mostly-static file tree",
	Long: `snapcheck records content fingerprints of a file tree and flags any
file that later turns up new, modified or missing, catching bit rot and
accidental changes in archives that are expected to stay byte-identical.`,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		encrypt, _ := cmd.Flags().GetBool("encrypt")
		if encrypt {
			cfg.Encryption.Type = "age"
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypt {
			passphrase, err := readPassphrase()
			if err != nil {
				return err
			}
			enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
			if err != nil {
				return fmt.Errorf("creating encryptor: %w", err)
			}
			if err := enc.Setup(passphrase); err != nil {
				return fmt.Errorf("generating mirror encryption keys: %w", err)
			}
			fmt.Printf("Mirror encryption keys written under %s\n", defaults["base_dir"])
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Store:      %s\n", cfg.Store.Type)
		fmt.Printf("Mirror:     %s\n", orNone(cfg.Mirror.Type))
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

// update command
var updateCmd = &cobra.Command{
	Use:   "update STATE_DIR [DIRECTORY]",
	Short: "Record a new snapshot of the archive and report changes",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		readAll, _ := cmd.Flags().GetBool("read-all-files")
		detectRenames, _ := cmd.Flags().GetBool("detect-renames")
		failOn, _ := cmd.Flags().GetString("fail-on")

		failCategories, err := parseFailOn(failOn)
		if err != nil {
			return err
		}

		a, err := newApp("Update", args[0], cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dir := "."
		if len(args) > 1 {
			dir = args[1]
		}

		start := time.Now()
		report, err := a.Update(dir, readAll, detectRenames)
		if err != nil {
			return fmt.Errorf("update failed: %w", err)
		}

		printReport(report, time.Since(start))

		if updateFails(report, failCategories) {
			a.Close()
			os.Exit(exitFindings)
		}
		return nil
	},
}

// verify command
var verifyCmd = &cobra.Command{
	Use:   "verify STATE_DIR [DIRECTORY]",
	Short: "Verify a directory against the archive's latest snapshot",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ignoreMissing, _ := cmd.Flags().GetBool("ignore-missing")
		onlyPresence, _ := cmd.Flags().GetBool("only-presence")

		a, err := newApp("Verify", args[0], cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dir := "."
		if len(args) > 1 {
			dir = args[1]
		}

		start := time.Now()
		result, err := a.Verify(dir, ignoreMissing, onlyPresence)
		if err != nil {
			return fmt.Errorf("verify failed: %w", err)
		}

		printVerifyResult(result, time.Since(start))

		if !result.OK {
			a.Close()
			os.Exit(exitFindings)
		}
		fmt.Println("OK")
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history STATE_DIR",
	Short: "List recorded snapshots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History", args[0], cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		stamps, err := a.History()
		if err != nil {
			return err
		}

		if len(stamps) == 0 {
			fmt.Println("No snapshots recorded.")
			return nil
		}

		if limit > 0 && len(stamps) > limit {
			stamps = stamps[len(stamps)-limit:]
		}
		for _, t := range stamps {
			fmt.Println(t.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func printReport(report *model.DiffReport, elapsed time.Duration) {
	for _, rec := range report.New {
		fmt.Printf("+ %s\n", rec.Identity)
	}
	for _, pair := range report.Modified {
		fmt.Printf("M %s\n", pair.Current.Identity)
	}
	for _, rec := range report.Missing {
		fmt.Printf("- %s\n", rec.Identity)
	}
	for _, rec := range report.Renamed {
		fmt.Printf("R %s\n", rec.Identity)
	}
	for _, fe := range report.Errors {
		fmt.Printf("! %s: %v\n", fe.Identity, fe.Err)
	}
	fmt.Print(check.UpdateSummary(report, elapsed))
}

func printVerifyResult(result *model.VerifyResult, elapsed time.Duration) {
	for _, identity := range result.Unmatched {
		fmt.Printf("? %s\n", identity)
	}
	for _, identity := range result.Mismatched {
		fmt.Printf("M %s\n", identity)
	}
	for _, identity := range result.MissingFromReference {
		fmt.Printf("- %s\n", identity)
	}
	for _, fe := range result.Errors {
		fmt.Printf("! %s: %v\n", fe.Identity, fe.Err)
	}
	fmt.Print(check.VerifySummary(result, elapsed))
}

// parseFailOn parses the --fail-on category list.
func parseFailOn(s string) (map[string]bool, error) {
	categories := make(map[string]bool)
	if s == "" {
		return categories, nil
	}
	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		switch c {
		case "new", "missing", "modified":
			categories[c] = true
		default:
			return nil, fmt.Errorf("unknown --fail-on category %q (want new, missing or modified)", c)
		}
	}
	return categories, nil
}

func updateFails(report *model.DiffReport, categories map[string]bool) bool {
	if len(report.Errors) > 0 {
		return true
	}
	if categories["new"] && len(report.New) > 0 {
		return true
	}
	if categories["missing"] && len(report.Missing) > 0 {
		return true
	}
	if categories["modified"] && len(report.Modified) > 0 {
		return true
	}
	return false
}

// readPassphrase prompts for a passphrase without echoing, falling back to
// a plain read when stdin is not a terminal (tests, pipes).
func readPassphrase() (string, error) {
	fmt.Print("Passphrase for mirror encryption key: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(data), nil
	}

	var passphrase string
	if _, err := fmt.Scanln(&passphrase); err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return passphrase, nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Generate age keys and encrypt mirrored snapshots")
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)

	// flags shared by the scanning commands
	for _, cmd := range []*cobra.Command{updateCmd, verifyCmd} {
		cmd.Flags().IntP("threads", "t", 0, "Hash worker threads (0 = one per CPU)")
		cmd.Flags().StringArray("exclude-dir", nil, "Exclude directories whose name matches this regex")
		cmd.Flags().StringArray("exclude-file", nil, "Exclude files whose name matches this regex")
		cmd.Flags().StringArray("exclude-path", nil, "Exclude files whose path matches this regex")
	}

	updateCmd.Flags().Bool("read-all-files", false, "Skip the size+mtime heuristic and re-read every file")
	updateCmd.Flags().Bool("detect-renames", false, "Report missing files whose content survives elsewhere as renamed")
	updateCmd.Flags().String("fail-on", "missing,modified", "Comma-separated categories that cause a non-zero exit")
	rootCmd.AddCommand(updateCmd)

	verifyCmd.Flags().Bool("ignore-missing", false, "Allow archived files to be absent from the directory")
	verifyCmd.Flags().Bool("only-presence", false, "Match by content only, ignoring paths")
	rootCmd.AddCommand(verifyCmd)

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of snapshots to show")
	// history has no scanning flags, but newApp reads them; register the
	// shared set so flag lookups succeed.
	historyCmd.Flags().IntP("threads", "t", 0, "Hash worker threads (0 = one per CPU)")
	historyCmd.Flags().StringArray("exclude-dir", nil, "Exclude directories whose name matches this regex")
	historyCmd.Flags().StringArray("exclude-file", nil, "Exclude files whose name matches this regex")
	historyCmd.Flags().StringArray("exclude-path", nil, "Exclude files whose path matches this regex")
	rootCmd.AddCommand(historyCmd)
}
