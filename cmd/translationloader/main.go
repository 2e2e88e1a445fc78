package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/SLASH2NL/translationloader"
	"github.com/SLASH2NL/translationloader/extract"
	"github.com/SLASH2NL/translationloader/i18nbundle"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string
	verbose    bool

	cfg    *Config
	logger = log.New(io.Discard, "translationloader: ", 0)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "translationloader",
	Short:         "Inspect, render and update translation directories.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(configFile, cmd.Flags().Changed("config"), envFile)
		if err != nil {
			return err
		}

		if verbose || cfg.Verbose {
			logger.SetOutput(os.Stderr)
		}

		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [DIR]",
	Short: "Print all messages of the translation files in DIR.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDir(args, 0)
		if err != nil {
			return err
		}

		if ok, _ := afero.DirExists(osFs, dir); !ok {
			return fmt.Errorf("directory %q does not exist", dir)
		}

		filter := cmd.Flag("locale").Value.String()

		d := translationloader.NewDirectory(osFs, dir, "show",
			translationloader.WithTranslator(translationloader.NewTranslator()),
			translationloader.WithLogger(logger),
		)
		if err := d.Load(); err != nil {
			return fmt.Errorf("error loading translations: %w", err)
		}

		registry, err := d.Registry()
		if err != nil {
			return err
		}

		raw := registry.Raw()
		out := cmd.OutOrStdout()

		for _, locale := range d.LoadedLocales() {
			if filter != "" && !strings.EqualFold(filter, locale.String()) {
				continue
			}

			fmt.Fprintf(out, "# %s\n", locale)

			messages := raw[locale]
			for _, key := range sortedStrings(messages) {
				fmt.Fprintf(out, "%s = %s\n", key, messages[key])
			}
		}

		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [DIR] KEY",
	Short: "Render the message KEY of the translations in DIR.",
	Long: `Render the message KEY of the translations in DIR.

# Render welcome.login for Dutch with a replacement.
$ translationloader render ./translations welcome.login --locale nl --arg user=john
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[len(args)-1]

		dir, err := resolveDir(args[:len(args)-1], 0)
		if err != nil {
			return err
		}

		rawArgs, err := cmd.Flags().GetStringArray("arg")
		if err != nil {
			return err
		}

		replacements, err := parseReplacements(rawArgs)
		if err != nil {
			return err
		}

		defaultLocale, err := translationloader.ParseLocale(cfg.DefaultLocale)
		if err != nil {
			return fmt.Errorf("invalid default locale: %w", err)
		}

		translator := translationloader.NewTranslator()
		d := translationloader.NewDirectory(osFs, dir, "render",
			translationloader.WithTranslator(translator),
			translationloader.WithLogger(logger),
			translationloader.WithRegistryFactory(func() *translationloader.Registry {
				return translationloader.NewRegistry("render", translationloader.WithDefaultLocale(defaultLocale))
			}),
		)
		if err := d.Load(); err != nil {
			return fmt.Errorf("error loading translations: %w", err)
		}
		defer d.Unload()

		if bundleDir := cmd.Flag("bundle").Value.String(); bundleDir != "" {
			bundle, err := i18nbundle.LoadBundle(osFs, bundleDir, defaultLocale)
			if err != nil {
				return err
			}
			translator.AddSource(i18nbundle.NewSource(bundleDir, bundle))
		}

		locale := cmd.Flag("locale").Value.String()
		if locale == "" {
			locale = cfg.DefaultLocale
		}

		ctx := translationloader.WithLanguage(context.Background(), locale)

		msg, ok := translator.Translate(ctx, translationloader.Key(key), replacements)
		if !ok {
			return fmt.Errorf("no message %q for locale %s", key, locale)
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg)

		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [DIR]",
	Short: "Add missing messages from the default translations to outdated files in DIR.",
	Long: `Add missing messages from the default translations to outdated files in DIR.

Every translation file whose version "v" differs from --version gets the messages
of the file with the same locale in --defaults that it is missing, and the version
of that file.

$ translationloader update ./translations --defaults ./defaults --version 1.2.0
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDir(args, 0)
		if err != nil {
			return err
		}

		defaults := flagOr(cmd, "defaults", cfg.DefaultsDir)
		version := flagOr(cmd, "version", cfg.Version)

		if defaults == "" || version == "" {
			return fmt.Errorf("both --defaults and --version are required")
		}

		d := translationloader.NewDirectory(osFs, dir, "update",
			translationloader.WithTranslator(translationloader.NewTranslator()),
			translationloader.WithLogger(log.New(cmd.ErrOrStderr(), logger.Prefix(), 0)),
			translationloader.WithVersion(version),
			translationloader.WithMerger(translationloader.DirectoryMerger(osFs, defaults, nil)),
			translationloader.OnDirectoryCreated(copyDefaults(defaults)),
		)
		if err := d.Load(); err != nil {
			return fmt.Errorf("error updating translations: %w", err)
		}

		for _, locale := range d.LoadedLocales() {
			fmt.Fprintln(cmd.OutOrStdout(), locale)
		}

		return nil
	},
}

// extractCmd scans the source code for translation keys and updates the translation files.
var extractCmd = &cobra.Command{
	Use:   "extract SRC_DIR [TRANSLATIONS_DIR]",
	Short: "Scan the source code in SRC_DIR for translation keys and update the translation files in TRANSLATIONS_DIR.",
	Long: `Scan the source code in SRC_DIR for translation keys and update the translation files in TRANSLATIONS_DIR.

# Scan the source code dir ./src and update the translations in ./translations.
# Use --remove to remove all translations in the translation files that have not been found in the source code.
$ translationloader extract ./src ./translations --remove
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcDir := args[0]

		dir, err := resolveDir(args, 1)
		if err != nil {
			return err
		}

		remove, err := cmd.Flags().GetBool("remove")
		if err != nil {
			return err
		}

		keys, err := extract.KeysFromSource(srcDir)
		if err != nil {
			return fmt.Errorf("error extracting messages: %w", err)
		}

		loaders, err := loadFiles(osFs, dir)
		if err != nil {
			return fmt.Errorf("error reading existing translations: %w", err)
		}

		for _, loader := range loaders {
			added, removed := syncKeys(loader, keys, remove)

			if err := loader.Save(); err != nil {
				return fmt.Errorf("error writing translations: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d added, %d removed\n", loader.Name(), added, removed)
		}

		return nil
	},
}

var osFs afero.Fs = afero.NewOsFs()

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "translationloader.toml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to .env file to load environment variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log loaded, skipped and updated files to stderr")

	showCmd.Flags().String("locale", "", "Only print the messages of this locale, e.g. ja_JP")

	renderCmd.Flags().String("locale", "", "Locale to render the message for (defaults to the configured default locale)")
	renderCmd.Flags().StringArray("arg", nil, "Replacement as name=value, can be repeated")
	renderCmd.Flags().String("bundle", "", "Directory with go-i18n message files used when DIR has no message for KEY")

	updateCmd.Flags().String("defaults", "", "Directory with the default translation files")
	updateCmd.Flags().String("version", "", "Current translation version")

	extractCmd.Flags().Bool("remove", false, "Remove all translations in the translation files that have not been found in SRC_DIR.")

	rootCmd.AddCommand(showCmd, renderCmd, updateCmd, extractCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitf("translationloader: %v", err)
	}
}

// resolveDir returns args[i] or the configured directory.
func resolveDir(args []string, i int) (string, error) {
	if len(args) > i {
		return args[i], nil
	}

	if cfg != nil && cfg.Dir != "" {
		return cfg.Dir, nil
	}

	return "", fmt.Errorf("no translation directory given and none configured")
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v := cmd.Flag(name).Value.String(); v != "" {
		return v
	}

	return fallback
}

func parseReplacements(raw []string) (map[string]any, error) {
	replacements := make(map[string]any, len(raw))

	for _, arg := range raw {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected name=value", arg)
		}

		replacements[name] = value
	}

	return replacements, nil
}

// loadFiles loads every translation file in dir.
func loadFiles(fs afero.Fs, dir string) ([]*translationloader.Loader, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	var loaders []*translationloader.Loader
	for _, entry := range entries {
		if entry.IsDir() || !translationloader.DefaultMatcher.IsMatch(entry.Name()) {
			continue
		}

		loader, err := translationloader.NewFileLoader(fs, filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}

		if err := loader.Load(); err != nil {
			return nil, err
		}

		loaders = append(loaders, loader)
	}

	return loaders, nil
}

// syncKeys adds every key as an empty message and, if remove is set, drops messages
// whose key is not in keys.
func syncKeys(loader *translationloader.Loader, keys []string, remove bool) (added, removed int) {
	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		wanted[key] = true

		if _, ok := loader.Message(key); !ok {
			loader.Set(key, "")
			added++
		}
	}

	if remove {
		for key := range loader.Messages() {
			if !wanted[key] && loader.Remove(key) {
				removed++
			}
		}
	}

	return added, removed
}

// copyDefaults copies the default translation files into a newly created directory.
func copyDefaults(defaults string) func(fs afero.Fs, dir string) error {
	return func(fs afero.Fs, dir string) error {
		entries, err := afero.ReadDir(fs, defaults)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.IsDir() || !translationloader.DefaultMatcher.IsMatch(entry.Name()) {
				continue
			}

			data, err := afero.ReadFile(fs, filepath.Join(defaults, entry.Name()))
			if err != nil {
				return err
			}

			if err := afero.WriteFile(fs, filepath.Join(dir, entry.Name()), data, 0o644); err != nil {
				return err
			}
		}

		return nil
	}
}

func sortedStrings(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
