package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/SLASH2NL/translationloader"
)

// useTestdata points the commands at the repository testdata, keeping writes in memory.
func useTestdata(t *testing.T) afero.Fs {
	base := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), "../../testdata"))
	fs := afero.NewCopyOnWriteFs(base, afero.NewMemMapFs())

	previous := osFs
	osFs = fs
	t.Cleanup(func() { osFs = previous })

	return fs
}

// execute runs the root command with args. Flag values are reset afterwards so
// commands do not see the flags of an earlier run.
func execute(t *testing.T, args ...string) (string, error) {
	t.Cleanup(func() {
		resetFlags(t, rootCmd)
		logger.SetOutput(io.Discard)
	})

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func resetFlags(t *testing.T, cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, slice.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}

	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)

	for _, sub := range cmd.Commands() {
		resetFlags(t, sub)
	}
}

func TestShowCommand(t *testing.T) {
	useTestdata(t)

	out, err := execute(t, "show", "valid")
	require.NoError(t, err)
	require.Contains(t, out, "# en_US\n")
	require.Contains(t, out, "welcome.login = Welcome :user|capitalize\n")
	require.Contains(t, out, "# nl\n")

	_, err = execute(t, "show", "does-not-exist")
	require.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	useTestdata(t)

	out, err := execute(t, "render", "valid", "welcome.login", "--locale", "nl", "--arg", "user=jan")
	require.NoError(t, err)
	require.Equal(t, "Welkom Jan\n", out)

	_, err = execute(t, "render", "valid", "unknown.key")
	require.Error(t, err)
}

func TestUpdateCommand(t *testing.T) {
	fs := useTestdata(t)

	out, err := execute(t, "update", "valid", "--defaults", "defaults", "--version", "3")
	require.NoError(t, err)
	require.Contains(t, out, "en_US\n")

	loader, err := translationloader.NewFileLoader(fs, "valid/en_US.yml")
	require.NoError(t, err)
	require.NoError(t, loader.Load())
	require.Equal(t, "3", loader.Version())

	msg, ok := loader.Message("welcome.logout")
	require.True(t, ok)
	require.Equal(t, "Goodbye :user", msg)
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	useTestdata(t)

	out, err := execute(t, "show", "valid", "--locale", "nl")
	require.NoError(t, err)
	require.NotContains(t, out, "# en_US\n")

	resetFlags(t, rootCmd)

	out, err = execute(t, "show", "valid")
	require.NoError(t, err)
	require.Contains(t, out, "# en_US\n")
	require.Contains(t, out, "# nl\n")

	out, err = execute(t, "render", "valid", "welcome.login", "--locale", "nl", "--arg", "user=jan")
	require.NoError(t, err)
	require.Equal(t, "Welkom Jan\n", out)

	resetFlags(t, rootCmd)

	out, err = execute(t, "render", "valid", "welcome.login", "--locale", "nl")
	require.NoError(t, err)
	require.Equal(t, "Welkom :user\n", out)

	locale, err := renderCmd.Flags().GetString("locale")
	require.NoError(t, err)
	require.Equal(t, "nl", locale)

	resetFlags(t, rootCmd)

	args, err := renderCmd.Flags().GetStringArray("arg")
	require.NoError(t, err)
	require.Empty(t, args)
	require.Empty(t, renderCmd.Flag("locale").Value.String())
	require.False(t, renderCmd.Flags().Changed("locale"))
}

func TestParseReplacements(t *testing.T) {
	replacements, err := parseReplacements([]string{"user=john", "expr=a=b"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"user": "john", "expr": "a=b"}, replacements)

	_, err = parseReplacements([]string{"invalid"})
	require.Error(t, err)

	_, err = parseReplacements([]string{"=value"})
	require.Error(t, err)
}

func TestSyncKeys(t *testing.T) {
	source := translationloader.NewMapSource("en", map[string]any{
		"welcome": map[string]any{"login": "Welcome"},
		"unused":  "Unused",
	})
	loader := translationloader.NewLoader(translationloader.Locale{Language: "en"}, source)
	require.NoError(t, loader.Load())

	added, removed := syncKeys(loader, []string{"welcome.login", "new.key"}, false)
	require.Equal(t, 1, added)
	require.Zero(t, removed)

	added, removed = syncKeys(loader, []string{"welcome.login", "new.key"}, true)
	require.Zero(t, added)
	require.Equal(t, 1, removed)

	require.NoError(t, loader.Save())
	require.Equal(t, map[string]any{
		"welcome": map[string]any{"login": "Welcome"},
		"new":     map[string]any{"key": ""},
	}, source.Document())
}

func TestCopyDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "defaults/en.yml", []byte("hello: Hello\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "defaults/README.md", []byte("docs"), 0o644))
	require.NoError(t, fs.MkdirAll("translations", 0o755))

	require.NoError(t, copyDefaults("defaults")(fs, "translations"))

	ok, err := afero.Exists(fs, "translations/en.yml")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = afero.Exists(fs, "translations/README.md")
	require.NoError(t, err)
	require.False(t, ok)
}
