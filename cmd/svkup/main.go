package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"svkup/internal/audit"
	"svkup/internal/config"
	"svkup/internal/gitrepo"
	"svkup/internal/installer"
	"svkup/internal/metadata"
	"svkup/internal/prompt"
	"svkup/internal/update"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ex, ok := err.(ExitCoder); ok {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var jsonOutput bool
	var repoPath string
	var projectRoot string
	var checkOnly bool

	cmd := &cobra.Command{
		Use:           "svkup",
		Short:         "Bring installed skill packages up to date with their source repository",
		Long: `svkup compares the installed skill version against the latest tag of
the source repository and reinstalls only the skills whose files
changed, leaving everything else untouched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, projectRoot, repoPath, checkOnly, jsonOutput)
		},
	}
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.Flags().StringVar(&repoPath, "repo", "", "source repository path or URL (skips the first-run prompt)")
	cmd.Flags().StringVar(&projectRoot, "root", ".", "project root to operate on")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "show the update plan without applying it")

	cmd.AddCommand(newVersionCmd(&jsonOutput))
	return cmd
}

func runUpdate(cmd *cobra.Command, projectRoot, repoPath string, checkOnly, jsonOutput bool) error {
	cfg, err := config.Ensure(config.DefaultPath(projectRoot))
	if err != nil {
		return err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if lvl, err := log.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(lvl)
	}
	if repoPath == "" {
		repoPath = cfg.Source.Repo
	}

	svc := &update.Service{
		ProjectRoot:  projectRoot,
		Store:        metadata.NewStore(resolvePath(projectRoot, cfg.Storage.StateFile)),
		OpenRepo:     func(p string) gitrepo.Repository { return gitrepo.Open(p, cfg.Update.EntryPoint) },
		NewInstaller: func(p string) installer.Installer { return installer.NewScript(p, cfg.Update.EntryPoint) },
		Prompter:     prompt.NewTerminal(),
		Audit:        audit.New(resolvePath(projectRoot, cfg.Storage.AuditLog)),
		Log:          logger,
		DefaultRepo:  repoPath,
		NotesLimit:   cfg.Update.NotesLimit,
		CheckOnly:    checkOnly,
	}

	rep, err := svc.Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := renderReport(cmd.OutOrStdout(), jsonOutput, rep); err != nil {
		return err
	}
	if len(rep.Failed) > 0 {
		return &exitError{code: 2, msg: fmt.Sprintf("%d skill(s) failed to install; rerun to retry them", len(rep.Failed))}
	}
	return nil
}

func renderReport(w io.Writer, jsonOutput bool, rep update.Report) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(blob))
		return nil
	}
	switch rep.Outcome {
	case update.OutcomeUpToDate:
		fmt.Fprintf(w, "Already up to date (version %s).\n", rep.From)
	case update.OutcomeNoReleases:
		fmt.Fprintln(w, "The source repository has no releases yet; nothing to update.")
	case update.OutcomeUpdateAvailable:
		fmt.Fprintf(w, "Update available: %s -> %s (run again without --check to apply).\n", rep.From, rep.To)
	case update.OutcomeUpdated:
		if len(rep.Updated) == 0 && len(rep.Failed) == 0 {
			fmt.Fprintf(w, "No installed skills changed; recorded version %s.\n", rep.To)
			return nil
		}
		fmt.Fprintf(w, "Updated to %s: %d skill(s) reinstalled", rep.To, len(rep.Updated))
		if len(rep.Skipped) > 0 {
			fmt.Fprintf(w, ", %d unchanged", len(rep.Skipped))
		}
		fmt.Fprintln(w, ".")
		for _, f := range rep.Failed {
			fmt.Fprintf(w, "  failed: %s: %s\n", f.Skill, firstLine(f.Error))
		}
		fmt.Fprintln(w, "Restart any long-running agent sessions to pick up the updated skills.")
	}
	return nil
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func print(jsonOutput bool, payload any, message string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
		return nil
	}
	if message != "" {
		fmt.Println(message)
	}
	return nil
}
