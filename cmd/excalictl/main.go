// Command excalictl manages drawings through the same storage service the
// dashboard uses, against the local store, the desktop files or the remote API.
package main

import (
	"encoding/json"
	"excaliapp/core"
	"excaliapp/desktop"
	"excaliapp/storage"
	"excaliapp/storage/local"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	mode    string
	apiURL  string
	token   string
	dbPath  string
	dataDir string
}

// openService builds the service and returns a func releasing its resources.
func openService(o *options) (*storage.Service, func(), error) {
	mode := storage.ParseMode(o.mode)
	deps := storage.Dependencies{
		APIBaseURL: o.apiURL,
		AuthKey:    o.token,
	}
	closeFn := func() {}

	switch mode {
	case storage.ModeBrowser:
		path := o.dbPath
		if path == "" {
			dir, err := desktop.UserDataDir()
			if err != nil {
				return nil, closeFn, err
			}
			path = filepath.Join(dir, "localstorage.db")
		}
		kv, err := local.NewBoltKV(path)
		if err != nil {
			return nil, closeFn, err
		}
		deps.KV = kv
		closeFn = func() { kv.Close() }
	case storage.ModeDesktop:
		dir := o.dataDir
		if dir == "" {
			var err error
			if dir, err = desktop.UserDataDir(); err != nil {
				return nil, closeFn, err
			}
		}
		app, err := desktop.NewApp(dir)
		if err != nil {
			return nil, closeFn, err
		}
		deps.Bridge = app
	}

	svc, err := storage.New(mode, deps)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return svc, closeFn, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runFunc func(cmd *cobra.Command, args []string, svc *storage.Service) error

// withService opens the storage for the duration of one command.
func withService(o *options, run runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService(o)
		if err != nil {
			return err
		}
		defer closeFn()

		// In wails mode the CLI hosts the bridge itself, so the build tag probe does not apply.
		if svc.Mode() != storage.ModeDesktop && !svc.Available(cmd.Context()) {
			return fmt.Errorf("storage %s is not available", svc.Mode())
		}
		return run(cmd, args, svc)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "excalictl",
		Short:         "Manage stored drawings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&o.mode, "mode", string(storage.ModeBrowser), "Storage to use: wails, browser or api.")
	flags.StringVar(&o.apiURL, "api-url", "http://localhost:3002", "Base URL of the drawings API.")
	flags.StringVar(&o.token, "token", os.Getenv("EXCALIAPP_TOKEN"), "Bearer token for the drawings API.")
	flags.StringVar(&o.dbPath, "db", "", "Local store file for browser mode.")
	flags.StringVar(&o.dataDir, "data", "", "Drawings directory for wails mode.")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List drawings",
			Args:  cobra.NoArgs,
			RunE: withService(o, func(cmd *cobra.Command, args []string, svc *storage.Service) error {
				files, err := svc.UserFiles(cmd.Context())
				if err != nil {
					return err
				}
				list := make([]*core.Drawing, 0, len(files))
				for _, f := range files {
					f.Data = ""
					list = append(list, f)
				}
				sort.Slice(list, func(i, j int) bool {
					return list[i].UpdatedAt.After(list[j].UpdatedAt)
				})
				return printJSON(cmd.OutOrStdout(), list)
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print one drawing",
			Args:  cobra.ExactArgs(1),
			RunE: withService(o, func(cmd *cobra.Command, args []string, svc *storage.Service) error {
				f, err := svc.GetFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if f == nil {
					return fmt.Errorf("%s: %w", args[0], core.ErrNotFound)
				}
				return printJSON(cmd.OutOrStdout(), f)
			}),
		},
		newSaveCmd(o),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a drawing",
			Args:  cobra.ExactArgs(1),
			RunE: withService(o, func(cmd *cobra.Command, args []string, svc *storage.Service) error {
				if err := svc.DeleteFile(cmd.Context(), args[0]); err != nil {
					return err
				}
				logrus.WithField("drawing_id", args[0]).Info("Deleted")
				return nil
			}),
		},
		newDuplicateCmd(o),
	)
	return root
}

func newSaveCmd(o *options) *cobra.Command {
	var (
		req      core.SaveRequest
		file     string
		isPublic bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update a drawing from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: withService(o, func(cmd *cobra.Command, args []string, svc *storage.Service) error {
			var (
				data []byte
				err  error
			)
			if file == "" || file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			req.Data = string(data)
			if cmd.Flags().Changed("public") {
				req.IsPublic = core.Bool(isPublic)
			}

			saved, err := svc.SaveFile(cmd.Context(), req)
			if err != nil {
				return err
			}
			saved.Data = ""
			return printJSON(cmd.OutOrStdout(), saved)
		}),
	}
	cmd.Flags().StringVar(&req.ID, "id", "", "Drawing id; a new one is generated when empty.")
	cmd.Flags().StringVar(&req.Name, "name", "", "Drawing name.")
	cmd.Flags().StringVar(&req.Thumbnail, "thumbnail", "", "Base64 preview image.")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the drawing payload from this file instead of stdin.")
	cmd.Flags().BoolVar(&isPublic, "public", false, "Mark the drawing public.")
	return cmd
}

func newDuplicateCmd(o *options) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a drawing under a new id",
		Args:  cobra.ExactArgs(1),
		RunE: withService(o, func(cmd *cobra.Command, args []string, svc *storage.Service) error {
			copied, err := svc.DuplicateFile(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			copied.Data = ""
			return printJSON(cmd.OutOrStdout(), copied)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Name of the copy (default: \"<name> (Copy)\").")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatal(err)
	}
}
