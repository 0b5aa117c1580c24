package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/design/store"
)

// =============================================================================
// Store Backend Flags
// =============================================================================

// storeFlags selects a design storage backend. The default is a directory of
// TOML files under the XDG data dir.
type storeFlags struct {
	dir      string
	db       string
	mongoURI string
	mongoDB  string
}

// register adds the backend selection flags to cmd.
func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "store-dir", "", "design store directory (default: ~/.local/share/metalize/designs)")
	cmd.Flags().StringVar(&f.db, "store-db", "", "SQLite design store path")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB design store URI")
	cmd.Flags().StringVar(&f.mongoDB, "mongo-db", "", "MongoDB database name")
}

// open creates the selected store. The caller owns Close.
func (f *storeFlags) open(ctx context.Context) (store.Store, error) {
	switch {
	case f.db != "":
		return store.NewSQLiteStore(ctx, f.db)
	case f.mongoURI != "":
		return store.NewMongoStore(ctx, store.MongoConfig{URI: f.mongoURI, Database: f.mongoDB})
	case f.dir != "":
		return store.NewDirStore(f.dir)
	default:
		dir, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		return store.NewDirStore(dir)
	}
}

// =============================================================================
// Store Commands
// =============================================================================

// storeCommand creates the design store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored designs",
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeShowCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeRemoveCommand())

	return cmd
}

// storeListCommand creates the "store ls" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List stored designs",
		RunE: func(cmd *cobra.Command, args []string) error {
			designs, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer designs.Close()

			names, err := designs.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No stored designs")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// storeShowCommand creates the "store show" subcommand.
// Without a name argument it opens an interactive picker.
func (c *CLI) storeShowCommand() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a stored design as TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			designs, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer designs.Close()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				name, err = pickDesign(cmd.Context(), designs)
				if err != nil {
					return err
				}
				if name == "" {
					return nil // picker dismissed
				}
			}

			d, err := designs.Get(cmd.Context(), name)
			if err != nil {
				return err
			}
			data, err := design.Marshal(d)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// storePutCommand creates the "store put" subcommand.
func (c *CLI) storePutCommand() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "put <design.toml>",
		Short: "Store a design file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := design.Load(args[0])
			if err != nil {
				return err
			}

			designs, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer designs.Close()

			if err := designs.Put(cmd.Context(), d); err != nil {
				return err
			}
			printSuccess("Stored %s", d.Name)
			printDetail("%d chips, %d elements", len(d.Chips), len(d.Elements))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// storeRemoveCommand creates the "store rm" subcommand.
func (c *CLI) storeRemoveCommand() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a stored design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			designs, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer designs.Close()

			if err := designs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
