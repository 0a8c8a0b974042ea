package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/newtron-network/topocheck/pkg/cli"
	"github.com/newtron-network/topocheck/pkg/loader"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/snapshot"
	"github.com/newtron-network/topocheck/pkg/util"
)

var (
	// Store flags, shared by check and snapshot
	redisAddr  string
	redisDB    int
	sshHost    string
	sshUser    string
	knownHosts string

	pullOutput string
)

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Snapshot store address (default from settings, else 127.0.0.1:6379)")
	cmd.Flags().IntVar(&redisDB, "redis-db", -1, "Snapshot store database (default from settings, else 0)")
	cmd.Flags().StringVar(&sshHost, "ssh", "", "Reach the store through an SSH tunnel to this host")
	cmd.Flags().StringVar(&sshUser, "ssh-user", "", "SSH user (default from settings, else $USER)")
	cmd.Flags().StringVar(&knownHosts, "known-hosts", "", "known_hosts file for the SSH tunnel (default ~/.ssh/known_hosts if present)")
}

// openStore connects to the snapshot store, through an SSH tunnel when one
// is configured. The returned func closes everything.
func openStore(ctx context.Context) (*snapshot.Store, func(), error) {
	addr := userSettings.GetRedisAddr()
	if redisAddr != "" {
		addr = redisAddr
	}
	db := userSettings.RedisDB
	if redisDB >= 0 {
		db = redisDB
	}

	var tunnel *snapshot.SSHTunnel
	host := firstNonEmpty(sshHost, userSettings.SSHHost)
	if host != "" {
		cfg, err := tunnelConfig(host)
		if err != nil {
			return nil, nil, err
		}
		tunnel, err = snapshot.NewSSHTunnel(cfg)
		if err != nil {
			return nil, nil, err
		}
		addr = tunnel.LocalAddr()
	}

	store := snapshot.NewStore(snapshot.Options{
		Addr:     addr,
		DB:       db,
		Password: os.Getenv("TOPOCHECK_REDIS_PASSWORD"),
		Prefix:   userSettings.GetSnapshotPrefix(),
	})
	closeAll := func() {
		store.Close()
		if tunnel != nil {
			tunnel.Close()
		}
	}
	if err := store.Connect(ctx); err != nil {
		closeAll()
		return nil, nil, err
	}
	return store, closeAll, nil
}

func tunnelConfig(host string) (snapshot.TunnelConfig, error) {
	cfg := snapshot.TunnelConfig{
		Host:       host,
		User:       firstNonEmpty(sshUser, userSettings.SSHUser, os.Getenv("USER")),
		Password:   os.Getenv("TOPOCHECK_SSH_PASSWORD"),
		KnownHosts: knownHosts,
	}
	if cfg.KnownHosts == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path := filepath.Join(home, ".ssh", "known_hosts")
			if _, err := os.Stat(path); err == nil {
				cfg.KnownHosts = path
			}
		}
	}
	if cfg.Password == "" {
		pass, err := cli.ReadPassword(fmt.Sprintf("%s@%s's password: ", cfg.User, host))
		if err != nil {
			return cfg, err
		}
		cfg.Password = pass
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func loadSnapshots(ctx context.Context, names []string) ([]*model.Document, error) {
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	docs := make([]*model.Document, 0, len(names))
	for _, name := range names {
		doc, err := store.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored document snapshots",
	Long: `Manage documents stored in the Redis snapshot store.

Examples:
  topocheck snapshot list
  topocheck snapshot push sites/north.yaml sites/south.yaml
  topocheck snapshot pull north -o north.yaml
  topocheck snapshot delete north
  topocheck snapshot list --ssh bms-gw.example.net`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		names, err := store.List(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No snapshots stored.")
			return nil
		}

		t := cli.NewTable("SNAPSHOT", "CONTENTS")
		for _, name := range names {
			doc, err := store.Load(ctx, name)
			if err != nil {
				t.Row(name, red(err.Error()))
				continue
			}
			t.Row(name, doc.Summary())
		}
		return t.Flush()
	},
}

var snapshotPushCmd = &cobra.Command{
	Use:   "push <paths...>",
	Short: "Store documents as snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := loader.LoadPaths(args)
		if err != nil {
			return err
		}

		ctx := context.Background()
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		for _, doc := range docs {
			name, err := store.Save(ctx, doc)
			if err != nil {
				return err
			}
			fmt.Printf("Stored %s as snapshot %s\n", doc.Name, green(name))
		}
		return nil
	},
}

var snapshotPullCmd = &cobra.Command{
	Use:   "pull <name>",
	Short: "Write a stored snapshot as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		doc, err := store.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if pullOutput == "" {
			return loader.Write(os.Stdout, doc)
		}
		return loader.WriteFile(pullOutput, doc)
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Delete(ctx, args[0]); err != nil {
			return err
		}
		util.WithDocument(args[0]).Debug("snapshot removed")
		fmt.Printf("Deleted snapshot %s\n", yellow(args[0]))
		return nil
	},
}

func init() {
	snapshotPullCmd.Flags().StringVarP(&pullOutput, "output", "o", "", "Output file (default stdout)")

	for _, cmd := range []*cobra.Command{snapshotListCmd, snapshotPushCmd, snapshotPullCmd, snapshotDeleteCmd} {
		addStoreFlags(cmd)
		snapshotCmd.AddCommand(cmd)
	}
}
