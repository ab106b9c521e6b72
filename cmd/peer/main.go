package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mridul249/p2p-electron/peer"
	"github.com/mridul249/p2p-electron/transfer"
)

var (
	serverURL    string
	username     string
	password     string
	dataDir      string
	listenAddr   string
	registerFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "peer",
	Short: "Peer agent for the file-sharing registry",
	Long: `Peer agent for the file-sharing registry.

It serves the shared directory to other peers over a direct TCP connection
and keeps the registry informed of what is available here.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Go online: serve shared files and heartbeat until interrupted",
	RunE:  runServe,
}

var shareCmd = &cobra.Command{
	Use:   "share <file>...",
	Short: "Copy files into the shared directory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShare,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the registry for files on live peers",
	RunE:  runSearch,
}

var getCmd = &cobra.Command{
	Use:   "get <filename>",
	Short: "Download a file from the peer that advertises it",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var (
	searchFilename string
	searchUsername string
	getFrom        string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:5001", "Registry base URL")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Peer username")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Peer password")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Directory for shared_files and downloads")

	serveCmd.Flags().StringVar(&listenAddr, "listen", ":0", "Transfer listener address")
	serveCmd.Flags().BoolVar(&registerFlag, "register", false, "Register the account before logging in")

	searchCmd.Flags().StringVar(&searchFilename, "filename", "", "Filename substring filter")
	searchCmd.Flags().StringVar(&searchUsername, "peer", "", "Username substring filter")

	getCmd.Flags().StringVar(&getFrom, "from", "", "Only download from this peer")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".p2p-file-sharing"
	}
	return filepath.Join(home, ".p2p-file-sharing")
}

func newAgent() (*peer.Agent, error) {
	if username == "" || password == "" {
		return nil, errors.New("--username and --password are required")
	}
	client := peer.NewClient(serverURL)
	return peer.NewAgent(client, username, password,
		filepath.Join(dataDir, "shared_files"),
		filepath.Join(dataDir, "downloads"))
}

func runServe(cmd *cobra.Command, args []string) error {
	agent, err := newAgent()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := agent.Start(ctx, listenAddr, registerFlag); err != nil {
		return err
	}
	fmt.Printf("Serving shared files at %s (Ctrl-C to stop)\n", agent.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nGoing offline...")
	return agent.Stop(context.Background())
}

func runShare(cmd *cobra.Command, args []string) error {
	agent, err := newAgent()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := agent.Start(ctx, ":0", false); err != nil {
		return err
	}
	defer agent.Stop(ctx)

	copied, err := agent.AddFiles(ctx, args)
	if err != nil {
		return err
	}
	fmt.Printf("Shared %d file(s)\n", copied)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	client := peer.NewClient(serverURL)
	files, err := client.SearchFiles(context.Background(), searchFilename, searchUsername)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No files found on live peers.")
		return nil
	}
	for _, f := range files {
		fmt.Printf("%-40s  %-16s  %s\n", f.Filename, f.Username, f.Addr())
	}
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	filename := args[0]
	client := peer.NewClient(serverURL)
	ctx := context.Background()

	files, err := client.SearchFiles(ctx, filename, getFrom)
	if err != nil {
		return err
	}
	var match *peer.RemoteFile
	for i := range files {
		if files[i].Filename == filename {
			match = &files[i]
			break
		}
	}
	if match == nil {
		return fmt.Errorf("no live peer advertises %q", filename)
	}

	destDir := filepath.Join(dataDir, "downloads")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	fmt.Printf("Downloading %s from %s (%s)\n", match.Filename, match.Username, match.Addr())
	res, err := transfer.Download(ctx, match.Addr(), match.Filename, destDir, func(p transfer.Progress) {
		fmt.Printf("\r%.1f%% (%d/%d bytes)", p.Percent, p.Received, p.Expected)
	})
	if err != nil {
		fmt.Println()
		return err
	}
	fmt.Println()
	if !res.Complete() {
		return fmt.Errorf("size mismatch: received %d bytes, peer advertised %d", res.Received, res.Expected)
	}
	fmt.Printf("Download complete: %s\n", res.Path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
