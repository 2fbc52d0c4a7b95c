package cmd

import (
	"fmt"
	"github.com/ValentinKolb/tKV/cmd/kv"
	"github.com/ValentinKolb/tKV/cmd/serve"
	"github.com/ValentinKolb/tKV/cmd/util"
	"github.com/spf13/cobra"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (
	Version = "1.0.2"

	installScriptURL = "https://raw.githubusercontent.com/ValentinKolb/tKV/refs/heads/main/install.sh"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tkv",
		Short: "trie-backed key-value store",
		Long: fmt.Sprintf(`tKV (v%s)

An in-memory key-value store library written in Go, built on a
radix trie with hierarchical keys and two-tier recency tracking.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tKV v%s\n", Version)
		},
	}

	// upgradeCmd downloads and runs the install script
	upgradeCmd = &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade tKV to the latest version",
		Long:  `Upgrade tKV to the latest version by downloading and running the installation script.`,
		Run: func(cmd *cobra.Command, args []string) {
			if runtime.GOOS == "windows" {
				fmt.Println("Windows is not supported.")
				os.Exit(1)
			}

			fmt.Println("Upgrading tKV to the latest version...")

			installPath, _ := cmd.Flags().GetString("path")
			fromSource, _ := cmd.Flags().GetBool("source")

			// pass the flags through to the install script
			var opts []string
			if installPath != "" {
				opts = append(opts, "--path="+installPath)
			}
			if fromSource {
				opts = append(opts, "--source")
			}

			cmdStr := fmt.Sprintf("curl -s %s | bash", installScriptURL)
			if len(opts) > 0 {
				cmdStr += " -- " + strings.Join(opts, " ")
			}

			shell := exec.Command("bash", "-c", cmdStr)
			shell.Stdout = os.Stdout
			shell.Stderr = os.Stderr

			fmt.Println("Executing:", cmdStr)
			if err := shell.Run(); err != nil {
				fmt.Printf("Error upgrading tKV: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("tKV has been successfully upgraded!")
		},
	}
)

func init() {
	RootCmd.AddCommand(
		serve.ServeCmd,
		kv.KeyValueCommands,
		versionCmd,
		upgradeCmd,
	)

	upgradeCmd.Flags().String("path", "", "Installation path for the upgraded version")
	upgradeCmd.Flags().Bool("source", false, "Install from source instead of using pre-compiled binaries")

	RootCmd.PersistentFlags().String("serializer", "json", util.WrapString("serializer to use (json, gob, binary)"))
	RootCmd.PersistentFlags().String("transport", "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
