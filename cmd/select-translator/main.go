package main

import (
	"os"

	"github.com/nerdneilsfield/select-translator/internal/cli"
)

// Version information
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// 创建根命令，错误由 cobra 输出到 stderr
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
