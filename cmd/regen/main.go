package main

import (
	"os"

	"regen/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.GenerateCmd())
	rootCmd.AddCommand(commands.CheckCmd())
	rootCmd.AddCommand(commands.DepsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
