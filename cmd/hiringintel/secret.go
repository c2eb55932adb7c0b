package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/hiringintel/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the provider API key in the OS keychain",
}

var secretSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key",
	Long:  "Stores the API key in the OS keychain. With no argument the key is read from stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSecretSet,
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the API key",
	RunE:  runSecretDelete,
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretDeleteCmd)
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Fprint(os.Stderr, "API key: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading key: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	if err := secrets.SetAPIKey(key); err != nil {
		return fmt.Errorf("storing key: %w", err)
	}
	fmt.Println("API key stored in keychain.")
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	if err := secrets.DeleteAPIKey(); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	fmt.Println("API key removed from keychain.")
	return nil
}
