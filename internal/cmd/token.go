package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"debate_arena/internal/utils"
)

var (
	tokenUserID   uint
	tokenUsername string
)

// 帳號由外部服務管理，開發與測試時用這個指令簽發 token
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a participant token with the configured secret",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().UintVar(&tokenUserID, "user-id", 0, "user id to embed in the token")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "display name to embed in the token")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenUserID == 0 || tokenUsername == "" {
		return errors.New("--user-id and --username are required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := utils.NewTokenManager(cfg.Auth.JWTSecret, utils.DefaultTokenTTL).GenerateToken(tokenUserID, tokenUsername)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
