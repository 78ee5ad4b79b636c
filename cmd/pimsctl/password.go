// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pims-archive/pims/internal/platform/sec"
)

// hashPasswordCommand prints a PIMS_ACCOUNTS entry. The password is read from
// the first line of stdin so it stays out of the shell history.
func hashPasswordCommand() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "hash-password [username]",
		Short: "Print a PIMS_ACCOUNTS entry for a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !sec.UserRole(role).Valid() {
				return fmt.Errorf("unknown role %q (use admin or editor)", role)
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				if err != nil {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				return errors.New("empty password")
			}

			hash, err := sec.HashPassword(password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s:%s\n", args[0], role, hash)
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(sec.RoleEditor), "Account role: admin or editor")
	return cmd
}
