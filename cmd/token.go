/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/feedchain/feedchain/internal/auth"
	"github.com/spf13/cobra"
)

// tokenCommands issues signed bearer tokens for local development and
// smoke tests.
func tokenCommands(app *feedchainInstance) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue a bearer token for a user and role",
		Run: func(cmd *cobra.Command, args []string) {
			issuer := auth.New(app.cnf.Auth.JWTSecret, app.cnf.Auth.Issuer)
			token, err := issuer.GenerateToken(userID, role, ttl)
			if err != nil {
				log.Fatalf("Error issuing token: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to embed in the token")
	cmd.Flags().StringVar(&role, "role", "", "role: donor, ngo or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
