// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/service"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a fresh Ed25519 service keypair",
	RunE: func(cmd *cobra.Command, args []string) error {
		persist, _ := cmd.Flags().GetBool("persist")

		svc, err := service.NewBuilder(crypto.Native{}).Build()
		if err != nil {
			return err
		}

		id := svc.Id()
		pub := svc.PublicKey()
		priv, _ := svc.PrivateKey()

		slog.Debug("generated keypair", "id", hex.EncodeToString(id[:]))
		fmt.Printf("id:          %s\n", hex.EncodeToString(id[:]))
		fmt.Printf("public_key:  %s\n", hex.EncodeToString(pub[:]))
		fmt.Printf("private_key: %s\n", hex.EncodeToString(priv[:]))

		if persist {
			ks, err := openKeySource()
			if err != nil {
				return err
			}
			if err := ks.Put(id, svc.Keys()); err != nil {
				return err
			}
			slog.Info("persisted key material", "id", hex.EncodeToString(id[:]), "dsn", cfg.DB.DSN)
		}
		return nil
	},
}

func init() {
	keygenCmd.Flags().Bool("persist", false, "save the generated key material to the durable key store")
	rootCmd.AddCommand(keygenCmd)
}
