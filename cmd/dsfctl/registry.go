// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsfproto/dsf-core/internal/registry"
	"github.com/dsfproto/dsf-core/internal/types"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Resolve and mint tertiary (name-service) pages",
}

var registryResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Compute the deterministic tertiary id for --name under --priv",
	RunE: func(cmd *cobra.Command, args []string) error {
		privHex, _ := cmd.Flags().GetString("priv")
		name, _ := cmd.Flags().GetString("name")

		svc, err := loadSigningService(privHex)
		if err != nil {
			return err
		}
		tid := registry.New(svc).Resolve(registry.Name(name))
		fmt.Println(hex.EncodeToString(tid[:]))
		return nil
	},
}

var registryPublishCmd = &cobra.Command{
	Use:   "publish-tertiary",
	Short: "Mint a tertiary page linking --name to --target under --priv",
	RunE: func(cmd *cobra.Command, args []string) error {
		privHex, _ := cmd.Flags().GetString("priv")
		name, _ := cmd.Flags().GetString("name")
		targetHex, _ := cmd.Flags().GetString("target")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		raw, err := hex.DecodeString(targetHex)
		if err != nil || len(raw) != types.IDLen {
			return fmt.Errorf("--target must be %d hex-encoded bytes", types.IDLen)
		}
		var target types.Id
		copy(target[:], raw)

		svc, err := loadSigningService(privHex)
		if err != nil {
			return err
		}
		c, err := registry.New(svc).PublishTertiary(target, registry.Name(name), defaultWindow(ttl))
		if err != nil {
			return err
		}
		writeContainer(c)
		return nil
	},
}

func init() {
	registryResolveCmd.Flags().String("priv", "", "hex-encoded registry private key (required)")
	registryResolveCmd.Flags().String("name", "", "queryable name to resolve (required)")
	_ = registryResolveCmd.MarkFlagRequired("priv")
	_ = registryResolveCmd.MarkFlagRequired("name")

	registryPublishCmd.Flags().String("priv", "", "hex-encoded registry private key (required)")
	registryPublishCmd.Flags().String("name", "", "queryable name being registered (required)")
	registryPublishCmd.Flags().String("target", "", "hex-encoded id of the target service (required)")
	registryPublishCmd.Flags().Duration("ttl", 24*time.Hour, "validity window for the minted page")
	_ = registryPublishCmd.MarkFlagRequired("priv")
	_ = registryPublishCmd.MarkFlagRequired("name")
	_ = registryPublishCmd.MarkFlagRequired("target")

	registryCmd.AddCommand(registryResolveCmd, registryPublishCmd)
	rootCmd.AddCommand(registryCmd)
}
