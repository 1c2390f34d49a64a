// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/options"
	"github.com/dsfproto/dsf-core/internal/service"
	"github.com/dsfproto/dsf-core/internal/types"
	"github.com/dsfproto/dsf-core/internal/wire"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a primary page, secondary page, or data block",
}

// defaultWindow is the issued/expiry window dsfctl stamps on whatever
// it publishes when the caller doesn't override it with --ttl.
func defaultWindow(ttl time.Duration) service.PublishOptions {
	now := types.Now()
	return service.PublishOptions{
		Issued: now,
		Expiry: types.FromTime(now.Time().Add(ttl)),
	}
}

func loadSigningService(privHex string) (*service.Service, error) {
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("decoding --priv: %w", err)
	}
	if len(raw) != types.PrivateKeyLen {
		return nil, fmt.Errorf("--priv must be %d hex-encoded bytes", types.PrivateKeyLen)
	}
	var priv types.PrivateKey
	copy(priv[:], raw)
	return service.NewBuilder(crypto.Native{}).PrivateKey(priv).Build()
}

func writeContainer(c wire.Container) {
	os.Stdout.Write(c.Raw())
}

var publishPrimaryCmd = &cobra.Command{
	Use:   "primary",
	Short: "Mint and sign a primary page from --priv and --body",
	RunE: func(cmd *cobra.Command, args []string) error {
		privHex, _ := cmd.Flags().GetString("priv")
		body, _ := cmd.Flags().GetString("body")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		svc, err := loadSigningService(privHex)
		if err != nil {
			return err
		}
		if err := svc.Update(func(b *[]byte, _ *[]options.Option, _ *[]options.Option) {
			*b = []byte(body)
		}); err != nil {
			return err
		}

		c, err := svc.PublishPrimary(defaultWindow(ttl))
		if err != nil {
			return err
		}
		writeContainer(c)
		return nil
	},
}

var publishDataCmd = &cobra.Command{
	Use:   "data",
	Short: "Mint and sign the next data block from --priv and --body",
	RunE: func(cmd *cobra.Command, args []string) error {
		privHex, _ := cmd.Flags().GetString("priv")
		body, _ := cmd.Flags().GetString("body")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		svc, err := loadSigningService(privHex)
		if err != nil {
			return err
		}
		c, err := svc.PublishData([]byte(body), defaultWindow(ttl))
		if err != nil {
			return err
		}
		writeContainer(c)
		return nil
	},
}

var publishSecondaryCmd = &cobra.Command{
	Use:   "secondary",
	Short: "Mint and sign a replica pointer at --target from --priv",
	RunE: func(cmd *cobra.Command, args []string) error {
		privHex, _ := cmd.Flags().GetString("priv")
		targetHex, _ := cmd.Flags().GetString("target")
		body, _ := cmd.Flags().GetString("body")
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
		c, err := svc.PublishSecondary(target, wire.PageReplica, []byte(body), defaultWindow(ttl))
		if err != nil {
			return err
		}
		writeContainer(c)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{publishPrimaryCmd, publishDataCmd, publishSecondaryCmd} {
		c.Flags().String("priv", "", "hex-encoded private key to sign with (required)")
		c.Flags().String("body", "", "cleartext body to publish")
		c.Flags().Duration("ttl", 24*time.Hour, "how long the published object should be valid for")
		_ = c.MarkFlagRequired("priv")
	}
	publishSecondaryCmd.Flags().String("target", "", "hex-encoded id of the service being replicated (required)")
	_ = publishSecondaryCmd.MarkFlagRequired("target")

	publishCmd.AddCommand(publishPrimaryCmd, publishDataCmd, publishSecondaryCmd)
	rootCmd.AddCommand(publishCmd)
}
