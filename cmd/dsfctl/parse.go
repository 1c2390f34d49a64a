// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsfproto/dsf-core/internal/crypto"
	"github.com/dsfproto/dsf-core/internal/parser"
	"github.com/dsfproto/dsf-core/internal/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse and verify a container read from --in (or stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, _ := cmd.Flags().GetString("in")
		pubHex, _ := cmd.Flags().GetString("pubkey")
		secretHex, _ := cmd.Flags().GetString("secret")

		buf, err := readInput(inPath)
		if err != nil {
			return err
		}

		provider := crypto.Native{}
		ks := parser.NewMappingKeySource()
		if pubHex != "" {
			raw, err := hex.DecodeString(pubHex)
			if err != nil || len(raw) != types.PublicKeyLen {
				return fmt.Errorf("--pubkey must be %d hex-encoded bytes", types.PublicKeyLen)
			}
			var pub types.PublicKey
			copy(pub[:], raw)
			ks.Set(provider.Hash(pub), types.Keys{PublicKey: &pub})
		}

		p := parser.New(provider, ks)
		parsed, err := p.Parse(buf)
		if err != nil {
			return err
		}

		h := parsed.Container.Header()
		fmt.Printf("id:       %s\n", hex.EncodeToString(parsed.Container.IdRaw()))
		fmt.Printf("kind:     0x%04x\n", uint16(h.Kind()))
		fmt.Printf("flags:    0x%04x\n", uint16(h.Flags()))
		fmt.Printf("index:    %d\n", h.Index())
		fmt.Printf("signer:   %s\n", hex.EncodeToString(parsed.PublicKey[:]))
		fmt.Printf("verified: true\n")

		if secretHex == "" {
			fmt.Printf("body_len: %d\n", len(parsed.Container.Body()))
			return nil
		}
		raw, err := hex.DecodeString(secretHex)
		if err != nil || len(raw) != types.SecretKeyLen {
			return fmt.Errorf("--secret must be %d hex-encoded bytes", types.SecretKeyLen)
		}
		var sk types.SecretKey
		copy(sk[:], raw)
		body, err := p.Decrypt(parsed, sk)
		if err != nil {
			return err
		}
		fmt.Printf("body:     %s\n", string(body))
		return nil
	},
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func init() {
	parseCmd.Flags().String("in", "", "path to a container file (defaults to stdin)")
	parseCmd.Flags().String("pubkey", "", "hex-encoded public key to verify against, if already known")
	parseCmd.Flags().String("secret", "", "hex-encoded secret key to decrypt the body with")
	rootCmd.AddCommand(parseCmd)
}
