// Copyright (C) 2026, luxfi/dds Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Command ddsctl is a small CLI surface over the core's domain/entity
// operations: create a participant, print default QoS, and
// check reader/writer QoS compatibility from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/dds"
	"github.com/luxfi/dds/qos"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddsctl",
		Short: "Inspect and exercise the core DDS entity/QoS machinery",
	}
	cmd.AddCommand(defaultQoSCmd(), matchCmd(), participantCmd())
	return cmd
}

func defaultQoSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default-qos",
		Short: "Print the DDS-specified default QoS policy set as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(dds.DefaultQoS())
		},
	}
}

func matchCmd() *cobra.Command {
	var readerReliable, writerReliable bool
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Check RELIABILITY compatibility between a reader and writer QoS",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, w := qos.Default(), qos.Default()
			r.Set(qos.Reliability)
			w.Set(qos.Reliability)
			if readerReliable {
				r.ReliabilityValue.Kind = qos.Reliable
			}
			if writerReliable {
				w.ReliabilityValue.Kind = qos.Reliable
			}
			reason := qos.Match(&r, &w, qos.Reliability)
			if reason == qos.ReasonNone {
				fmt.Println("compatible")
				return nil
			}
			fmt.Printf("incompatible: failing policy %v\n", reason)
			return nil
		},
	}
	cmd.Flags().BoolVar(&readerReliable, "reader-reliable", false, "set reader RELIABILITY=RELIABLE")
	cmd.Flags().BoolVar(&writerReliable, "writer-reliable", true, "set writer RELIABILITY=RELIABLE")
	return cmd
}

func participantCmd() *cobra.Command {
	var domainID int32
	cmd := &cobra.Command{
		Use:   "participant",
		Short: "Create a participant in a fresh, in-process domain and print its handle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dds.DefaultConfig()
			if err != nil {
				return err
			}
			cfg.DomainID = domainID
			domain := dds.NewDomain(cfg, nil)
			p, err := domain.CreateParticipant(dds.DefaultQoS())
			if err != nil {
				return err
			}
			fmt.Printf("participant handle=%d domain=%d\n", p.Handle(), domainID)
			return nil
		},
	}
	cmd.Flags().Int32Var(&domainID, "domain-id", 0, "domain id")
	return cmd
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
