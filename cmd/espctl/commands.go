package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/esphost/internal/config"
	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/frame"
	"github.com/danmuck/esphost/internal/protocol/hci"
	"github.com/danmuck/esphost/internal/protocol/rpc"
	"github.com/danmuck/esphost/internal/protocol/session"
	"github.com/spf13/cobra"
)

func decodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode one received frame",
		Long: `Decode one frame given as hex, or read from stdin when no argument is given.
Responses are shown even though no request is pending for them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHexArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			s, err := session.New(opts.cfg.Session, frame.NewSeqCounter(0), discard, nil)
			if err != nil {
				return err
			}
			in, err := s.Receive(raw)
			if err != nil && !errors.Is(err, protocol.ErrUnexpectedResponse) && !errors.Is(err, protocol.ErrDeviceError) {
				return err
			}
			describe(cmd.OutOrStdout(), in)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "note: %v\n", err)
			}
			return nil
		},
	}
}

func requestCmd(opts *rootOptions) *cobra.Command {
	var (
		id      string
		uid     uint32
		payload string
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Build a request frame and print it as hex",
		RunE: func(cmd *cobra.Command, args []string) error {
			msgID, err := rpc.ParseMsgID(id)
			if err != nil {
				return err
			}
			body, err := parseHex(payload)
			if err != nil {
				return fmt.Errorf("parse payload: %w", err)
			}
			out := &capture{}
			s, err := session.New(opts.cfg.Session, frame.NewSeqCounter(0), out.write, nil)
			if err != nil {
				return err
			}
			if err := s.SendRequest(msgID, uid, body); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out.last))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "message name or number, e.g. ReqGetWifiMode")
	cmd.Flags().Uint32Var(&uid, "uid", 1, "request uid")
	cmd.Flags().StringVar(&payload, "payload", "", "request body as hex")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func hciCmd(opts *rootOptions) *cobra.Command {
	var (
		opcode string
		params string
	)

	cmd := &cobra.Command{
		Use:   "hci-cmd",
		Short: "Build an HCI command frame and print it as hex",
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := hci.ParseOpcode(opcode)
			if err != nil {
				return err
			}
			body, err := parseHex(params)
			if err != nil {
				return fmt.Errorf("parse params: %w", err)
			}
			out := &capture{}
			s, err := session.New(opts.cfg.Session, frame.NewSeqCounter(0), out.write, nil)
			if err != nil {
				return err
			}
			if err := s.SendHciCommand(op, body); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out.last))
			return nil
		},
	}

	cmd.Flags().StringVar(&opcode, "opcode", "", "command name or opcode, e.g. LE_SET_SCAN_ENABLE or 0x200C")
	cmd.Flags().StringVar(&params, "params", "", "parameters as hex")
	_ = cmd.MarkFlagRequired("opcode")

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate link config files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a link config template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			if err := config.WriteTemplate(args[0], kind, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s config template to %s\n", kind, args[0])
			return nil
		},
	}
	initCmd.Flags().String("kind", "uart", "template kind: uart|spi|sdio")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a link config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadLinkConfig(args[0])
			if err != nil {
				return err
			}
			sc, err := config.SessionConfig(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "validated %s: transport=%s buffer=%d tlv=%t\n",
				args[0], sc.Transport, sc.BufferSize, sc.SerialTLV)
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

// capture keeps a copy of the last frame written.
type capture struct {
	last []byte
}

func (c *capture) write(b []byte) error {
	c.last = append(c.last[:0], b...)
	return nil
}

func discard([]byte) error { return nil }

func readHexArg(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 1 {
		return parseHex(args[0])
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return parseHex(string(data))
}

// parseHex accepts hex with optional whitespace, colons or a 0x prefix.
func parseHex(raw string) ([]byte, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, raw)
	return hex.DecodeString(clean)
}

func describe(w io.Writer, in session.Inbound) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	if in.Resync.Aligned {
		h := in.Header
		fmt.Fprintf(bw, "frame iface=%s/%d pkt=0x%02x len=%d seq=%d throttle=%s\n",
			h.IfType, h.IfNum, uint8(h.PktType), h.Length, h.SeqNum, h.Throttle)
	} else {
		fmt.Fprintf(bw, "shifted shift=%d payload_start=%d pattern=%s\n",
			in.Resync.Shift, in.Resync.PayloadStart, in.Resync.Pattern)
	}

	switch in.Kind {
	case session.InboundRPC:
		fmt.Fprintf(bw, "rpc %s payload=%s\n", in.Rpc, hex.EncodeToString(in.Payload))
	case session.InboundHCI:
		for i, ev := range in.Events {
			describeEvent(bw, i, ev)
		}
	case session.InboundData, session.InboundPrivate:
		fmt.Fprintf(bw, "%s payload=%s\n", in.Kind, hex.EncodeToString(in.Payload))
	}
}

func describeEvent(w io.Writer, i int, ev hci.Event) {
	switch ev.Kind {
	case hci.KindCommandComplete:
		fmt.Fprintf(w, "hci[%d] command-complete op=%s status=0x%02x n_cmd=%d rest=%s\n",
			i, ev.Opcode, ev.Status, ev.NumCmd, hex.EncodeToString(ev.Rest))
	case hci.KindCommandStatus:
		fmt.Fprintf(w, "hci[%d] command-status op=%s status=0x%02x n_cmd=%d\n", i, ev.Opcode, ev.Status, ev.NumCmd)
	case hci.KindAdvertisingReport:
		fmt.Fprintf(w, "hci[%d] advertising-report reports=%d\n", i, len(ev.Reports))
		for _, r := range ev.Reports {
			fmt.Fprintf(w, "  addr=%s type=%d evt=%d rssi=%d data=%s\n",
				r.AddrString(), r.AddrType, r.EventType, r.RSSI, hex.EncodeToString(r.Data))
			for _, ad := range r.Parsed {
				if name, ok := ad.Name(); ok {
					fmt.Fprintf(w, "    %s %q\n", ad.Kind, name)
					continue
				}
				fmt.Fprintf(w, "    %s type=0x%02x %s\n", ad.Kind, uint8(ad.Type), hex.EncodeToString(ad.Value))
			}
		}
	default:
		fmt.Fprintf(w, "hci[%d] event=0x%02x params=%s\n", i, ev.Code, hex.EncodeToString(ev.Params))
	}
}
