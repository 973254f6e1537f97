package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"

	"camlink/core"
	"camlink/host/config"
	"camlink/host/modem"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (overrides config)")
	idle       = flag.Duration("idle", 0, "Quiet interval closing a reply (0 = two character times)")
	timeout    = flag.Duration("timeout", 0, "Reply timeout (0 = wait forever)")
	period     = flag.Duration("period", -1, "Periodic query interval (0 = console only)")
	query      = flag.String("query", "", "Periodic query command")
	policy     = flag.String("policy", "", "Overflow policy: shutdown or discard")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	core.TimerInit()
	core.SetDebugWriter(func(s string) {
		log.WithField("component", "core").Debug(s)
	})
	core.InitAsyncDebug()

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	fmt.Println("camlink host - AT modem console")
	fmt.Println("===============================")
	fmt.Println()

	log.WithFields(log.Fields{
		"device": cfg.Device,
		"baud":   cfg.Baud,
		"policy": cfg.Policy,
	}).Info("Connecting to modem")

	m, err := modem.Connect(cfg.Serial(), cfg.Core())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect")
	}
	defer m.Close()

	m.OnReply(printReply)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Run(ctx)

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "stats":
			printStats(m.Stats())

		case "trace":
			core.DumpTraceRing()

		case "restart":
			m.Restart()
			fmt.Println("Link restarted")

		default:
			cmd, err := parseCommand(parts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if err := m.Send(cmd); err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to send %s: %v\n", cmd, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file if given and applies flag overrides.
func loadConfig() (*config.HostConfig, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return nil, err
		}
	}

	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if *idle != 0 {
		cfg.IdleMS = int(*idle / time.Millisecond)
	}
	if *timeout != 0 {
		cfg.ReplyTimeoutMS = int(*timeout / time.Millisecond)
	}
	if *period >= 0 {
		cfg.PeriodMS = int(*period / time.Millisecond)
	}
	if *query != "" {
		cfg.Query = *query
	}
	if *policy != "" {
		if _, ok := core.ParseOverflowPolicy(*policy); !ok {
			return nil, fmt.Errorf("unknown overflow policy %q", *policy)
		}
		cfg.Policy = *policy
	}
	return cfg, nil
}

// parseCommand maps console words to a modem command.
func parseCommand(parts []string) (core.Command, error) {
	switch parts[0] {
	case "at":
		return core.CmdAT(), nil
	case "rst":
		return core.CmdReset(), nil
	case "gmr":
		return core.CmdVersion(), nil
	case "mode?":
		return core.CmdCWModeQuery(), nil
	case "mode":
		if len(parts) < 2 {
			return core.CmdCWModeQuery(), nil
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < int(core.ModeStation) || n > int(core.ModeStationSoftAP) {
			return core.Command{}, fmt.Errorf("mode must be 1, 2 or 3, got %q", parts[1])
		}
		return core.CmdCWModeSet(core.WifiMode(n)), nil
	case "send":
		switch len(parts) {
		case 2:
			return core.NewCommand(parts[1]), nil
		case 3:
			return core.NewCommandWithPayload(parts[1], parts[2]), nil
		}
		return core.Command{}, fmt.Errorf("usage: send NAME [PAYLOAD]")
	}
	if strings.HasPrefix(strings.ToUpper(parts[0]), "AT") {
		return config.ParseCommand(strings.Join(parts, " ")), nil
	}
	return core.Command{}, fmt.Errorf("unknown command: %s (type 'help' for available commands)", parts[0])
}

func printReply(r core.Reply) {
	fmt.Printf("\n<< [%s] %d bytes\n", r.Status(), r.Len())
	for _, line := range r.Lines() {
		fmt.Printf("   %s\n", line)
	}
	fmt.Print("> ")
}

func printStats(s modem.Stats) {
	fmt.Println("\nLink statistics:")
	fmt.Printf("  state            %s (%d bytes buffered)\n", s.State, s.Buffered)
	fmt.Printf("  commands sent    %d\n", s.Transport.CommandsSent)
	fmt.Printf("  bytes received   %d\n", s.Transport.BytesReceived)
	fmt.Printf("  replies drained  %d\n", s.Transport.RepliesDrained)
	fmt.Printf("  replies received %d\n", s.Received)
	fmt.Printf("  overflows        %d\n", s.Transport.Overflows)
	fmt.Printf("  timeouts         %d\n", s.Transport.Timeouts)
	fmt.Printf("  dropped          %d\n", s.Dropped)
	fmt.Printf("  receive errors   %d\n", s.RxErrors)
	fmt.Printf("  send errors      %d\n", s.SendErrors)
	fmt.Printf("  fifo overruns    %d\n", s.Overruns)
	fmt.Printf("  interrupts       %d\n", s.Invocations)
	if s.Shutdown {
		fmt.Printf("  SHUTDOWN: %s (use 'restart')\n", s.Reason)
	}
	fmt.Println()
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help           - Show this help message")
	fmt.Println("  at             - Send AT")
	fmt.Println("  gmr            - Query modem firmware version (AT+GMR)")
	fmt.Println("  rst            - Restart the modem (AT+RST)")
	fmt.Println("  mode?          - Query Wi-Fi mode (AT+CWMODE?)")
	fmt.Println("  mode N         - Set Wi-Fi mode 1, 2 or 3 (AT+CWMODE=N)")
	fmt.Println("  send NAME [P]  - Send a raw command name with optional payload")
	fmt.Println("  AT...          - Send the line as typed")
	fmt.Println("  stats          - Print link statistics")
	fmt.Println("  trace          - Dump the transport trace ring")
	fmt.Println("  restart        - Leave the shutdown state and listen again")
	fmt.Println("  quit/exit/q    - Exit the program")
	fmt.Println()
}
