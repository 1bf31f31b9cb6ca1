// Command zstackctl drives a CC253x Zigbee coordinator radio from the
// command line: open the serial port, run the startup handshake, and issue
// one typed operation.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/cc253x/zstack/coordinator"
	"github.com/cc253x/zstack/mt"
	"github.com/cc253x/zstack/transport"
	"github.com/cc253x/zstack/unpi"
	"github.com/spf13/cobra"
)

var (
	flagDevice      string
	flagBaud        int
	flagTwoByteLen  bool
	flagTimeout     time.Duration
	flagSkipStartup bool
)

func main() {
	root := &cobra.Command{
		Use:   "zstackctl",
		Short: "Drive a CC253x Zigbee coordinator over its MT serial interface",
	}
	root.PersistentFlags().StringVarP(&flagDevice, "device", "d", "", "serial device path (platform default if empty)")
	root.PersistentFlags().IntVarP(&flagBaud, "baud", "b", transport.DefaultBaudRate, "baud rate")
	root.PersistentFlags().BoolVar(&flagTwoByteLen, "two-byte-length", false, "use the two-byte UNPI length field variant")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 5*time.Second, "per-request timeout (not applied: requests use the coordinator's built-in 5s timeout)")
	root.PersistentFlags().BoolVar(&flagSkipStartup, "skip-startup", false, "skip the ping/version/startup_from_app handshake")

	root.AddCommand(
		pingCmd(),
		versionCmd(),
		permitJoinCmd(),
		ledCmd(),
		resetCmd(),
		channelCmd(),
		deviceInfoCmd(),
		watchCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func openCoordinator() (*coordinator.Coordinator, error) {
	lenType := unpi.OneByteLen()
	if flagTwoByteLen {
		lenType = unpi.TwoByteLen()
	}
	cfg := transport.Config{Path: flagDevice, BaudRate: flagBaud, LenType: lenType}
	c, err := coordinator.Open(transport.SerialOpener{}, cfg)
	if err != nil {
		return nil, err
	}
	if flagSkipStartup {
		return c, nil
	}
	if err := c.Start(); err != nil {
		c.Stop()
		return nil, err
	}
	return c, nil
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Run the startup handshake and print the firmware version",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			v := c.Version()
			fmt.Printf("transport_rev=%d product=%d release=%d.%d.%d revision=%d\n",
				v.TransportRev, v.Product, v.MajorRel, v.MinorRel, v.MaintRel, v.Revision)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the radio firmware version",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			fmt.Printf("%+v\n", c.Version())
			return nil
		},
	}
}

func permitJoinCmd() *cobra.Command {
	var seconds int
	var addrHex string
	cmd := &cobra.Command{
		Use:   "permit-join",
		Short: "Open (or close) the network to new device joins",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			var addr *uint16
			if addrHex != "" {
				var v uint16
				if _, err := fmt.Sscanf(addrHex, "%04x", &v); err != nil {
					return fmt.Errorf("parsing address %q: %w", addrHex, err)
				}
				addr = &v
			}
			return c.PermitJoin(time.Duration(seconds)*time.Second, addr)
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", 60, "how long to permit joins, in seconds (0 closes the network)")
	cmd.Flags().StringVar(&addrHex, "address", "", "target a single device's short address instead of broadcasting")
	return cmd
}

func ledCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "led [on|off|disable]",
		Short:     "Control the radio's status LED",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "disable"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var opt coordinator.LEDOption
			switch args[0] {
			case "on":
				opt = coordinator.LEDOn
			case "off":
				opt = coordinator.LEDOff
			case "disable":
				opt = coordinator.LEDDisable
			default:
				return fmt.Errorf("unknown led state %q", args[0])
			}
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			return c.SetLED(opt)
		},
	}
}

func resetCmd() *cobra.Command {
	var soft bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the radio",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagSkipStartup = true
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			kind := mt.ResetHard
			if soft {
				kind = mt.ResetSoft
			}
			return c.Reset(kind)
		},
	}
	cmd.Flags().BoolVar(&soft, "soft", false, "issue a soft reset instead of a hard reset")
	return cmd
}

func channelCmd() *cobra.Command {
	var channel int
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Move the network to a single 802.15.4 channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			return c.ChangeChannel(uint8(channel))
		},
	}
	cmd.Flags().IntVar(&channel, "channel", 15, "802.15.4 channel number (11-26)")
	return cmd
}

func deviceInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device-info",
		Short: "Print the radio's own device record",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			info, err := c.DeviceInfo()
			if err != nil {
				return err
			}
			fmt.Printf("short_addr=0x%04x ieee=%x device_type=%d assoc_devices=%v\n",
				info.ShortAddr, info.IEEEAddr, info.DeviceType, info.AssocDevicesList)
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print network events as they arrive until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCoordinator()
			if err != nil {
				return err
			}
			defer c.Stop()
			c.SetOnEvent(func(ev coordinator.ZigbeeEvent) {
				fmt.Printf("%#v\n", ev)
			})
			select {}
		},
	}
}
