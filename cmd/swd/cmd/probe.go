package cmd

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
	"github.com/sirupsen/logrus"
)

var (
	probeType string
	probeVID  string
	probePID  string
	clockPin  uint8
	dataPin   uint8
	simIDCode string
)

// simTarget is shared across commands in one process so a scripted write
// followed by a read observes the same simulated memory.
var simTarget *swd.SimTarget

func sharedSimTarget() *swd.SimTarget {
	if simTarget == nil {
		simTarget = swd.NewSimTarget()
		if simIDCode != "" {
			id, err := strconv.ParseUint(simIDCode, 0, 32)
			if err == nil {
				simTarget.IDCode = uint32(id)
			}
		}
	}
	return simTarget
}

// openLink builds an initialized link over the selected probe. The returned
// closer releases the probe's transport; it is a no-op for the simulator.
func openLink() (*swd.Link, func() error, error) {
	verbosity := swd.VerbosityError
	if verbose {
		verbosity = swd.VerbosityInfo
	}
	if trace {
		verbosity = swd.VerbosityTrace
	}

	var (
		clock, data swd.Line
		closer      = func() error { return nil }
	)

	switch probeType {
	case "simulator", "sim":
		if verbose {
			fmt.Println("Using simulated target")
		}
		target := sharedSimTarget()
		clock, data = target.Clock, target.Data

	case "cmsisdap", "cmsis", "dap":
		vid, pid, err := parseVIDPID()
		if err != nil {
			return nil, nil, err
		}
		if verbose {
			fmt.Printf("Opening CMSIS-DAP probe %04X:%04X...\n", vid, pid)
		}
		probe, err := swd.NewCMSISDAPProbe(vid, pid)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open CMSIS-DAP probe: %w", err)
		}
		if verbose {
			info := probe.Info()
			fmt.Printf("Connected to: %s %s\n", info.Vendor, info.Model)
			if info.SerialNumber != "" {
				fmt.Printf("  Serial: %s\n", info.SerialNumber)
			}
			if info.Firmware != "" {
				fmt.Printf("  Firmware: %s\n", info.Firmware)
			}
		}
		clock, data = probe.ClockLine(), probe.DataLine()
		closer = probe.Close

	case "rpio", "gpio":
		if verbose {
			fmt.Printf("Using GPIO pins SWCLK=%d SWDIO=%d\n", clockPin, dataPin)
		}
		probe, err := swd.OpenRPIO(clockPin, dataPin)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open GPIO: %w", err)
		}
		clock, data = probe.ClockLine(), probe.DataLine()
		closer = probe.Close

	default:
		return nil, nil, fmt.Errorf("unknown probe type: %s", probeType)
	}

	link, err := swd.NewLink(swd.Config{
		Clock:     clock,
		Data:      data,
		Verbosity: verbosity,
		Log:       logrus.StandardLogger(),
	})
	if err != nil {
		closer()
		return nil, nil, err
	}

	if err := link.Initialize(); err != nil {
		closer()
		return nil, nil, fmt.Errorf("failed to initialize debug link: %w", err)
	}

	return link, closer, nil
}

func parseVIDPID() (uint16, uint16, error) {
	vid, err := strconv.ParseUint(probeVID, 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --vid %q: %w", probeVID, err)
	}
	pid, err := strconv.ParseUint(probePID, 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --pid %q: %w", probePID, err)
	}
	return uint16(vid), uint16(pid), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&probeType, "probe", "p", "simulator",
		"probe type (simulator, cmsisdap, rpio)")
	rootCmd.PersistentFlags().StringVar(&probeVID, "vid", "0x2E8A",
		"CMSIS-DAP probe USB vendor ID")
	rootCmd.PersistentFlags().StringVar(&probePID, "pid", "0x000C",
		"CMSIS-DAP probe USB product ID")
	rootCmd.PersistentFlags().Uint8Var(&clockPin, "clock-pin", 25,
		"BCM pin number wired to SWCLK (rpio probe)")
	rootCmd.PersistentFlags().Uint8Var(&dataPin, "data-pin", 24,
		"BCM pin number wired to SWDIO (rpio probe)")
	rootCmd.PersistentFlags().StringVar(&simIDCode, "sim-idcode", "",
		"simulator: IDCODE to report (hex, e.g. 0x2BA01477)")
}
