package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/spidma/mem"
	"github.com/sarchlab/spidma/monitoring"
	"github.com/sarchlab/spidma/platform"
	"github.com/sarchlab/spidma/spi"
)

var runCmd = &cobra.Command{
	Use:   "run [A|B|C|exchange|burst|egress|ingress]",
	Short: "Run a scenario or a custom transfer.",
	Long: "`run A` sends a block of four bytes through the block mover. " +
		"`run B` exchanges one byte outside of any burst. " +
		"`run C` runs a long software burst against a slow clock. " +
		"The other forms run a custom transfer described by the flags.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readRunOptions(cmd)
		if err != nil {
			return err
		}

		return runJob(args[0], opts)
	},
}

func init() {
	f := runCmd.Flags()
	f.Int("mode", 0, "Serial mode, 0 to 3.")
	f.Int("divider", 0, "Clock divider selector, 0 to 7.")
	f.String("address", "0", "Storage address of block transfers.")
	f.Int("length", 0, "Length of block transfers in bytes.")
	f.String("data", "", "Comma separated bytes sent by exchange and burst.")
	f.String("device", "loopback",
		"Serial device: loopback, echo, or scripted.")
	f.String("script", "", "Comma separated bytes sent by the scripted device.")
	f.String("image", "", "Raw file loaded into the storage before the run.")
	f.String("image-address", "0", "Storage address of the image.")
	f.String("dump", "", "Raw file that receives the transferred block.")
	f.Int("watchdog", 0, "Watchdog of the driver in cycles.")
	f.Bool("dual-clock", false, "Run the storage in its own clock domain.")
	f.String("trace", "", "Record the trace into this SQLite database.")
	f.Bool("log-trace", false, "Print the transfers to the standard error.")
	f.Bool("monitor", false, "Start the monitoring server.")
	f.Int("monitor-port", 0, "Port of the monitoring server.")
	f.Bool("open", false, "Open the monitoring page in a browser.")

	rootCmd.AddCommand(runCmd)
}

type runOptions struct {
	cfg          platform.Config
	job          platform.Job
	device       string
	script       []byte
	image        string
	imageAddress uint32
	dump         string
	open         bool
}

func readRunOptions(cmd *cobra.Command) (runOptions, error) {
	var opts runOptions

	cfg, err := platform.ConfigFromEnv(platform.DefaultConfig())
	if err != nil {
		return opts, err
	}

	f := cmd.Flags()

	if f.Changed("dual-clock") {
		cfg.DualClock, _ = f.GetBool("dual-clock")
	}

	if f.Changed("trace") {
		cfg.TracePath, _ = f.GetString("trace")
	}

	if f.Changed("log-trace") {
		cfg.LogTrace, _ = f.GetBool("log-trace")
	}

	if f.Changed("monitor") {
		cfg.Monitor, _ = f.GetBool("monitor")
	}

	if f.Changed("monitor-port") {
		cfg.MonitorPort, _ = f.GetInt("monitor-port")
	}

	opts.cfg = cfg

	mode, _ := f.GetInt("mode")
	if mode < 0 || mode > 3 {
		return opts, fmt.Errorf("mode %d: %w", mode, platform.ErrInvalidConfig)
	}

	opts.job.Mode = spi.Mode{CPOL: mode&2 != 0, CPHA: mode&1 != 0}
	opts.job.Divider, _ = f.GetInt("divider")
	opts.job.Length, _ = f.GetInt("length")
	opts.job.Watchdog, _ = f.GetInt("watchdog")

	if opts.job.Address, err = parseAddress(f.Lookup("address").Value.String()); err != nil {
		return opts, err
	}

	if opts.job.Data, err = parseBytes(f.Lookup("data").Value.String()); err != nil {
		return opts, err
	}

	if opts.script, err = parseBytes(f.Lookup("script").Value.String()); err != nil {
		return opts, err
	}

	opts.imageAddress, err = parseAddress(f.Lookup("image-address").Value.String())
	if err != nil {
		return opts, err
	}

	opts.device, _ = f.GetString("device")
	opts.image, _ = f.GetString("image")
	opts.dump, _ = f.GetString("dump")
	opts.open, _ = f.GetBool("open")

	return opts, nil
}

func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", s, platform.ErrInvalidConfig)
	}

	return uint32(v), nil
}

func parseBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	var data []byte

	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("byte %q: %w", field, platform.ErrInvalidConfig)
		}

		data = append(data, byte(v))
	}

	return data, nil
}

func makeDevice(opts runOptions) (spi.Device, *spi.RecordingResponder, error) {
	rec := &spi.RecordingResponder{}

	switch opts.device {
	case "loopback":
		return spi.Loopback{}, nil, nil
	case "echo":
		rec.Inner = &spi.EchoResponder{}
	case "scripted":
		rec.Inner = spi.NewScriptedResponder(opts.script...)
	default:
		return nil, nil, fmt.Errorf("device %q: %w",
			opts.device, platform.ErrInvalidConfig)
	}

	return spi.NewByteDevice(opts.job.Mode, rec), rec, nil
}

// applyScenario replaces the job with one of the built-in scenarios.
func applyScenario(name string, opts *runOptions) (bool, error) {
	switch name {
	case "A":
		opts.job = platform.Job{
			Kind:    platform.JobEgress,
			Address: 0x1000,
			Length:  4,
		}
		opts.device = "echo"
	case "B":
		opts.job = platform.Job{
			Kind: platform.JobExchange,
			Data: []byte{0x3C},
		}
		opts.device = "loopback"
	case "C":
		data := make([]byte, 1000)
		for i := range data {
			data[i] = byte(i)
		}

		opts.job = platform.Job{
			Kind:    platform.JobBurst,
			Divider: spi.MaxDivider,
			Data:    data,
		}
		opts.device = "loopback"
	default:
		kind, err := platform.ParseJobKind(name)
		if err != nil {
			return false, err
		}

		opts.job.Kind = kind

		return false, nil
	}

	return true, nil
}

func runJob(name string, opts runOptions) error {
	scenario, err := applyScenario(name, &opts)
	if err != nil {
		return err
	}

	device, rec, err := makeDevice(opts)
	if err != nil {
		return err
	}

	b := platform.MakeBuilder().WithConfig(opts.cfg).WithDevice(device)

	var monitor *monitoring.Monitor
	if opts.cfg.Monitor {
		monitor = monitoring.NewMonitor().WithPortNumber(opts.cfg.MonitorPort)
		b = b.WithMonitor(monitor)
	}

	s, err := b.Build("SPIDMA")
	if err != nil {
		return err
	}
	defer s.Close()

	if monitor != nil {
		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		if opts.open {
			if err := monitor.OpenInBrowser(url); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}

		bar := monitor.CreateProgressBar(name, jobBytes(opts.job))
		s.TrackProgress(bar)

		defer monitor.CompleteProgressBar(bar)
	}

	if scenario && name == "A" {
		s.Storage.Poke(0x1000, []byte{0xA0, 0xA1, 0xA2, 0xA3})
	}

	if opts.image != "" {
		n, err := mem.LoadImage(appFs, opts.image, s.Storage, opts.imageAddress)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Loaded %d bytes at 0x%08x\n", n, opts.imageAddress)
	}

	var result platform.JobResult

	runErr := s.RunFirmware(opts.job.Firmware(&result))

	report(name, s, opts.job, result, rec)

	if runErr != nil {
		return runErr
	}

	if opts.dump != "" && opts.job.Length > 0 {
		return mem.DumpImage(appFs, opts.dump, s.Storage,
			opts.job.Address, opts.job.Length)
	}

	return nil
}

// jobBytes returns the number of bytes the job exchanges on the serial line.
func jobBytes(job platform.Job) uint64 {
	switch job.Kind {
	case platform.JobEgress, platform.JobIngress:
		return uint64(job.Length)
	default:
		return uint64(len(job.Data))
	}
}

func report(
	name string,
	s *platform.System,
	job platform.Job,
	result platform.JobResult,
	rec *spi.RecordingResponder,
) {
	fmt.Printf("job:          %s (%s)\n", name, job.Kind)
	fmt.Printf("cycles:       %d\n", s.Cycle())
	fmt.Printf("job cycles:   %d\n", result.Cycles)
	fmt.Printf("completions:  %d\n", s.SPI.NumCompletions())
	fmt.Printf("storage:      %d reads, %d writes\n",
		s.Storage.Reads(), s.Storage.Writes())
	fmt.Printf("fault:        %t\n", result.Fault)

	if len(result.Received) > 0 {
		fmt.Printf("received:     % x\n", result.Received)
	}

	if rec != nil && len(rec.ReceivedBytes()) > 0 {
		fmt.Printf("device saw:   % x\n", rec.ReceivedBytes())
	}
}
