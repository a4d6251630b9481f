package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"

	"github.com/aryanA101a/lc3-vm-go/translate"
	"github.com/aryanA101a/lc3-vm-go/tty"
	"github.com/aryanA101a/lc3-vm-go/vm"
)

var f = translate.From

func main() {
	var verbose bool
	var logFile string
	var start string
	var dump bool
	var raw bool

	flag.BoolVar(&verbose, "v", false, "Trace every instruction")
	flag.StringVar(&logFile, "log", "", "Write logs to this file instead of stderr")
	flag.StringVar(&start, "start", "0x3000", "Initial program counter")
	flag.BoolVar(&dump, "dump", false, "Print the machine state on exit")
	flag.BoolVar(&raw, "raw", tty.IsTerminal(os.Stdin), "Put the terminal in raw mode while running")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, f("usage: %v [flags] image-file1 ...\n", os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if logFile != "" {
		out, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("%v: %v", logFile, err)
		}
		defer out.Close()
		log.SetOutput(out)
		if !verbose {
			log.SetLevel(logrus.InfoLevel)
		}
	}

	pc, err := strconv.ParseUint(start, 0, 16)
	if err != nil {
		log.Errorf("-start %v: %v", start, err)
		os.Exit(2)
	}

	machine := vm.NewVM(vm.NewConsole(os.Stdin, os.Stdout))
	machine.Verbose = verbose
	machine.Log = log

	for _, path := range flag.Args() {
		if err := machine.LoadFile(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	machine.SetPC(uint16(pc))

	os.Exit(run(machine, raw, dump))
}

func run(machine *vm.VM, raw, dump bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if raw {
		terminal := tty.Open(os.Stdin)
		if err := terminal.EnableRawMode(); err != nil {
			fmt.Fprintln(os.Stderr, f("raw mode: %v", err))
		}
		defer terminal.Restore()
	}

	err := machine.Run(ctx)

	if dump {
		printer := pp.New()
		printer.SetOutput(os.Stderr)
		printer.SetColoringEnabled(tty.IsTerminal(os.Stderr))
		printer.Println(machine.State())
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stdout)
		return 130
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
