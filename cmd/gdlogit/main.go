// Command gdlogit trains logistic-regression classifiers by batch gradient
// descent on synthetic blobs, 2D delimited data, handwritten digits and SMS
// spam.
//
//	gdlogit blobs -iters 2000 -plot cost.png
//	gdlogit data2d -file ex2data1.txt -alpha 0.1
//	gdlogit digits -file digits.csv -classes 10 -lambda 0.1
//	gdlogit spam -file SMSSpamCollection -save spam.gob
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gdlogit: %v\n", err)
		os.Exit(1)
	}
}

var commands = map[string]func(ctx context.Context, args []string, out io.Writer) error{
	"blobs":  runBlobs,
	"data2d": runData2D,
	"digits": runDigits,
	"spam":   runSpam,
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: gdlogit <blobs|data2d|digits|spam> [flags]")
	fmt.Fprintln(w, "run 'gdlogit <command> -h' for the flags of a command")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("missing command")
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, args[1:], out)
}
