package client

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

type Cli struct {
	l          *zap.SugaredLogger
	tftpClient Connector
	in         io.Reader
	out        io.Writer
	host       string
	port       string
}

func NewCli(l *zap.SugaredLogger, tftpClient Connector, in io.Reader, out io.Writer, host, port string) *Cli {
	return &Cli{l: l, tftpClient: tftpClient, in: in, out: out, host: host, port: port}
}

// Read runs the interactive prompt until quit, an empty line, end of input
// or cancellation of ctx.
func (c *Cli) Read(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	evaluator := NewEvaluator(c.l, c.tftpClient, c.out, c.host, c.port)

	fmt.Fprint(c.out, "tftp> ")

	for scanner.Scan() {
		evaluator.line = scanner.Text()

		done, err := evaluator.evaluate(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "tftp: %s\n", err.Error())
		}

		if done || ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(c.out, "\ntftp> ")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error while reading commands: %w", err)
	}

	return nil
}

// Run evaluates a single command line.
func (c *Cli) Run(ctx context.Context, line string) error {
	evaluator := NewEvaluator(c.l, c.tftpClient, c.out, c.host, c.port)
	evaluator.line = line

	_, err := evaluator.evaluate(ctx)

	return err
}
