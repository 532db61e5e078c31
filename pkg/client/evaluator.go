package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/transfer"
	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"go.uber.org/zap"
)

var (
	timeoutRegex = "^timeout\\s+(\\d+)$"
	traceRegex   = "^trace$"
	quitRegex    = "^quit$"
	helpRegex    = "^help$"
)

const usage = "Usage: -R/W -d directory/file [-t timeout] [-s size] [-a address,port] [-c mode]"

var errInvalidCommand = errors.New("invalid command")

type Evaluator struct {
	l             *zap.SugaredLogger
	client        Connector
	out           io.Writer
	regexPatterns map[string]*regexp.Regexp
	blockLimit    func() (int, error)
	now           func() time.Time
	line          string
	host          string
	port          string
	mode          string
}

func NewEvaluator(l *zap.SugaredLogger, client Connector, out io.Writer, host, port string) *Evaluator {
	e := &Evaluator{
		l:          l,
		client:     client,
		out:        out,
		host:       host,
		port:       port,
		mode:       types.ModeOctet,
		blockLimit: MaxBlockSize,
		now:        time.Now,
	}

	e.regexPatterns = make(map[string]*regexp.Regexp)

	e.regexPatterns["timeout"] = regexp.MustCompile(timeoutRegex)
	e.regexPatterns["trace"] = regexp.MustCompile(traceRegex)
	e.regexPatterns["quit"] = regexp.MustCompile(quitRegex)
	e.regexPatterns["help"] = regexp.MustCompile(helpRegex)

	client.SetProgress(e.progress)

	return e
}

// evaluate runs the current line and reports whether the shell should exit.
func (e *Evaluator) evaluate(ctx context.Context) (bool, error) {
	e.line = strings.TrimSpace(strings.TrimSuffix(e.line, "\n"))

	if e.line == "" {
		return true, nil
	}

	if matches := e.regexPatterns["timeout"].FindStringSubmatch(e.line); len(matches) == 2 {
		n, err := strconv.ParseUint(matches[1], 10, 32)
		if err != nil || n == 0 {
			return false, fmt.Errorf("timeout value can not be parsed: %s", matches[1])
		}

		e.client.SetTimeout(time.Duration(n) * time.Second)

		return false, nil
	}

	if matches := e.regexPatterns["trace"].FindStringSubmatch(e.line); len(matches) == 1 {
		e.client.SetTrace()

		return false, nil
	}

	if matches := e.regexPatterns["help"].FindStringSubmatch(e.line); len(matches) == 1 {
		fmt.Fprintln(e.out, usage+`
	-R, -W      read from or write to the server
	-d path     remote file for -R, local file for -W
	-t secs     timeout option sent to the server [1-255]
	-s bytes    block size option [8-65464]
	-a addr,p   server address and port, kept for later commands
	-c mode     ascii/netascii or binary/octet, kept for later commands
Commands:
	timeout <seconds>   local retransmission timeout
	trace               toggle packet tracing
	help
	quit`)

		return false, nil
	}

	if matches := e.regexPatterns["quit"].FindStringSubmatch(e.line); len(matches) == 1 {
		return true, nil
	}

	r, err := e.parse(e.line)
	if err != nil {
		return false, fmt.Errorf("%w: %w\n%s", errInvalidCommand, err, usage)
	}

	return false, e.run(ctx, r)
}

func (e *Evaluator) run(ctx context.Context, r *transfer.Request) error {
	var (
		res *transfer.Result
		err error
	)

	e.l.Debugf("executing %s", r)

	if r.Direction() == transfer.Write {
		e.printf("Requesting WRITE to server %s:%s", r.Host(), r.Port())
		res, err = e.client.Put(ctx, r)
	} else {
		e.printf("Requesting READ from server %s:%s", r.Host(), r.Port())
		res, err = e.client.Get(ctx, r)
	}

	if err != nil {
		return err
	}

	e.l.Debugf("transfer %s took %s", res.ID, res.Elapsed)
	e.printf("Transfer successfully completed, %d B.", res.Transferred)

	return nil
}

// parse turns one command line into a validated request. Address and mode
// given on the line are remembered for later lines.
func (e *Evaluator) parse(line string) (*transfer.Request, error) {
	p := transfer.RequestParams{Host: e.host, Port: e.port, Mode: e.mode}

	var file string

	tokens := strings.Fields(line)

	for i := 0; i < len(tokens); i++ {
		flag := tokens[i]

		if flag == "-R" || flag == "-W" {
			p.Direction = transfer.Read
			if flag == "-W" {
				p.Direction = transfer.Write
			}

			continue
		}

		if i+1 >= len(tokens) {
			return nil, fmt.Errorf("%s needs a value", flag)
		}

		i++
		value := tokens[i]

		switch flag {
		case "-d":
			file = value
		case "-t":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("timeout %q is not a number", value)
			}

			// 0 would mean no timeout option at all
			if n == 0 {
				return nil, fmt.Errorf("%w: timeout %d not in [%d, %d]",
					utils.ErrValidation, n, types.MinTimeout, types.MaxTimeout)
			}

			p.Timeout = n
		case "-s":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("block size %q is not a positive number", value)
			}

			p.BlockSize = e.limitBlockSize(n)
		case "-a":
			host, port, ok := strings.Cut(value, ",")
			if !ok || host == "" || port == "" {
				return nil, fmt.Errorf("address %q is not address,port", value)
			}

			p.Host, p.Port = host, port
		case "-c":
			switch value {
			case "ascii", types.ModeNetASCII:
				p.Mode = types.ModeNetASCII
			case "binary", types.ModeOctet:
				p.Mode = types.ModeOctet
			default:
				return nil, fmt.Errorf("unknown mode %q", value)
			}
		default:
			return nil, fmt.Errorf("unknown parameter %q", flag)
		}
	}

	if p.Direction == 0 {
		return nil, errors.New("-R or -W is required")
	}

	if file == "" {
		return nil, errors.New("-d is required")
	}

	if p.Direction == transfer.Read {
		p.RemotePath, p.LocalPath = file, path.Base(file)
	} else {
		p.RemotePath, p.LocalPath = filepath.Base(file), file
	}

	r, err := transfer.NewRequest(p)
	if err != nil {
		return nil, err
	}

	e.host, e.port, e.mode = r.Host(), r.Port(), r.Mode()

	return r, nil
}

func (e *Evaluator) limitBlockSize(requested int) int {
	limit, err := e.blockLimit()
	if err != nil {
		e.l.Warnf("block size not checked against interface MTU: %s", err.Error())

		return requested
	}

	size, clamped := clampBlockSize(requested, limit)
	if clamped {
		fmt.Fprintf(e.out, "Block size is limited to range [%d B - %d B].\nMaximum transfer block size is set to %d.\n",
			types.MinBlockSize, limit, limit)
	}

	return size
}

func (e *Evaluator) progress(p transfer.Progress) {
	total := "total"
	if p.Total != transfer.UnknownSize {
		total = strconv.FormatInt(p.Total, 10)
	}

	if p.Direction == transfer.Write {
		e.printf("Sending DATA ... %d B of %s B", p.Transferred, total)

		return
	}

	e.printf("Receiving DATA ... %d B of %s B", p.Transferred, total)
}

func (e *Evaluator) printf(format string, args ...any) {
	fmt.Fprintf(e.out, "[%s] %s\n", e.now().Format(utils.TimeLayout), fmt.Sprintf(format, args...))
}
