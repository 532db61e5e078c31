package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Wa4h1h/tftp-client/pkg/transfer"
	"github.com/Wa4h1h/tftp-client/pkg/types"
	"github.com/Wa4h1h/tftp-client/pkg/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultFileMode os.FileMode = 0o644

type Connector interface {
	Get(ctx context.Context, r *transfer.Request) (*transfer.Result, error)
	Put(ctx context.Context, r *transfer.Request) (*transfer.Result, error)
	SetTimeout(timeout time.Duration)
	SetTrace()
	SetProgress(fn transfer.ProgressFunc)
}

type Dialer func(host, port string) (transfer.Transport, error)

type Client struct {
	l        *zap.SugaredLogger
	dial     Dialer
	progress transfer.ProgressFunc
	timeout  time.Duration
	numTries uint
	trace    bool
}

func NewClient(l *zap.SugaredLogger, numTries uint, timeout time.Duration) *Client {
	c := &Client{l: l, numTries: numTries, timeout: timeout}
	c.dial = func(host, port string) (transfer.Transport, error) {
		return transfer.NewUDPTransport(host, port, l, c.timeout)
	}

	return c
}

func (c *Client) SetDialer(d Dialer) {
	c.dial = d
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SetTrace toggles per packet logging.
func (c *Client) SetTrace() {
	c.trace = !c.trace
}

func (c *Client) SetProgress(fn transfer.ProgressFunc) {
	c.progress = fn
}

func (c *Client) Execute(ctx context.Context, r *transfer.Request) (*transfer.Result, error) {
	if r.Direction() == transfer.Write {
		return c.Put(ctx, r)
	}

	return c.Get(ctx, r)
}

// Get downloads into a temporary file next to the local path and renames it
// once the transfer completed, so a failed read never clobbers an existing file.
func (c *Client) Get(ctx context.Context, r *transfer.Request) (res *transfer.Result, err error) {
	dir, name := filepath.Split(r.LocalPath())
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", utils.ErrIO, r.LocalPath(), err)
	}

	defer func() {
		if err != nil {
			if errRm := os.Remove(f.Name()); errRm != nil && !os.IsNotExist(errRm) {
				c.l.Errorf("error while removing partial file: %s", errRm.Error())
			}
		}
	}()

	e, closeTransport, err := c.engine(r)
	if err != nil {
		return nil, multierr.Append(err, f.Close())
	}

	defer func() {
		err = multierr.Append(err, closeTransport())
	}()

	var sink = newFileSink(f)
	if r.Mode() == types.ModeNetASCII {
		sink = newASCIISink(sink)
	}

	res, err = e.Read(ctx, r, sink)
	if err != nil {
		return nil, err
	}

	if err := os.Chmod(f.Name(), localFileMode(r.LocalPath())); err != nil {
		return nil, fmt.Errorf("%w: setting mode of %s: %w", utils.ErrIO, r.LocalPath(), err)
	}

	if err := os.Rename(f.Name(), r.LocalPath()); err != nil {
		return nil, fmt.Errorf("%w: moving download to %s: %w", utils.ErrIO, r.LocalPath(), err)
	}

	return res, nil
}

func (c *Client) Put(ctx context.Context, r *transfer.Request) (res *transfer.Result, err error) {
	f, err := os.Open(r.LocalPath())
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", utils.ErrIO, r.LocalPath(), err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("%w: stat %s: %w", utils.ErrIO, r.LocalPath(), err), f.Close())
	}

	if stat.IsDir() {
		return nil, multierr.Append(fmt.Errorf("%w: %s is a directory", utils.ErrIO, r.LocalPath()), f.Close())
	}

	e, closeTransport, err := c.engine(r)
	if err != nil {
		return nil, multierr.Append(err, f.Close())
	}

	defer func() {
		err = multierr.Append(err, closeTransport())
	}()

	var source = newFileSource(f)
	if r.Mode() == types.ModeNetASCII {
		source = newASCIISource(source)
	}

	return e.Write(ctx, r, source, stat.Size())
}

func (c *Client) engine(r *transfer.Request) (*transfer.Engine, func() error, error) {
	t, err := c.dial(r.Host(), r.Port())
	if err != nil {
		return nil, nil, err
	}

	e := transfer.NewEngine(t, c.l, c.timeout, int(c.numTries), c.trace)
	e.SetProgress(c.progress)

	return e, t.Close, nil
}

// localFileMode keeps the permissions of a file being replaced. New files get
// defaultFileMode since temporary files are created owner-only.
func localFileMode(name string) os.FileMode {
	if info, err := os.Stat(name); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}

	return defaultFileMode
}
