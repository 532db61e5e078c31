package client

import (
	"bufio"
	"errors"
	"io"
	"os"

	"go.uber.org/multierr"
	"pack.ag/tftp/netascii"
)

// fileSink buffers writes to f. Close flushes before closing.
type fileSink struct {
	w *bufio.Writer
	f *os.File
}

func newFileSink(f *os.File) io.WriteCloser {
	return &fileSink{w: bufio.NewWriter(f), f: f}
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *fileSink) Close() error {
	return multierr.Append(s.w.Flush(), s.f.Close())
}

type fileSource struct {
	r *bufio.Reader
	f *os.File
}

func newFileSource(f *os.File) io.ReadCloser {
	return &fileSource{r: bufio.NewReader(f), f: f}
}

func (s *fileSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *fileSource) Close() error {
	return s.f.Close()
}

// asciiSink decodes netascii written to it into dst.
type asciiSink struct {
	pw   *io.PipeWriter
	dst  io.Closer
	done chan error
}

func newASCIISink(dst io.WriteCloser) io.WriteCloser {
	pr, pw := io.Pipe()
	s := &asciiSink{pw: pw, dst: dst, done: make(chan error, 1)}

	go func() {
		_, err := io.Copy(dst, netascii.NewReader(pr))
		pr.CloseWithError(err)
		s.done <- err
	}()

	return s
}

func (s *asciiSink) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

func (s *asciiSink) Close() error {
	errClose := s.pw.Close()

	return multierr.Combine(errClose, <-s.done, s.dst.Close())
}

// asciiSource encodes src into netascii.
type asciiSource struct {
	pr   *io.PipeReader
	src  io.Closer
	done chan error
}

func newASCIISource(src io.ReadCloser) io.ReadCloser {
	pr, pw := io.Pipe()
	s := &asciiSource{pr: pr, src: src, done: make(chan error, 1)}

	go func() {
		var w io.Writer = netascii.NewWriter(pw)

		_, err := io.Copy(w, src)
		if f, ok := w.(interface{ Flush() error }); ok && err == nil {
			err = f.Flush()
		}

		pw.CloseWithError(err)
		s.done <- err
	}()

	return s
}

func (s *asciiSource) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

func (s *asciiSource) Close() error {
	errClose := s.pr.Close()

	err := <-s.done
	if errors.Is(err, io.ErrClosedPipe) {
		err = nil
	}

	return multierr.Combine(errClose, err, s.src.Close())
}
