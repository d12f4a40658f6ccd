package rio

import (
	"errors"
	"io"
	"sync/atomic"
	"syscall"
)

// Stats counts the bytes moved by Splice
type Stats struct {
	Sent     int64
	Received int64
}

// borrowed from the official go io package with some changes to support
// throughtput metrics and the pty end of file
func copyBuffer(dst io.Writer, src io.Reader, count *atomic.Int64) (err error) {
	buf := make([]byte, 32*1024)
	for {
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = errors.New("invalid write result")
				}
			}
			count.Add(int64(nw))
			if ew != nil {
				err = ew
				break
			}
			if nr != nw {
				err = io.ErrShortWrite
				break
			}
		}
		if er != nil {
			// a pty master reports EIO once the slave side is closed
			if er != io.EOF && !errors.Is(er, syscall.EIO) {
				err = er
			}
			break
		}
	}
	return err
}

// Splice copies in to session and the session output to out. It returns
// when the session output ends. The input copy keeps running until in
// returns an error or the next write to session fails.
func Splice(session io.ReadWriter, in io.Reader, out io.Writer) (Stats, error) {
	var sent, received atomic.Int64

	go copyBuffer(session, in, &sent)
	err := copyBuffer(out, session, &received)

	return Stats{Sent: sent.Load(), Received: received.Load()}, err
}
