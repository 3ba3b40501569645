package spawn

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskcluster/procsup/runtime"
	"github.com/taskcluster/procsup/runtime/ioext"
	"github.com/taskcluster/procsup/system"
)

// Time to wait for output after the command has exited, descendants may hold
// the pipes open.
const drainTimeout = 5 * time.Second

type supervisor struct {
	tracker runtime.LifeCycleTracker
}

// run starts the command, forwards stdin, copies output and waits for the
// command to exit. Returns the exit code.
func (s *supervisor) run(
	o *options, log *logrus.Entry, stdin io.Reader, stdout, stderr io.Writer,
) (int, error) {
	var group *system.Group
	if o.config.KillOnClose {
		g, err := system.NewGroup(true)
		if err != nil {
			return -1, err
		}
		defer g.Dispose()
		group = g
	}

	options, err := o.config.ProcessOptions(group, log)
	if err != nil {
		return -1, err
	}
	p, err := system.StartProcess(options)
	if err != nil {
		return -1, err
	}
	defer p.Dispose()
	log = log.WithField("pid", p.Pid())
	log.Info("command started")

	if stdin != nil {
		go func() {
			if _, err := ioext.CopyAndClose(p.Stdin(), stdin); err != nil {
				log.WithError(err).Debug("stopped forwarding stdin")
			}
		}()
	} else {
		p.Stdin().Close()
	}

	var wg sync.WaitGroup
	copyOutput(&wg, p.Stdout(), stdout, "stdout", o.lines, log)
	if p.Stderr() != nil {
		copyOutput(&wg, p.Stderr(), stderr, "stderr", o.lines, log)
	}

	select {
	case <-p.Done():
	case <-s.tracker.StoppingGracefully.Done():
		log.Info("interrupted, closing stdin")
		p.Stdin().Close()
		select {
		case <-p.Done():
		case <-s.tracker.StoppingNow.Done():
		case <-time.After(o.grace):
		}
		if err := p.Kill(); err != nil {
			log.WithError(err).Warn("failed to kill command")
		}
		<-p.Done()
	}

	if group != nil {
		group.Dispose()
	}
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		log.Warn("output still open after command exited, descendants may be running")
	}

	code := p.ExitCode()
	log.WithFields(logrus.Fields{
		"exitCode": code,
		"cpuTime":  p.TotalProcessorTime().String(),
		"duration": p.ExitTime().Sub(p.StartTime()).String(),
	}).Info("command exited")
	if code != 0 {
		log.Warnf("%s exited with code %d", p, code)
	}
	return code, nil
}

func copyOutput(wg *sync.WaitGroup, s *system.OutputStream, w io.Writer, name string, lines bool, log *logrus.Entry) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx := context.Background()
		if !lines {
			if _, err := s.CopyTo(ctx, w); err != nil {
				log.WithError(err).Debugf("stopped copying %s", name)
			}
			return
		}
		for {
			line, ok := s.TryReadLine(ctx)
			if !ok {
				return
			}
			fmt.Fprintf(w, "[%s] %s\n", name, line)
		}
	}()
}
