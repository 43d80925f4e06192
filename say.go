package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dgnsrekt/bolo/internal/dispatch"
	"github.com/dgnsrekt/bolo/internal/speech"
)

var (
	errNothingToSpeak = errors.New("nothing to speak")
	errInterrupted    = errors.New("interrupted")
)

// runSay speaks text once and waits for the session to settle.
func runSay(ctx context.Context, text string, w io.Writer) error {
	p, err := openPlatform()
	if err != nil {
		return err
	}
	defer p.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	d := p.dispatcher()
	ch, unsub := d.Subscribe(64)
	defer unsub()

	d.Speak(text)
	final, err := report(ctx, d, ch, w)
	if err != nil {
		return err
	}
	return statusErr(final)
}

// report prints transitions until a terminal one arrives. Cancelling ctx
// stops the session; the resulting stopped status is still reported.
func report(ctx context.Context, d *dispatch.Dispatcher, ch <-chan dispatch.Status, w io.Writer) (dispatch.Status, error) {
	done := ctx.Done()
	for {
		select {
		case <-done:
			done = nil
			d.Stop()

		case s, ok := <-ch:
			if !ok {
				return dispatch.Status{}, errInterrupted
			}
			if _, err := fmt.Fprintln(w, faint(s.String())); err != nil {
				return s, fmt.Errorf("unable to write to writer: %w", err)
			}
			if s.Kind.Terminal() {
				return s, nil
			}
		}
	}
}

// statusErr maps a terminal status to the command's exit error.
func statusErr(s dispatch.Status) error {
	switch s.Kind {
	case dispatch.KindError:
		if s.Err != nil {
			return s.Err
		}
		return speech.ErrPlayback
	case dispatch.KindUnsupported:
		return speech.ErrUnsupported
	case dispatch.KindEmpty:
		return errNothingToSpeak
	default:
		return nil
	}
}
