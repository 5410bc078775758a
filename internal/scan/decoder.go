package scan

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"schoolattend/internal/queue"
)

// StdinSource names codes read by a LineDecoder without an explicit source.
const StdinSource = "stdin"

// Scan is one decoded QR code and the scanner it came from.
type Scan struct {
	Source string
	Text   string
}

// Decoder emits each decoded QR code. The channel closes when ctx is done or
// the source is exhausted.
type Decoder interface {
	Decode(ctx context.Context) (<-chan Scan, error)
}

// QueueDecoder reads scan messages from a queue, typically a Redis list fed
// by camera kiosks.
type QueueDecoder struct {
	Queue queue.Queue
	Log   logrus.FieldLogger
	// StopOnEnd closes the output when a queue.TypeEnd message arrives.
	// Shared queues leave it off so one kiosk cannot stop the station.
	StopOnEnd bool
}

// Decode implements Decoder.
func (d QueueDecoder) Decode(ctx context.Context) (<-chan Scan, error) {
	msgs, err := d.Queue.Consume(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan Scan)
	go func() {
		defer close(out)
		for msg := range msgs {
			if msg.Type == queue.TypeEnd && d.StopOnEnd {
				return
			}
			if msg.Type != queue.TypeScan {
				if d.Log != nil {
					d.Log.WithField("type", msg.Type).Warn("ignoring non-scan message")
				}
				continue
			}
			text := strings.TrimSpace(string(msg.Body))
			if text == "" {
				continue
			}
			select {
			case out <- Scan{Source: msg.Source, Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// LineDecoder reads one code per line from a keyboard-wedge scanner (or any
// reader) and hands the codes over through a queue so slow processing never
// blocks the reader. The output closes once the reader is exhausted and every
// code read before that has been delivered.
type LineDecoder struct {
	Reader io.Reader
	Queue  queue.Queue
	Log    logrus.FieldLogger
	// Source tags every code; StdinSource when empty.
	Source string
}

// Decode implements Decoder.
func (d LineDecoder) Decode(ctx context.Context) (<-chan Scan, error) {
	source := d.Source
	if source == "" {
		source = StdinSource
	}
	go func() {
		sc := bufio.NewScanner(d.Reader)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			msg := queue.Message{Type: queue.TypeScan, Source: source, Body: []byte(line)}
			if err := d.Queue.Publish(ctx, msg); err != nil {
				return
			}
		}
		if err := sc.Err(); err != nil && d.Log != nil {
			d.Log.WithError(err).Error("scanner input failed")
		}
		// queued after every code, so nothing read is lost
		_ = d.Queue.Publish(ctx, queue.Message{Type: queue.TypeEnd, Source: source})
	}()
	return QueueDecoder{Queue: d.Queue, Log: d.Log, StopOnEnd: true}.Decode(ctx)
}
