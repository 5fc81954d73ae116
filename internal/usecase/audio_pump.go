package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"translatoroverlay/internal/listener"
	"translatoroverlay/internal/ports"
)

// maxPhrase caps each individual listen so long speech is split into
// segments that are later joined.
const maxPhrase = 5 * time.Second

var errNoSpeech = errors.New("no speech detected")

// phraseSource is satisfied by *listener.Listener.
type phraseSource interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (ports.Audio, error)
	Consumed() time.Duration
}

// collectPhrases waits up to initialSilence for the first phrase, then keeps
// appending phrases separated by at most segmentSilence until more than
// budget worth of audio has been consumed.
func collectPhrases(ctx context.Context, src phraseSource, initialSilence, segmentSilence, budget time.Duration) ([]ports.Audio, error) {
	start := src.Consumed()

	first, err := src.Listen(ctx, initialSilence, min(maxPhrase, budget))
	if err != nil {
		if errors.Is(err, listener.ErrWaitTimeout) {
			return nil, errNoSpeech
		}
		return nil, err
	}
	segments := []ports.Audio{first}

	for {
		elapsed := src.Consumed() - start
		if elapsed > budget {
			break
		}
		limit := min(maxPhrase, budget-elapsed)
		if limit <= 0 {
			// The listener reads zero as unlimited.
			limit = time.Nanosecond
		}
		segment, err := src.Listen(ctx, segmentSilence, limit)
		if err != nil {
			if errors.Is(err, listener.ErrWaitTimeout) || errors.Is(err, listener.ErrStreamEnded) {
				break
			}
			return nil, err
		}
		segments = append(segments, segment)
	}
	return segments, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Second)))
}
