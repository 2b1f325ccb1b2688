package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/levelup-be/internal/session"
)

// ErrWatchEnded is returned when the payment subscription stops on its own.
var ErrWatchEnded = errors.New("payment watch ended")

// Downloader performs the action unlocked by an approved payment.
type Downloader interface {
	Download(ctx context.Context, url string) error
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, url string) error

func (f DownloaderFunc) Download(ctx context.Context, url string) error { return f(ctx, url) }

// Flow follows one user's payments until an approval unlocks the download.
type Flow struct {
	svc         *Service
	holder      *session.Holder
	downloadURL string
	downloader  Downloader
}

// NewFlow creates a flow for whoever holder has signed in.
func NewFlow(svc *Service, holder *session.Holder, downloadURL string, downloader Downloader) *Flow {
	return &Flow{svc: svc, holder: holder, downloadURL: downloadURL, downloader: downloader}
}

// Run watches the signed-in user's payments and reports every state change
// to onState. On approval it triggers the download once and returns nil.
// Signing out, or a different user signing in, ends the flow with
// ErrNotAuthenticated. The subscription is released on every return path.
func (f *Flow) Run(ctx context.Context, onState func(State)) error {
	id, ok := f.holder.Current()
	if !ok {
		return ErrNotAuthenticated
	}
	changes, release := f.holder.Watch()
	defer release()

	snaps, err := f.svc.WatchMine(ctx, id.UID)
	if err != nil {
		return fmt.Errorf("watch payments: %w", err)
	}
	defer snaps.Close()

	var last State
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-changes:
			if !c.SignedIn || c.Identity.UID != id.UID {
				return ErrNotAuthenticated
			}
		case payments, ok := <-snaps.C():
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrWatchEnded
			}
			state := Decide(payments)
			if state != last {
				last = state
				if onState != nil {
					onState(state)
				}
			}
			if state == StateApproved {
				if err := f.downloader.Download(ctx, f.downloadURL); err != nil {
					return fmt.Errorf("download: %w", err)
				}
				return nil
			}
		}
	}
}
