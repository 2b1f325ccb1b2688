package payments

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/levelup-be/internal/feed"
	"github.com/hongminglow/levelup-be/internal/models"
	"github.com/hongminglow/levelup-be/internal/session"
	"github.com/hongminglow/levelup-be/internal/storage"
	"github.com/hongminglow/levelup-be/internal/storage/memory"
)

const downloadURL = "https://example.com/game.rar"

var ann = models.Identity{UID: "uid-ann", Email: "ann@example.com", DisplayName: "Ann"}

func newFixture(t *testing.T) (*Service, *storage.Publishing) {
	t.Helper()
	broker := feed.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })
	store := storage.WithFeed(memory.New(), broker)
	return NewService(store, broker, 0), store
}

func TestDecide(t *testing.T) {
	assert.Equal(t, StateInput, Decide(nil))
	assert.Equal(t, StateInput, Decide([]models.Payment{{Status: models.StatusDenied}}))
	assert.Equal(t, StatePending, Decide([]models.Payment{{Status: models.StatusDenied}, {Status: models.StatusPending}}))
	assert.Equal(t, StateApproved, Decide([]models.Payment{{Status: models.StatusPending}, {Status: models.StatusApproved}}))
	assert.Equal(t, StateApproved, Decide([]models.Payment{{Status: models.StatusApproved}, {Status: models.StatusPending}}))
}

func TestStartPayment(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.StartPayment(session.NewHolder())
	require.ErrorIs(t, err, ErrNotAuthenticated)

	svc.intN = func(int) int { return 42 }
	checkout, err := svc.StartPayment(session.SignedIn(ann))
	require.NoError(t, err)
	assert.Equal(t, "REF-100042", checkout.DisplayReference)
	assert.Equal(t, DefaultAmount, checkout.Amount)

	svc.intN = func(n int) int { return n - 1 }
	checkout, err = svc.StartPayment(session.SignedIn(ann))
	require.NoError(t, err)
	assert.Equal(t, "REF-999999", checkout.DisplayReference)
}

func TestSubmitReferenceCreatesPendingPayment(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()

	mine, err := svc.ListMine(ctx, ann.UID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	p, err := svc.SubmitReference(ctx, session.SignedIn(ann), "  GCASH-001 ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, p.Status)
	assert.Equal(t, int64(100), p.Amount)
	assert.Equal(t, ann.UID, p.UserID)
	assert.Equal(t, ann.Email, p.UserEmail)
	assert.Equal(t, "GCASH-001", p.ReferenceNumber)

	all, err := store.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmitReferenceRejections(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()

	_, err := svc.SubmitReference(ctx, session.NewHolder(), "GCASH-001")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err = svc.SubmitReference(ctx, session.SignedIn(ann), blank)
		require.ErrorIs(t, err, ErrEmptyReference)
	}
	all, err := store.ListPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = svc.SubmitReference(ctx, session.SignedIn(ann), "GCASH-001")
	require.NoError(t, err)
	_, err = svc.SubmitReference(ctx, session.SignedIn(ann), "GCASH-002")
	require.ErrorIs(t, err, ErrSubmissionClosed)
}

func TestSubmitAfterDenialIsAllowed(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()

	p, err := svc.SubmitReference(ctx, session.SignedIn(ann), "GCASH-001")
	require.NoError(t, err)
	_, _, err = store.SetPaymentStatus(ctx, p.ID, models.StatusDenied, "admin")
	require.NoError(t, err)

	_, err = svc.SubmitReference(ctx, session.SignedIn(ann), "GCASH-002")
	require.NoError(t, err)
}

type flowRun struct {
	states    chan State
	done      chan error
	downloads atomic.Int64
}

func startFlow(ctx context.Context, svc *Service, holder *session.Holder) *flowRun {
	run := &flowRun{states: make(chan State, 16), done: make(chan error, 1)}
	flow := NewFlow(svc, holder, downloadURL, DownloaderFunc(func(_ context.Context, url string) error {
		if url == downloadURL {
			run.downloads.Add(1)
		}
		return nil
	}))
	go func() {
		run.done <- flow.Run(ctx, func(s State) { run.states <- s })
	}()
	return run
}

func (r *flowRun) expectState(t *testing.T, want State) {
	t.Helper()
	select {
	case got := <-r.states:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for state %s", want)
	}
}

func (r *flowRun) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("flow did not finish")
	}
	return nil
}

func TestFlowApprovalTriggersDownloadOnce(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()
	holder := session.SignedIn(ann)

	run := startFlow(ctx, svc, holder)
	run.expectState(t, StateInput)

	p, err := svc.SubmitReference(ctx, holder, "GCASH-001")
	require.NoError(t, err)
	run.expectState(t, StatePending)

	_, _, err = store.SetPaymentStatus(ctx, p.ID, models.StatusApproved, "admin")
	require.NoError(t, err)
	run.expectState(t, StateApproved)

	require.NoError(t, run.wait(t))
	assert.Equal(t, int64(1), run.downloads.Load())
}

func TestFlowPrefersApprovedOverPending(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()

	_, err := store.AppendPayment(ctx, models.Payment{UserID: ann.UID, Status: models.StatusPending})
	require.NoError(t, err)
	_, err = store.AppendPayment(ctx, models.Payment{UserID: ann.UID, Status: models.StatusApproved})
	require.NoError(t, err)

	run := startFlow(ctx, svc, session.SignedIn(ann))
	run.expectState(t, StateApproved)
	require.NoError(t, run.wait(t))
	assert.Equal(t, int64(1), run.downloads.Load())
}

func TestFlowIgnoresOtherUsers(t *testing.T) {
	svc, store := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	run := startFlow(ctx, svc, session.SignedIn(ann))
	run.expectState(t, StateInput)

	_, err := store.AppendPayment(ctx, models.Payment{UserID: "someone-else", Status: models.StatusApproved})
	require.NoError(t, err)

	select {
	case s := <-run.states:
		t.Fatalf("unexpected state %s", s)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, run.wait(t), context.Canceled)
	assert.Zero(t, run.downloads.Load())
}

func TestFlowEndsOnSignOut(t *testing.T) {
	svc, _ := newFixture(t)
	holder := session.SignedIn(ann)

	run := startFlow(context.Background(), svc, holder)
	run.expectState(t, StateInput)

	holder.SignOut()
	assert.ErrorIs(t, run.wait(t), ErrNotAuthenticated)
}

func TestFlowRequiresIdentity(t *testing.T) {
	svc, _ := newFixture(t)
	err := NewFlow(svc, session.NewHolder(), downloadURL, DownloaderFunc(func(context.Context, string) error { return nil })).
		Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestFlowSurfacesDownloadFailure(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()
	_, err := store.AppendPayment(ctx, models.Payment{UserID: ann.UID, Status: models.StatusApproved})
	require.NoError(t, err)

	boom := errors.New("browser gone")
	err = NewFlow(svc, session.SignedIn(ann), downloadURL, DownloaderFunc(func(context.Context, string) error { return boom })).
		Run(ctx, nil)
	assert.ErrorIs(t, err, boom)
}
