package guard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/guard"
	mock_guard "fieldcheck/internal/guard/mocks"
	"fieldcheck/pkg/e"
)

var (
	actorID   = "actor-1"
	targetKey = domain.TargetKey{PrimaryKey: "EBAIS-12", SecondaryKey: "0421"}
	lastAt    = time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDebounce_NoPriorEvent_Passes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := mock_guard.NewMockLatestEventReader(ctrl)
	events.EXPECT().
		Latest(gomock.Any(), actorID, targetKey).
		Return(nil, nil).
		Times(1)

	d := guard.NewDebounce(events, fixedNow(lastAt))

	res, err := d.Check(context.Background(), actorID, targetKey, 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.OK || res.SinceLast != nil || res.MinutesSinceLast() != nil {
		t.Fatalf("expected trivial pass, got %+v", res)
	}
}

func TestDebounce_Boundary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		elapsed time.Duration
		ok      bool
	}{
		{"4m59s", 4*time.Minute + 59*time.Second, false},
		{"5m00s", 5 * time.Minute, true},
		{"1h", time.Hour, true},
		{"immediately", 0, false},
	}

	for _, tc := range cases {
		ctrl := gomock.NewController(t)

		events := mock_guard.NewMockLatestEventReader(ctrl)
		events.EXPECT().
			Latest(gomock.Any(), actorID, targetKey).
			Return(&domain.AttendanceEvent{ActorID: actorID, TargetKey: targetKey, EventType: domain.CheckIn, OccurredAt: lastAt}, nil).
			Times(1)

		d := guard.NewDebounce(events, fixedNow(lastAt.Add(tc.elapsed)))

		res, err := d.Check(context.Background(), actorID, targetKey, 5*time.Minute)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.name, err)
		}
		if res.OK != tc.ok {
			t.Fatalf("%s: expected ok=%v got %+v", tc.name, tc.ok, res)
		}
		if res.SinceLast == nil || *res.SinceLast != tc.elapsed {
			t.Fatalf("%s: expected since=%s got %+v", tc.name, tc.elapsed, res.SinceLast)
		}
		if !tc.ok {
			var tooSoon *e.TooSoonError
			if !errors.As(res.Err(), &tooSoon) {
				t.Fatalf("%s: expected *TooSoonError got %v", tc.name, res.Err())
			}
			if tooSoon.Remaining != 5*time.Minute-tc.elapsed {
				t.Fatalf("%s: unexpected remaining %s", tc.name, tooSoon.Remaining)
			}
		} else if res.Err() != nil {
			t.Fatalf("%s: expected nil Err got %v", tc.name, res.Err())
		}

		ctrl.Finish()
	}
}

func TestDebounce_IgnoresEventType(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := mock_guard.NewMockLatestEventReader(ctrl)
	events.EXPECT().
		Latest(gomock.Any(), actorID, targetKey).
		Return(&domain.AttendanceEvent{EventType: domain.CheckOut, OccurredAt: lastAt}, nil).
		Times(1)

	d := guard.NewDebounce(events, fixedNow(lastAt.Add(time.Minute)))

	res, err := d.Check(context.Background(), actorID, targetKey, 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.OK {
		t.Fatalf("expected CHECK_OUT to debounce a following CHECK_IN, got %+v", res)
	}
}

func TestDebounce_StoreError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	events := mock_guard.NewMockLatestEventReader(ctrl)
	events.EXPECT().
		Latest(gomock.Any(), actorID, targetKey).
		Return(nil, boom).
		Times(1)

	d := guard.NewDebounce(events, fixedNow(lastAt))

	_, err := d.Check(context.Background(), actorID, targetKey, 5*time.Minute)
	if !errors.Is(err, e.ErrStoreFailure) || !errors.Is(err, boom) {
		t.Fatalf("expected store failure wrapping boom, got %v", err)
	}
}
