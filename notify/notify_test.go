package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/notify"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"
)

func TestPublisher(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	topic := mempubsub.NewTopic()
	defer topic.Shutdown(ctx)
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer sub.Shutdown(ctx)

	cat := logicsim.NewCatalog()
	e := logicsim.NewEngine(ctx, cat, logicsim.WithNotifier(notify.NewPublisher(topic)))
	defer e.Dispose()

	in, err := e.AddComponent(hwlib.Input)
	if err != nil {
		t.Fatal(err)
	}
	and, err := e.AddComponent(hwlib.And)
	if err != nil {
		t.Fatal(err)
	}
	if err = e.ConnectComponent(in, 0, logicsim.OutputSlot, and, 1, logicsim.InputSlot, false); err != nil {
		t.Fatal(err)
	}
	if err = e.IncrementInputCount(and); err != nil {
		t.Fatal(err)
	}
	if err = e.DeleteComponent(in); err != nil {
		t.Fatal(err)
	}

	want := []logicsim.Notification{
		logicsim.ComponentAdded{Component: in, Definition: hwlib.Input.Hash()},
		logicsim.ComponentAdded{Component: and, Definition: hwlib.And.Hash()},
		logicsim.InputsResized{Component: and, Count: 3},
		logicsim.ConnectionRemoved{Wire: logicsim.Wire{
			Output: logicsim.SlotRef{Component: in, Slot: 0},
			Input:  logicsim.SlotRef{Component: and, Slot: 1},
		}},
	}
	var got []logicsim.Notification
	for range want {
		n, err := notify.Receive(ctx, sub)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, n)
	}
	// delivery order is not guaranteed by the driver.
	byKind := cmpopts.SortSlices(func(a, b logicsim.Notification) bool {
		if notify.Kind(a) != notify.Kind(b) {
			return notify.Kind(a) < notify.Kind(b)
		}
		return notify.Subject(a) < notify.Subject(b)
	})
	if diff := cmp.Diff(want, got, byKind); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_invalid(t *testing.T) {
	if _, err := notify.Decode(&pubsub.Message{Body: []byte("garbage")}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestKind(t *testing.T) {
	td := []struct {
		n    logicsim.Notification
		kind string
		id   logicsim.ID
	}{
		{logicsim.ComponentAdded{Component: 2}, "ComponentAdded", 2},
		{logicsim.InputsResized{Component: 3}, "InputsResized", 3},
		{logicsim.OutputsResized{Component: 4}, "OutputsResized", 4},
		{logicsim.ConnectionRemoved{Wire: logicsim.Wire{Input: logicsim.SlotRef{Component: 5}}}, "ConnectionRemoved", 5},
	}
	for _, d := range td {
		if k := notify.Kind(d.n); k != d.kind {
			t.Errorf("Kind(%#v) = %q, expected %q", d.n, k, d.kind)
		}
		if id := notify.Subject(d.n); id != d.id {
			t.Errorf("Subject(%#v) = %v, expected %v", d.n, id, d.id)
		}
	}
}
