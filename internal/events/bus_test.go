package events

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTopicDeliversInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	topic := Register[string](b, "t")

	var got []string
	topic.Subscribe(func(v string) { got = append(got, "a:"+v) })
	topic.Subscribe(func(v string) { got = append(got, "b:"+v) })
	topic.Emit("x")

	if diff := cmp.Diff([]string{"a:x", "b:x"}, got); diff != "" {
		t.Fatalf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	topic := Register[Signal](b, "s")

	calls := 0
	unsub := topic.Subscribe(func(Signal) { calls++ })
	topic.Emit(Signal{})
	unsub()
	unsub()
	topic.Emit(Signal{})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if n := topic.Subscribers(); n != 0 {
		t.Fatalf("subscribers = %d, want 0", n)
	}
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	b := NewBus()
	topic := Register[int](b, "n")

	calls := 0
	var unsub func()
	unsub = topic.Subscribe(func(int) {
		calls++
		unsub()
	})
	topic.Emit(1)
	topic.Emit(2)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRegisterReturnsSameTopic(t *testing.T) {
	b := NewBus()
	first := Register[string](b, "same")
	second := Register[string](b, "same")
	if first != second {
		t.Fatal("expected the same topic instance for matching registration")
	}
}

func TestRegisterTypeMismatchPanics(t *testing.T) {
	b := NewBus()
	Register[string](b, "typed")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on payload type mismatch")
		}
	}()
	Register[int](b, "typed")
}

func TestMenuTopicsRegistered(t *testing.T) {
	b := NewBus()
	NewMenu(b)
	want := []string{
		TopicCreateFolder,
		TopicFolderWithSetCreated,
		TopicLinkCopied,
		TopicOpenChangelog,
		TopicOpenImportDialog,
	}
	if diff := cmp.Diff(want, b.Topics()); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscriptionsCloseDetachesAll(t *testing.T) {
	b := NewBus()
	menu := NewMenu(b)

	var subs Subscriptions
	subs.Add(menu.OpenChangelog.Subscribe(func(Signal) {}))
	subs.Add(menu.CreateFolder.Subscribe(func(string) {}))
	subs.Close()

	if menu.OpenChangelog.Subscribers() != 0 || menu.CreateFolder.Subscribers() != 0 {
		t.Fatal("expected all subscriptions detached")
	}
}

func TestEmitConcurrentWithSubscribe(t *testing.T) {
	b := NewBus()
	topic := Register[int](b, "race")

	var mu sync.Mutex
	total := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := topic.Subscribe(func(v int) {
				mu.Lock()
				total += v
				mu.Unlock()
			})
			defer unsub()
		}()
		go func() {
			defer wg.Done()
			topic.Emit(1)
		}()
	}
	wg.Wait()
	if topic.Subscribers() != 0 {
		t.Fatalf("subscribers = %d, want 0", topic.Subscribers())
	}
}
