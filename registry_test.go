// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/rtmq"
	"github.com/sugawarayuuta/sonnet"
)

// =============================================================================
// Registry Lifecycle
// =============================================================================

// TestUnlinkThenCloseDestroys walks the full multi-opener lifecycle: the
// queue survives unlink while descriptors remain, dies with the last
// close, and the name becomes free.
func TestUnlinkThenCloseDestroys(t *testing.T) {
	ns := rtmq.NewNamespace()
	defer ns.Destroy()

	attr := &rtmq.Attr{MaxMessages: 2, MessageSize: 8}
	fd1 := mustOpen(t, ns, "/q", rtmq.ReadWrite|rtmq.Create, attr)
	fd2 := mustOpen(t, ns, "/q", rtmq.ReadWrite, nil)
	if fd1.Fd() == fd2.Fd() {
		t.Fatalf("descriptors share an fd: %d", fd1.Fd())
	}

	if err := ns.Unlink("/q"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}

	// The name is gone but the queue is fully usable through both
	// descriptors.
	if _, err := ns.Open("/q", rtmq.ReadWrite, nil); !errors.Is(err, rtmq.ErrNotFound) {
		t.Fatalf("open after unlink: got %v, want ErrNotFound", err)
	}
	if err := fd1.Send([]byte("m"), 0); err != nil {
		t.Fatalf("Send through fd1: %v", err)
	}
	buf := make([]byte, 8)
	n, _, err := fd2.Receive(buf)
	if err != nil || string(buf[:n]) != "m" {
		t.Fatalf("Receive through fd2: got %q, %v", buf[:n], err)
	}

	if err := fd1.Close(); err != nil {
		t.Fatalf("Close fd1: %v", err)
	}
	// Still alive through fd2.
	if err := fd2.Send([]byte("n"), 0); err != nil {
		t.Fatalf("Send through fd2 after fd1 close: %v", err)
	}
	if _, _, err := fd2.Receive(buf); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	// Last close destroys the object.
	if err := fd2.Close(); err != nil {
		t.Fatalf("Close fd2: %v", err)
	}
	if _, err := ns.Open("/q", rtmq.ReadWrite, nil); !errors.Is(err, rtmq.ErrNotFound) {
		t.Fatalf("open after destruction: got %v, want ErrNotFound", err)
	}
	if len(ns.Snapshot()) != 0 {
		t.Fatalf("queue survived destruction: %+v", ns.Snapshot())
	}
}

func TestUnlinkWithoutOpeners(t *testing.T) {
	ns := rtmq.NewNamespace()
	defer ns.Destroy()

	d := mustOpen(t, ns, "/q", rtmq.ReadWrite|rtmq.Create, &rtmq.Attr{MaxMessages: 1, MessageSize: 8})
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Closed but still linked: the queue object persists.
	if len(ns.Snapshot()) != 1 {
		t.Fatalf("queue destroyed while linked: %+v", ns.Snapshot())
	}

	if err := ns.Unlink("/q"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if len(ns.Snapshot()) != 0 {
		t.Fatalf("unlink of unopened queue did not destroy: %+v", ns.Snapshot())
	}
	if err := ns.Unlink("/q"); !errors.Is(err, rtmq.ErrNotFound) {
		t.Fatalf("second unlink: got %v, want ErrNotFound", err)
	}
}

// TestConcurrentCreate races many openers with Create on one name; all
// must land on the same queue.
func TestConcurrentCreate(t *testing.T) {
	ns := rtmq.NewNamespace()
	defer ns.Destroy()

	const openers = 16
	descs := make([]*rtmq.Descriptor, openers)
	var wg sync.WaitGroup
	for i := range openers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := ns.Open("/shared", rtmq.ReadWrite|rtmq.Create, &rtmq.Attr{MaxMessages: openers, MessageSize: 8})
			if err != nil {
				t.Errorf("opener %d: %v", i, err)
				return
			}
			descs[i] = d
		}(i)
	}
	wg.Wait()

	if snap := ns.Snapshot(); len(snap) != 1 {
		t.Fatalf("concurrent create built %d queues", len(snap))
	}

	// Every descriptor reaches the same storage.
	for i, d := range descs {
		if d == nil {
			t.Fatal("missing descriptor")
		}
		if err := d.TrySend([]byte{byte(i)}, 0); err != nil {
			t.Fatalf("TrySend via desc %d: %v", i, err)
		}
	}
	st, err := descs[0].Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.CurrentMessages != openers || st.OpenDescriptors != openers {
		t.Fatalf("stat: got %d messages / %d descriptors, want %d / %d",
			st.CurrentMessages, st.OpenDescriptors, openers, openers)
	}
	for _, d := range descs {
		if err := d.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
}

// =============================================================================
// Memory Accounting
// =============================================================================

func TestMemoryLimit(t *testing.T) {
	// Room for exactly one minimal arena (one page).
	ns := rtmq.NewNamespace(rtmq.WithMemoryLimit(4096))
	defer ns.Destroy()

	attr := &rtmq.Attr{MaxMessages: 1, MessageSize: 8}
	d := mustOpen(t, ns, "/a", rtmq.ReadWrite|rtmq.Create, attr)

	if _, err := ns.Open("/b", rtmq.ReadWrite|rtmq.Create, attr); !errors.Is(err, rtmq.ErrNoMemory) {
		t.Fatalf("over-limit create: got %v, want ErrNoMemory", err)
	}
	// The failed creation left no trace behind the name.
	if _, err := ns.Open("/b", rtmq.ReadWrite, nil); !errors.Is(err, rtmq.ErrNotFound) {
		t.Fatalf("failed create left a node: got %v, want ErrNotFound", err)
	}

	// Destroying the first queue returns its arena.
	if err := ns.Unlink("/a"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	d2 := mustOpen(t, ns, "/b", rtmq.ReadWrite|rtmq.Create, attr)
	if err := d2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// =============================================================================
// Introspection
// =============================================================================

func TestSnapshotJSON(t *testing.T) {
	ns := rtmq.NewNamespace()
	defer ns.Destroy()

	d := mustOpen(t, ns, "/metrics", rtmq.ReadWrite|rtmq.Create, &rtmq.Attr{MaxMessages: 3, MessageSize: 16})
	defer d.Close()
	if err := d.Send([]byte("x"), 1); err != nil {
		t.Fatalf("Send: %v", err)
	}

	raw, err := ns.DumpJSON()
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}
	var snap []rtmq.QueueStat
	if err := sonnet.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("snapshot length: got %d, want 1", len(snap))
	}
	st := snap[0]
	if st.Name != "/metrics" || st.MaxMessages != 3 || st.CurrentMessages != 1 || st.FreeSlots != 2 {
		t.Fatalf("snapshot content: %+v", st)
	}
	if st.Sends != 1 || st.Receives != 0 {
		t.Fatalf("snapshot counters: %+v", st)
	}
}

func TestDumpJSONEmpty(t *testing.T) {
	ns := rtmq.NewNamespace()
	defer ns.Destroy()

	raw, err := ns.DumpJSON()
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}
	if string(raw) != "[]" {
		t.Fatalf("empty dump: got %s, want []", raw)
	}
}
