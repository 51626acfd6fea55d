package lock

import (
	"sync"
	"testing"
	"time"
)

func TestRWLockRanks(t *testing.T) {
	l := NewRWLock(RankWorldRead, RankWorldWrite)

	if l.ReadRank() != RankWorldRead || l.WriteRank() != RankWorldWrite {
		t.Fatalf("Expected ranks %s/%s, got %s/%s",
			RankWorldRead, RankWorldWrite, l.ReadRank(), l.WriteRank())
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Expected inverted ranks to panic")
		}
	}()
	NewRWLock(RankWorldWrite, RankWorldRead)
}

func TestConcurrentReaders(t *testing.T) {
	l := NewRWLock(RankWorldRead, RankWorldWrite)

	started := make(chan int, 3)
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.AcquireRead(EmptyContext(), func(Context) error {
				started <- i
				<-release
				return nil
			})
			if err != nil {
				t.Errorf("AcquireRead failed: %v", err)
			}
		}()
	}

	// All three readers must be admitted while each of them still blocks
	// inside its continuation. Serialized readers would deadlock here.
	for i := 0; i < 3; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatalf("Reader %d was not admitted concurrently", i+1)
		}
	}
	close(release)
	wg.Wait()
}

func TestWriterBlocksLaterReader(t *testing.T) {
	l := NewRWLock(RankWorldRead, RankWorldWrite)
	log := &eventLog{}

	writerIn := make(chan struct{})
	writerGo := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.AcquireWrite(EmptyContext(), func(Context) error {
			log.add("write-start")
			close(writerIn)
			<-writerGo
			log.add("write-end")
			return nil
		})
	}()

	<-writerIn
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.AcquireRead(EmptyContext(), func(Context) error {
			log.add("read")
			return nil
		})
	}()

	time.Sleep(5 * time.Millisecond) // let the reader park
	close(writerGo)
	wg.Wait()

	want := []string{"write-start", "write-end", "read"}
	got := log.snapshot()
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestOverlappingReadsCompleteBeforeWriter(t *testing.T) {
	l := NewRWLock(RankWorldRead, RankWorldWrite)
	log := &eventLog{}

	readersIn := make(chan struct{}, 2)
	readersGo := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.AcquireRead(EmptyContext(), func(Context) error {
				readersIn <- struct{}{}
				<-readersGo
				log.add("read-end")
				return nil
			})
		}()
	}
	<-readersIn
	<-readersIn

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.AcquireWrite(EmptyContext(), func(Context) error {
			log.add("write")
			return nil
		})
	}()

	time.Sleep(5 * time.Millisecond) // let the writer park
	close(readersGo)
	wg.Wait()

	got := log.snapshot()
	if len(got) != 3 || got[0] != "read-end" || got[1] != "read-end" || got[2] != "write" {
		t.Fatalf("Expected both reads to complete before the writer, got %v", got)
	}
}

func TestWriterPriorityOnRelease(t *testing.T) {
	l := NewRWLock(RankWorldRead, RankWorldWrite)
	log := &eventLog{}

	firstIn := make(chan struct{})
	firstGo := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.AcquireWrite(EmptyContext(), func(Context) error {
			close(firstIn)
			<-firstGo
			log.add("writer-1")
			return nil
		})
	}()
	<-firstIn

	// Queue a reader first, then a second writer, while writer-1 is active.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.AcquireRead(EmptyContext(), func(Context) error {
			log.add("reader")
			return nil
		})
	}()
	time.Sleep(5 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.AcquireWrite(EmptyContext(), func(Context) error {
			log.add("writer-2")
			return nil
		})
	}()
	time.Sleep(5 * time.Millisecond)

	close(firstGo)
	wg.Wait()

	// The queued writer is granted on release even though the reader was
	// queued before it.
	want := []string{"writer-1", "writer-2", "reader"}
	got := log.snapshot()
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("Expected writer priority order %v, got %v", want, got)
		}
	}
}

func TestQueuedReadersAdmittedAsBatch(t *testing.T) {
	l := NewRWLock(RankMessageRead, RankMessageWrite)

	writerIn := make(chan struct{})
	writerGo := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.AcquireWrite(EmptyContext(), func(Context) error {
			close(writerIn)
			<-writerGo
			return nil
		})
	}()
	<-writerIn

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.AcquireRead(EmptyContext(), func(Context) error {
				started <- struct{}{}
				<-release
				return nil
			})
		}()
	}
	time.Sleep(5 * time.Millisecond) // let both readers park
	close(writerGo)

	// Both queued readers must run concurrently after the writer releases.
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatalf("Queued reader %d was not admitted with the batch", i+1)
		}
	}
	close(release)
	wg.Wait()
}

func TestNoDowngrade(t *testing.T) {
	l := NewRWLock(RankWorldRead, RankWorldWrite)

	err := l.AcquireWrite(EmptyContext(), func(ctx Context) error {
		return l.AcquireRead(ctx, func(Context) error {
			t.Errorf("Downgraded continuation must not run")
			return nil
		})
	})
	if CodeOf(err) != RetCOrderingViolation {
		t.Errorf("Expected OrderingViolation for read-after-write, got %v", err)
	}
}

func TestWithReadWithWriteValues(t *testing.T) {
	l := NewRWLock(RankWorldRead, RankWorldWrite)

	snapshot, err := WithRead(l, EmptyContext(), func(Context) (string, error) {
		return "tick-17", nil
	})
	if err != nil || snapshot != "tick-17" {
		t.Errorf("WithRead: expected tick-17, got %q (%v)", snapshot, err)
	}

	n, err := WithWrite(l, EmptyContext(), func(Context) (int, error) {
		return 7, nil
	})
	if err != nil || n != 7 {
		t.Errorf("WithWrite: expected 7, got %d (%v)", n, err)
	}
}
