//go:build long

package gositemapbuilder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"testing"
	"time"
)

func TestURLSet_LargeRandom(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long test in short mode")
	}
	if os.Getenv("GO_SITEMAP_BUILDER_LONG") == "" {
		t.Skip("set GO_SITEMAP_BUILDER_LONG=1 to run")
	}

	rng := rand.New(rand.NewSource(42))
	set := New(Options{})
	started := time.Now()
	var numBuf [32]byte
	for i := 0; i < MaxURLs; i++ {
		loc := "https://example.com/" + string(strconv.AppendUint(numBuf[:0], rng.Uint64(), 36)) + "/page-" + strconv.Itoa(i)
		if err := set.AddURL(loc, WithPriority(rng.Float64()), WithChangeFreq(ChangeFreqDaily)); err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
	}
	reportMem(t, "add", set.Count(), time.Since(started))

	started = time.Now()
	reader, writer := io.Pipe()
	go func() {
		buffered := bufio.NewWriterSize(writer, 1<<20)
		_, err := set.WriteTo(buffered)
		if err == nil {
			err = buffered.Flush()
		}
		writer.CloseWithError(err)
	}()

	reloaded := New(Options{})
	added, err := reloaded.Load(context.Background(), reader, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	reportMem(t, "reload", added, time.Since(started))
	if added != MaxURLs || reloaded.Count() != MaxURLs {
		t.Fatalf("expected %d URLs, got added=%d count=%d", MaxURLs, added, reloaded.Count())
	}
}

func reportMem(t *testing.T, phase string, count int, elapsed time.Duration) {
	t.Helper()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	fmt.Printf("phase=%s urls=%d elapsed=%s alloc_mb=%d heap_inuse_mb=%d sys_mb=%d\n",
		phase,
		count,
		elapsed.Truncate(time.Millisecond),
		ms.Alloc/1024/1024,
		ms.HeapInuse/1024/1024,
		ms.Sys/1024/1024,
	)
}
