package metrics

import (
	"runtime"
	"time"
)

// CollectRuntime starts a background sampler that publishes Go runtime stats
// as gauges under the given prefix. It never stops; intended for
// process-lifetime registries.
func (r *Registry) CollectRuntime(prefix string, every time.Duration) {
	if every <= 0 {
		every = 15 * time.Second
	}
	goroutines := r.Gauge(prefix+"_goroutines", "Number of goroutines")
	heap := r.Gauge(prefix+"_heap_alloc_bytes", "Heap bytes currently allocated")
	gcs := r.Gauge(prefix+"_gc_cycles_total", "Completed GC cycles")

	go func() {
		for {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			goroutines.Set(int64(runtime.NumGoroutine()))
			heap.Set(int64(ms.HeapAlloc))
			gcs.Set(int64(ms.NumGC))
			time.Sleep(every)
		}
	}()
}
